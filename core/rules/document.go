// Package rules defines the plan rules document and validates subscription
// requests against it.
//
// All business rules for a plan live in a single JSON document attached to
// the plan, so new plan configurations never require code changes. The
// recognized top-level keys are typed here; pricing_config and asset metadata
// stay open mappings whose shape is interpreted lazily by whichever component
// needs a given field.
package rules

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Payment types accepted by a rules document.
const (
	PaymentPrepaid  = "prepaid"
	PaymentPostpaid = "postpaid"
)

// Proration methods accepted by a rules document.
const (
	ProrationDaily      = "daily"
	ProrationPercentage = "percentage"
)

// Document is a plan's rules document.
type Document struct {
	// PricingType selects the cost calculation strategy. Empty means "fixed".
	PricingType string `json:"pricing_type"`

	// Price is the unit price the selected strategy multiplies.
	Price decimal.Decimal `json:"price"`

	// BillingCycleMonths is the billing cadence. Nil means 1.
	BillingCycleMonths *int `json:"billing_cycle_months,omitempty"`

	// MinDurationMonths is the minimum subscription length. Nil means 1.
	MinDurationMonths *int `json:"min_duration_months,omitempty"`

	// PaymentType is prepaid or postpaid. Empty means prepaid.
	PaymentType string `json:"payment_type,omitempty"`

	// RequiresInspection gates the inspection fee modifier and the initial
	// status of a subscription request.
	RequiresInspection bool `json:"requires_inspection,omitempty"`

	// InspectionFee is the flat fee added when an inspection is required.
	InspectionFee decimal.Decimal `json:"inspection_fee"`

	// ApplicableAssetTypes restricts which asset types may subscribe.
	// Nil means unrestricted; an empty list admits nothing.
	ApplicableAssetTypes []string `json:"applicable_asset_types,omitempty"`

	// PricingConfig drives the configurable strategy for custom pricing
	// types. Its shape depends on pricing_config.basis.
	PricingConfig map[string]any `json:"pricing_config,omitempty"`

	// Proration configures the proration cost modifier.
	Proration Proration `json:"proration,omitempty"`
}

// DecodeDocument parses a rules document from JSON.
func DecodeDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// BillingCycle returns the billing cycle in months, defaulting to 1 when the
// document does not set one.
func (d *Document) BillingCycle() int {
	if d.BillingCycleMonths == nil {
		return 1
	}
	return *d.BillingCycleMonths
}

// MinDuration returns the minimum duration in months, defaulting to 1.
func (d *Document) MinDuration() int {
	if d.MinDurationMonths == nil {
		return 1
	}
	return *d.MinDurationMonths
}

// Payment returns the payment type, defaulting to prepaid.
func (d *Document) Payment() string {
	if d.PaymentType == "" {
		return PaymentPrepaid
	}
	return d.PaymentType
}

// Proration is the proration section of a rules document. The value is kept
// as an open mapping read lazily; a non-object JSON value is preserved as
// invalid so validation can report it instead of rejecting the whole
// document at decode time (the document is operator-supplied configuration).
type Proration struct {
	Fields  map[string]any
	Invalid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Proration) UnmarshalJSON(data []byte) error {
	// An explicit null is not an object; only an absent key means disabled.
	if string(bytes.TrimSpace(data)) == "null" {
		p.Invalid = true
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		p.Invalid = true
		return nil
	}
	p.Fields = m
	return nil
}

// MarshalJSON implements json.Marshaler
func (p Proration) MarshalJSON() ([]byte, error) {
	if p.Fields == nil {
		return []byte(`{"enabled":false}`), nil
	}
	return json.Marshal(p.Fields)
}

// Enabled reports whether proration is switched on
func (p Proration) Enabled() bool {
	v, _ := p.Fields["enabled"].(bool)
	return v
}

// Method returns the proration method, defaulting to daily
func (p Proration) Method() string {
	if v, ok := p.Fields["method"].(string); ok {
		return v
	}
	return ProrationDaily
}

// Number reads a numeric proration field as an exact decimal
func (p Proration) Number(key string) (decimal.Decimal, bool) {
	v, ok := p.Fields[key]
	if !ok {
		return decimal.Decimal{}, false
	}
	return Number(v)
}

// AssetDescriptor describes one asset in a subscription request. Descriptors
// are supplied transiently per call; the engine holds no reference after
// returning.
type AssetDescriptor struct {
	ID       string         `json:"id"`
	Type     string         `json:"asset_type"`
	Label    string         `json:"label"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MetadataNumber reads a numeric metadata field as an exact decimal.
// A missing or non-numeric field reports false.
func (a AssetDescriptor) MetadataNumber(key string) (decimal.Decimal, bool) {
	v, ok := a.Metadata[key]
	if !ok {
		return decimal.Decimal{}, false
	}
	return Number(v)
}

// Number converts a scalar from a decoded JSON document into an exact
// decimal. Monetary math never touches binary floating point beyond this
// conversion at the input boundary.
func Number(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}
