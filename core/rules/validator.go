package rules

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"subscription-engine/internal/errors"
	"subscription-engine/internal/logging"
)

var (
	decimal100    = decimal.NewFromInt(100)
	decimalNeg100 = decimal.NewFromInt(-100)
)

// Validator checks a subscription request against a plan's rules document.
// It is a pure function of its inputs: stateless, no I/O, safe for
// concurrent use.
type Validator struct{}

// NewValidator creates a validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every rule check in order (duration, assets, billing cycle,
// payment type, proration shape). Checks never short-circuit each other, so
// the returned rule-violation error carries the complete ordered list and a
// client can fix every problem in one round-trip.
func (v *Validator) Validate(doc *Document, durationMonths int, assets []AssetDescriptor) error {
	var violations []string

	violations = checkDuration(doc, durationMonths, violations)
	violations = checkAssets(doc, assets, violations)
	violations = checkBillingCycle(doc, durationMonths, violations)
	violations = checkPaymentType(doc, violations)
	violations = checkProration(doc, violations)

	if len(violations) > 0 {
		logging.Warn("rule violations", zap.Strings("violations", violations))
		return errors.RuleViolation(violations)
	}
	return nil
}

func checkDuration(doc *Document, durationMonths int, violations []string) []string {
	min := doc.MinDuration()
	if durationMonths < min {
		violations = append(violations, fmt.Sprintf(
			"Minimum subscription duration is %d month(s). Requested: %d.", min, durationMonths))
	}
	return violations
}

func checkAssets(doc *Document, assets []AssetDescriptor, violations []string) []string {
	if doc.ApplicableAssetTypes == nil {
		return violations // no restriction
	}

	allowed := "[" + strings.Join(doc.ApplicableAssetTypes, ", ") + "]"
	for _, asset := range assets {
		if slices.Contains(doc.ApplicableAssetTypes, asset.Type) {
			continue
		}
		label := asset.Label
		if label == "" {
			label = "unknown"
		}
		violations = append(violations, fmt.Sprintf(
			"Asset '%s' of type '%s' is not applicable to this plan. Allowed types: %s.",
			label, asset.Type, allowed))
	}
	return violations
}

func checkBillingCycle(doc *Document, durationMonths int, violations []string) []string {
	cycle := doc.BillingCycle()
	if cycle <= 0 {
		// A broken cycle suppresses the modulo check.
		return append(violations, "Billing cycle must be greater than 0.")
	}

	if durationMonths%cycle != 0 {
		violations = append(violations, fmt.Sprintf(
			"Duration must be a multiple of the billing cycle (%d month(s)). Requested: %d.",
			cycle, durationMonths))
	}
	return violations
}

func checkPaymentType(doc *Document, violations []string) []string {
	payment := doc.Payment()
	if payment != PaymentPrepaid && payment != PaymentPostpaid {
		violations = append(violations, fmt.Sprintf(
			"Invalid payment type '%s'. Allowed values: [prepaid, postpaid].", payment))
	}
	return violations
}

// checkProration validates the rules document itself, not request data: the
// document is operator-supplied free-form configuration, so its shape is
// re-checked here even though plan creation validates it too.
func checkProration(doc *Document, violations []string) []string {
	p := doc.Proration
	if p.Invalid {
		return append(violations, "Proration config must be an object.")
	}
	if !p.Enabled() {
		return violations
	}

	method := p.Method()
	if method != ProrationDaily && method != ProrationPercentage {
		return append(violations, fmt.Sprintf(
			"Invalid proration method '%s'. Allowed values: [daily, percentage].", method))
	}

	if method == ProrationDaily {
		days, ok := p.Number("days_remaining")
		if !ok {
			violations = append(violations, "Proration 'daily' method requires 'days_remaining'.")
		} else if days.IsNegative() {
			violations = append(violations, "Proration 'days_remaining' cannot be negative.")
		}
	}

	if method == ProrationPercentage {
		percent, ok := p.Number("adjustment_percent")
		if !ok {
			return append(violations, "Proration 'percentage' method requires 'adjustment_percent'.")
		}
		if percent.LessThan(decimalNeg100) || percent.GreaterThan(decimal100) {
			violations = append(violations, "Proration 'adjustment_percent' must be between -100 and 100.")
		}
	}
	return violations
}
