// Package pricing turns a plan rules document into an itemized cost
// breakdown. A strategy selected by the document's pricing type computes the
// base cost; the engine then applies the universal cost modifiers
// (inspection fee, proration).
package pricing

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
	"subscription-engine/internal/logging"
)

var hundred = decimal.NewFromInt(100)

// Engine calculates subscription costs. It is stateless and safe for
// concurrent use; construct one per call-handling context rather than
// sharing a mutable global.
type Engine struct {
	registry map[string]Strategy
}

// NewEngine creates an engine with the built-in strategy registry
func NewEngine() *Engine {
	return &Engine{registry: builtins}
}

// Calculate computes the full cost breakdown for a subscription request.
// It fails with a pricing error for an unknown pricing type without a
// pricing_config, an unknown proration method, or a malformed
// pricing_config. These are all operator configuration defects, not user
// input defects.
func (e *Engine) Calculate(doc *rules.Document, durationMonths int, assets []rules.AssetDescriptor) (*CostBreakdown, error) {
	pricingType := doc.PricingType
	if pricingType == "" {
		pricingType = TypeFixed
	}

	strategy, ok := e.registry[pricingType]
	if !ok {
		if doc.PricingConfig == nil {
			return nil, errors.Pricingf("Unknown pricing type: '%s'", pricingType)
		}
		strategy = configurableStrategy{}
	}

	breakdown, err := strategy.Calculate(doc.Price, durationMonths, assets, doc)
	if err != nil {
		return nil, err
	}

	applyInspectionFee(doc, breakdown)
	if err := applyProration(doc, breakdown); err != nil {
		return nil, err
	}

	logging.Debug("pricing calculated",
		zap.String("pricing_type", pricingType),
		zap.String("total", breakdown.Total().String()))
	return breakdown, nil
}

// applyInspectionFee adds the flat inspection fee when the plan requires a
// paid inspection. The fee is never prorated or multiplied by duration.
func applyInspectionFee(doc *rules.Document, breakdown *CostBreakdown) {
	if doc.RequiresInspection && doc.InspectionFee.IsPositive() {
		breakdown.InspectionFee = doc.InspectionFee
	}
}

func applyProration(doc *rules.Document, breakdown *CostBreakdown) error {
	p := doc.Proration
	if !p.Enabled() {
		return nil
	}

	switch p.Method() {
	case rules.ProrationDaily:
		applyDailyProration(doc, p, breakdown)
		return nil
	case rules.ProrationPercentage:
		percent, ok := p.Number("adjustment_percent")
		if !ok {
			percent = decimal.Decimal{}
		}
		breakdown.ProrationAdjustment = breakdown.BaseCost.Mul(percent).Div(hundred).Round(2)
		return nil
	default:
		return errors.Pricingf("Unknown proration method: '%s'", p.Method())
	}
}

// applyDailyProration adjusts the base cost by the remaining-days ratio:
//
//	adjustment = base_cost * (days_remaining / total_cycle_days) - base_cost
//
// Zero at a full cycle, negative (a discount) for partial cycles, and
// positive (a surcharge) when days_remaining exceeds the cycle; the
// surcharge is deliberate pass-through, not an error. The cycle length
// defaults to billing_cycle_months * 30; the 30-day month is a documented
// simplification, not calendar-accurate.
func applyDailyProration(doc *rules.Document, p rules.Proration, breakdown *CostBreakdown) {
	days, ok := p.Number("days_remaining")
	if !ok {
		return
	}

	totalDays, ok := p.Number("total_cycle_days")
	if !ok {
		totalDays = decimal.NewFromInt(int64(doc.BillingCycle() * 30))
	}
	if !totalDays.IsPositive() {
		return
	}

	adjustment := breakdown.BaseCost.Mul(days).Div(totalDays).Sub(breakdown.BaseCost)
	breakdown.ProrationAdjustment = adjustment.Round(2)
}
