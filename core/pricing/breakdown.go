package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CostBreakdown is the itemized result of a pricing calculation. All values
// are exact decimals; conversion to floating point happens only at the
// output boundary (Map / MarshalJSON).
type CostBreakdown struct {
	BaseCost            decimal.Decimal
	InspectionFee       decimal.Decimal
	ProrationAdjustment decimal.Decimal
	PerItemCosts        []ItemCost
}

// ItemCost is one per-asset line in a breakdown
type ItemCost struct {
	AssetID string
	Label   string
	Cost    decimal.Decimal

	// Area is set only by area-based pricing
	Area *decimal.Decimal
}

// Total is the sum of the three cost components. It is always recomputed,
// never stored, so it cannot drift from its parts.
func (b *CostBreakdown) Total() decimal.Decimal {
	return b.BaseCost.Add(b.InspectionFee).Add(b.ProrationAdjustment)
}

// Map returns the breakdown in its wire form, used for API responses and
// for the cost_breakdown document persisted with a subscription request.
func (b *CostBreakdown) Map() map[string]any {
	items := make([]map[string]any, 0, len(b.PerItemCosts))
	for _, item := range b.PerItemCosts {
		m := map[string]any{
			"asset_id": item.AssetID,
			"label":    item.Label,
			"cost":     item.Cost.InexactFloat64(),
		}
		if item.Area != nil {
			m["area"] = item.Area.InexactFloat64()
		}
		items = append(items, m)
	}

	return map[string]any{
		"base_cost":            b.BaseCost.InexactFloat64(),
		"inspection_fee":       b.InspectionFee.InexactFloat64(),
		"proration_adjustment": b.ProrationAdjustment.InexactFloat64(),
		"per_item_costs":       items,
		"total":                b.Total().InexactFloat64(),
	}
}

// MarshalJSON implements json.Marshaler
func (b *CostBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}
