package pricing

import (
	"github.com/shopspring/decimal"

	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

// Strategy computes the base cost for one pricing type. Strategies are pure
// and stateless; modifiers (inspection fee, proration) are applied by the
// engine afterwards.
type Strategy interface {
	Calculate(price decimal.Decimal, durationMonths int, assets []rules.AssetDescriptor, doc *rules.Document) (*CostBreakdown, error)
}

func months(durationMonths int) decimal.Decimal {
	return decimal.NewFromInt(int64(durationMonths))
}

// fixedStrategy: flat price multiplied by duration, regardless of assets.
type fixedStrategy struct{}

func (fixedStrategy) Calculate(price decimal.Decimal, durationMonths int, _ []rules.AssetDescriptor, _ *rules.Document) (*CostBreakdown, error) {
	return &CostBreakdown{BaseCost: price.Mul(months(durationMonths))}, nil
}

// perAssetStrategy: price x duration charged once per asset.
type perAssetStrategy struct{}

func (perAssetStrategy) Calculate(price decimal.Decimal, durationMonths int, assets []rules.AssetDescriptor, _ *rules.Document) (*CostBreakdown, error) {
	total := decimal.Decimal{}
	items := make([]ItemCost, 0, len(assets))

	for _, asset := range assets {
		cost := price.Mul(months(durationMonths))
		total = total.Add(cost)
		items = append(items, ItemCost{
			AssetID: asset.ID,
			Label:   asset.Label,
			Cost:    cost,
		})
	}

	return &CostBreakdown{BaseCost: total, PerItemCosts: items}, nil
}

// perAreaStrategy: price x area (from asset metadata) x duration, summed
// over assets. A missing area counts as zero.
type perAreaStrategy struct{}

func (perAreaStrategy) Calculate(price decimal.Decimal, durationMonths int, assets []rules.AssetDescriptor, _ *rules.Document) (*CostBreakdown, error) {
	total := decimal.Decimal{}
	items := make([]ItemCost, 0, len(assets))

	for _, asset := range assets {
		area, _ := asset.MetadataNumber("area")
		cost := price.Mul(area).Mul(months(durationMonths))
		total = total.Add(cost)
		items = append(items, ItemCost{
			AssetID: asset.ID,
			Label:   asset.Label,
			Cost:    cost,
			Area:    &area,
		})
	}

	return &CostBreakdown{BaseCost: total, PerItemCosts: items}, nil
}

// configurableStrategy is driven entirely by the document's pricing_config.
// It is the fallback for every non-built-in pricing type, which is what lets
// new service categories be onboarded through configuration alone.
type configurableStrategy struct{}

func (configurableStrategy) Calculate(price decimal.Decimal, durationMonths int, assets []rules.AssetDescriptor, doc *rules.Document) (*CostBreakdown, error) {
	cfg := doc.PricingConfig

	basis := "fixed"
	if v, ok := cfg["basis"].(string); ok {
		basis = v
	}

	multiplier := months(durationMonths)
	if v, ok := cfg["duration_multiplier"].(bool); ok && !v {
		multiplier = decimal.NewFromInt(1)
	}

	var units decimal.Decimal
	switch basis {
	case "fixed":
		units = decimal.NewFromInt(1)
	case "per_asset":
		units = decimal.NewFromInt(int64(len(assets)))
	case "per_area":
		units = sumMetadata(assets, "area")
	case "field_sum":
		fieldName, _ := cfg["field_name"].(string)
		if fieldName == "" {
			return nil, errors.Pricing("pricing_config.field_name is required for basis='field_sum'")
		}
		units = sumMetadata(assets, fieldName)
	default:
		return nil, errors.Pricingf("Unknown pricing basis: '%s'", basis)
	}

	return &CostBreakdown{BaseCost: price.Mul(units).Mul(multiplier)}, nil
}

func sumMetadata(assets []rules.AssetDescriptor, key string) decimal.Decimal {
	sum := decimal.Decimal{}
	for _, asset := range assets {
		if v, ok := asset.MetadataNumber(key); ok {
			sum = sum.Add(v)
		}
	}
	return sum
}
