package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"subscription-engine/core/pricing"
	"subscription-engine/core/rules"
	apperrors "subscription-engine/internal/errors"
)

var quoteJSON bool

// quoteRequest is the offline quote input file format.
type quoteRequest struct {
	Rules          json.RawMessage         `json:"rules"`
	DurationMonths int                     `json:"duration_months"`
	Assets         []rules.AssetDescriptor `json:"assets"`
}

var quoteCmd = &cobra.Command{
	Use:   "quote <request.json>",
	Short: "Validate and price a subscription request offline",
	Long: `Reads a JSON file containing plan rules, a requested duration and the
customer's assets, then runs rule validation and cost calculation
without touching any store.

The input file looks like:
  {
    "rules": {"pricing_type": "per_asset", "price": 50, "min_duration_months": 3},
    "duration_months": 6,
    "assets": [{"id": "a1", "asset_type": "car", "label": "Family Sedan"}]
  }

Examples:
  subscription-engine quote ./request.json
  subscription-engine quote --json ./request.json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().BoolVar(&quoteJSON, "json", false, "print the breakdown as JSON")
}

func runQuote(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var req quoteRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return apperrors.Wrap(apperrors.TypeValidation, "invalid request file", err)
	}
	if len(req.Rules) == 0 {
		return apperrors.New(apperrors.TypeValidation, "request file is missing 'rules'")
	}

	doc, err := rules.DecodeDocument(req.Rules)
	if err != nil {
		return err
	}

	if err := rules.NewValidator().Validate(doc, req.DurationMonths, req.Assets); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Type == apperrors.TypeRuleViolation {
			fmt.Println("Request violates plan rules:")
			for _, v := range appErr.Violations {
				fmt.Printf("  - %s\n", v)
			}
			return err
		}
		return err
	}

	breakdown, err := pricing.NewEngine().Calculate(doc, req.DurationMonths, req.Assets)
	if err != nil {
		return err
	}

	if quoteJSON {
		out, err := json.MarshalIndent(breakdown, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Printf("Base cost:            %s\n", breakdown.BaseCost.StringFixed(2))
	if breakdown.InspectionFee.IsPositive() {
		fmt.Printf("Inspection fee:       %s\n", breakdown.InspectionFee.StringFixed(2))
	}
	if !breakdown.ProrationAdjustment.IsZero() {
		fmt.Printf("Proration adjustment: %s\n", breakdown.ProrationAdjustment.StringFixed(2))
	}
	for _, item := range breakdown.PerItemCosts {
		fmt.Printf("  %-20s %s\n", item.Label, item.Cost.StringFixed(2))
	}
	fmt.Printf("Total:                %s\n", breakdown.Total().StringFixed(2))
	return nil
}
