// Package plans validates plan rules documents at configuration time.
//
// These checks run when an administrator creates or updates a plan, so a
// malformed document never reaches the request path. Request-time semantics
// (duration, asset applicability, proration shape) live in core/rules.
package plans

import (
	"fmt"
	"regexp"

	"subscription-engine/core/pricing"
	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

var pricingTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateRules checks the structural and cross-field constraints of a rules
// document. All problems are collected and returned in one validation error.
func ValidateRules(doc *rules.Document) error {
	var problems []string

	if doc.PricingType != "" && !pricingTypePattern.MatchString(doc.PricingType) {
		problems = append(problems, fmt.Sprintf(
			"pricing_type '%s' must be lowercase letters, digits and underscores", doc.PricingType))
	}

	if !doc.Price.IsPositive() {
		problems = append(problems, "price must be greater than 0")
	}

	if doc.BillingCycleMonths != nil && *doc.BillingCycleMonths < 1 {
		problems = append(problems, "billing_cycle_months must be at least 1")
	}

	if doc.MinDurationMonths != nil && *doc.MinDurationMonths < 1 {
		problems = append(problems, "min_duration_months must be at least 1")
	}

	if payment := doc.Payment(); payment != rules.PaymentPrepaid && payment != rules.PaymentPostpaid {
		problems = append(problems, fmt.Sprintf("payment_type '%s' must be prepaid or postpaid", payment))
	}

	if doc.InspectionFee.IsNegative() {
		problems = append(problems, "inspection_fee cannot be negative")
	}

	if doc.Proration.Invalid {
		problems = append(problems, "proration must be an object")
	}

	// A custom pricing type has no built-in strategy, so the configurable
	// strategy must have a config to work from.
	if doc.PricingType != "" && !pricing.IsBuiltin(doc.PricingType) && len(doc.PricingConfig) == 0 {
		problems = append(problems, "pricing_config is required for custom pricing_type values")
	}

	if len(problems) > 0 {
		return errors.Validation("Invalid plan rules").WithDetail("problems", problems)
	}
	return nil
}
