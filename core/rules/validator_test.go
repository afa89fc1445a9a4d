package rules

import (
	stderrors "errors"
	"testing"

	"subscription-engine/internal/errors"
)

// mustDecode builds a document from raw JSON the way plans store it.
func mustDecode(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := DecodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	return doc
}

func violationsOf(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a rule violation error, got nil")
	}
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if appErr.Type != errors.TypeRuleViolation {
		t.Fatalf("expected type %s, got %s", errors.TypeRuleViolation, appErr.Type)
	}
	return appErr.Violations
}

func TestValidateEmptyDocumentUsesDefaults(t *testing.T) {
	doc := mustDecode(t, `{"pricing_type": "fixed", "price": 100}`)
	if err := NewValidator().Validate(doc, 1, nil); err != nil {
		t.Fatalf("expected default rules to accept duration 1: %v", err)
	}
}

func TestValidateMinDuration(t *testing.T) {
	doc := mustDecode(t, `{"pricing_type": "fixed", "price": 100, "min_duration_months": 6}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 3, nil))

	want := "Minimum subscription duration is 6 month(s). Requested: 3."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}

	// The boundary passes.
	if err := NewValidator().Validate(doc, 6, nil); err != nil {
		t.Fatalf("duration equal to the minimum must pass: %v", err)
	}
}

func TestValidateAssetTypeRestriction(t *testing.T) {
	doc := mustDecode(t, `{"pricing_type": "per_asset", "price": 50, "applicable_asset_types": ["car", "bike"]}`)
	assets := []AssetDescriptor{
		{ID: "a1", Type: "car", Label: "Family Sedan"},
		{ID: "a2", Type: "boat", Label: "Dinghy"},
	}
	violations := violationsOf(t, NewValidator().Validate(doc, 1, assets))

	want := "Asset 'Dinghy' of type 'boat' is not applicable to this plan. Allowed types: [car, bike]."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}

	// One violation per non-conforming asset.
	assets = append(assets, AssetDescriptor{ID: "a3", Type: "kayak", Label: "Paddler"})
	violations = violationsOf(t, NewValidator().Validate(doc, 1, assets))
	if len(violations) != 2 {
		t.Errorf("expected one violation per bad asset, got %v", violations)
	}
}

func TestValidateAssetWithoutLabel(t *testing.T) {
	doc := mustDecode(t, `{"price": 50, "applicable_asset_types": ["car"]}`)
	assets := []AssetDescriptor{{ID: "a1", Type: "boat"}}
	violations := violationsOf(t, NewValidator().Validate(doc, 1, assets))

	want := "Asset 'unknown' of type 'boat' is not applicable to this plan. Allowed types: [car]."
	if violations[0] != want {
		t.Errorf("got %q, want %q", violations[0], want)
	}
}

func TestValidateMissingAssetTypeListMeansUnrestricted(t *testing.T) {
	doc := mustDecode(t, `{"price": 50}`)
	assets := []AssetDescriptor{{ID: "a1", Type: "spaceship"}}
	if err := NewValidator().Validate(doc, 1, assets); err != nil {
		t.Fatalf("absent applicable_asset_types must be unrestricted: %v", err)
	}
}

func TestValidateEmptyAssetTypeListAdmitsNothing(t *testing.T) {
	doc := mustDecode(t, `{"price": 50, "applicable_asset_types": []}`)
	assets := []AssetDescriptor{{ID: "a1", Type: "car", Label: "Sedan"}}
	violations := violationsOf(t, NewValidator().Validate(doc, 1, assets))
	if len(violations) != 1 {
		t.Fatalf("empty list must reject every asset, got %v", violations)
	}
}

func TestValidateExplicitZeroBillingCycle(t *testing.T) {
	// An explicit 0 must not fall back to the default of 1.
	doc := mustDecode(t, `{"price": 100, "billing_cycle_months": 0}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 6, nil))

	want := "Billing cycle must be greater than 0."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateDurationNotMultipleOfCycle(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "billing_cycle_months": 3}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 7, nil))

	want := "Duration must be a multiple of the billing cycle (3 month(s)). Requested: 7."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateInvalidPaymentType(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "payment_type": "bitcoin"}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Invalid payment type 'bitcoin'. Allowed values: [prepaid, postpaid]."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateProrationMustBeObject(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": "yes please"}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Proration config must be an object."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateNullProrationMustBeObject(t *testing.T) {
	// An explicit null is a shape violation, not "disabled".
	doc := mustDecode(t, `{"price": 100, "proration": null}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Proration config must be an object."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}

	// An absent key still means disabled.
	doc = mustDecode(t, `{"price": 100}`)
	if err := NewValidator().Validate(doc, 1, nil); err != nil {
		t.Fatalf("absent proration must be accepted: %v", err)
	}
}

func TestValidateProrationDisabledSkipsChecks(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": false, "method": "nonsense"}}`)
	if err := NewValidator().Validate(doc, 1, nil); err != nil {
		t.Fatalf("disabled proration must not be validated further: %v", err)
	}
}

func TestValidateProrationMethod(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "weekly"}}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Invalid proration method 'weekly'. Allowed values: [daily, percentage]."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateDailyProrationRequiresDaysRemaining(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "daily"}}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Proration 'daily' method requires 'days_remaining'."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidateDailyProrationNegativeDays(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "daily", "days_remaining": -3}}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Proration 'days_remaining' cannot be negative."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidatePercentageProrationRequiresPercent(t *testing.T) {
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "percentage"}}`)
	violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

	want := "Proration 'percentage' method requires 'adjustment_percent'."
	if len(violations) != 1 || violations[0] != want {
		t.Errorf("got %v, want [%s]", violations, want)
	}
}

func TestValidatePercentageProrationRange(t *testing.T) {
	for _, percent := range []string{"150", "-150"} {
		doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "percentage", "adjustment_percent": `+percent+`}}`)
		violations := violationsOf(t, NewValidator().Validate(doc, 1, nil))

		want := "Proration 'adjustment_percent' must be between -100 and 100."
		if len(violations) != 1 || violations[0] != want {
			t.Errorf("percent %s: got %v, want [%s]", percent, violations, want)
		}
	}

	// Boundary values are allowed.
	doc := mustDecode(t, `{"price": 100, "proration": {"enabled": true, "method": "percentage", "adjustment_percent": -100}}`)
	if err := NewValidator().Validate(doc, 1, nil); err != nil {
		t.Fatalf("-100 must be accepted: %v", err)
	}
}

func TestValidateCollectsAllViolationsInOrder(t *testing.T) {
	doc := mustDecode(t, `{
		"price": 100,
		"min_duration_months": 12,
		"billing_cycle_months": 5,
		"payment_type": "iou",
		"applicable_asset_types": ["garden"],
		"proration": {"enabled": true, "method": "hourly"}
	}`)
	assets := []AssetDescriptor{{ID: "a1", Type: "car", Label: "Sedan"}}
	violations := violationsOf(t, NewValidator().Validate(doc, 7, assets))

	want := []string{
		"Minimum subscription duration is 12 month(s). Requested: 7.",
		"Asset 'Sedan' of type 'car' is not applicable to this plan. Allowed types: [garden].",
		"Duration must be a multiple of the billing cycle (5 month(s)). Requested: 7.",
		"Invalid payment type 'iou'. Allowed values: [prepaid, postpaid].",
		"Invalid proration method 'hourly'. Allowed values: [daily, percentage].",
	}
	if len(violations) != len(want) {
		t.Fatalf("got %d violations %v, want %d", len(violations), violations, len(want))
	}
	for i := range want {
		if violations[i] != want[i] {
			t.Errorf("violation %d: got %q, want %q", i, violations[i], want[i])
		}
	}
}
