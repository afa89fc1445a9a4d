package plans

import (
	stderrors "errors"
	"strings"
	"testing"

	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

func decode(t *testing.T, raw string) *rules.Document {
	t.Helper()
	doc, err := rules.DecodeDocument([]byte(raw))
	if err != nil {
		t.Fatalf("decode rules: %v", err)
	}
	return doc
}

func problemsOf(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		t.Fatalf("expected *errors.Error, got %T: %v", err, err)
	}
	if appErr.Type != errors.TypeValidation {
		t.Fatalf("expected type %s, got %s", errors.TypeValidation, appErr.Type)
	}
	problems, _ := appErr.Details["problems"].([]string)
	return problems
}

func TestValidateRulesAcceptsBuiltinPlan(t *testing.T) {
	doc := decode(t, `{"pricing_type": "per_asset", "price": 50, "min_duration_months": 3}`)
	if err := ValidateRules(doc); err != nil {
		t.Fatalf("expected valid plan: %v", err)
	}
}

func TestValidateRulesAcceptsEmptyPricingType(t *testing.T) {
	doc := decode(t, `{"price": 100}`)
	if err := ValidateRules(doc); err != nil {
		t.Fatalf("empty pricing_type defaults to fixed and must pass: %v", err)
	}
}

func TestValidateRulesRejectsBadPricingTypeFormat(t *testing.T) {
	doc := decode(t, `{"pricing_type": "Per-Asset", "price": 50}`)
	problems := problemsOf(t, ValidateRules(doc))
	if len(problems) == 0 || !strings.Contains(problems[0], "pricing_type") {
		t.Errorf("expected a pricing_type problem, got %v", problems)
	}
}

func TestValidateRulesRequiresPositivePrice(t *testing.T) {
	for _, raw := range []string{
		`{"pricing_type": "fixed", "price": 0}`,
		`{"pricing_type": "fixed", "price": -5}`,
		`{"pricing_type": "fixed"}`,
	} {
		problems := problemsOf(t, ValidateRules(decode(t, raw)))
		if len(problems) != 1 || problems[0] != "price must be greater than 0" {
			t.Errorf("%s: got %v", raw, problems)
		}
	}
}

func TestValidateRulesRejectsZeroCycleAndDuration(t *testing.T) {
	doc := decode(t, `{"pricing_type": "fixed", "price": 10, "billing_cycle_months": 0, "min_duration_months": 0}`)
	problems := problemsOf(t, ValidateRules(doc))
	want := []string{
		"billing_cycle_months must be at least 1",
		"min_duration_months must be at least 1",
	}
	if len(problems) != 2 || problems[0] != want[0] || problems[1] != want[1] {
		t.Errorf("got %v, want %v", problems, want)
	}
}

func TestValidateRulesRejectsBadPaymentType(t *testing.T) {
	doc := decode(t, `{"pricing_type": "fixed", "price": 10, "payment_type": "barter"}`)
	problems := problemsOf(t, ValidateRules(doc))
	if len(problems) != 1 || problems[0] != "payment_type 'barter' must be prepaid or postpaid" {
		t.Errorf("got %v", problems)
	}
}

func TestValidateRulesRejectsNegativeInspectionFee(t *testing.T) {
	doc := decode(t, `{"pricing_type": "fixed", "price": 10, "inspection_fee": -1}`)
	problems := problemsOf(t, ValidateRules(doc))
	if len(problems) != 1 || problems[0] != "inspection_fee cannot be negative" {
		t.Errorf("got %v", problems)
	}
}

func TestValidateRulesRejectsNonObjectProration(t *testing.T) {
	for _, raw := range []string{
		`{"pricing_type": "fixed", "price": 10, "proration": [1, 2]}`,
		`{"pricing_type": "fixed", "price": 10, "proration": null}`,
	} {
		problems := problemsOf(t, ValidateRules(decode(t, raw)))
		if len(problems) != 1 || problems[0] != "proration must be an object" {
			t.Errorf("%s: got %v", raw, problems)
		}
	}
}

func TestValidateRulesCustomTypeNeedsPricingConfig(t *testing.T) {
	doc := decode(t, `{"pricing_type": "per_window", "price": 5}`)
	problems := problemsOf(t, ValidateRules(doc))
	if len(problems) != 1 || problems[0] != "pricing_config is required for custom pricing_type values" {
		t.Errorf("got %v", problems)
	}

	doc = decode(t, `{"pricing_type": "per_window", "price": 5, "pricing_config": {"basis": "field_sum", "field_name": "window_count"}}`)
	if err := ValidateRules(doc); err != nil {
		t.Fatalf("custom type with config must pass: %v", err)
	}
}
