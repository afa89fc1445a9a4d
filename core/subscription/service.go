// Package subscription orchestrates the subscription request workflow:
// resolve entities, run the rule validator, price the request, persist the
// result. The validator and pricing engine are owned per service instance
// and passed explicitly rather than held in process-wide singletons.
package subscription

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"subscription-engine/core/catalog"
	"subscription-engine/core/pricing"
	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
	"subscription-engine/internal/logging"
)

// Service creates and manages subscription requests
type Service struct {
	store     catalog.Store
	validator *rules.Validator
	pricer    *pricing.Engine
}

// New creates a subscription service
func New(store catalog.Store) *Service {
	return &Service{
		store:     store,
		validator: rules.NewValidator(),
		pricer:    pricing.NewEngine(),
	}
}

// Create handles a subscription request end to end. Rule validation fails
// fast: pricing never runs for a request that violates plan rules.
func (s *Service) Create(ctx context.Context, customerID, planID string, durationMonths int, assetIDs []string) (*catalog.SubscriptionRequest, error) {
	if durationMonths <= 0 {
		return nil, errors.Validation("duration_months must be greater than 0")
	}

	if _, err := s.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	assets, err := s.resolveAssets(ctx, customerID, assetIDs)
	if err != nil {
		return nil, err
	}
	descriptors := make([]rules.AssetDescriptor, 0, len(assets))
	for _, asset := range assets {
		descriptors = append(descriptors, asset.Descriptor())
	}

	doc := plan.Rules
	if err := s.validator.Validate(doc, durationMonths, descriptors); err != nil {
		return nil, err
	}

	breakdown, err := s.pricer.Calculate(doc, durationMonths, descriptors)
	if err != nil {
		return nil, err
	}

	costDoc := breakdown.Map()
	costDoc["payment"] = paymentDetails(doc.Payment(), breakdown.Total())

	requestID := uuid.NewString()
	request := &catalog.SubscriptionRequest{
		ID:             requestID,
		CustomerID:     customerID,
		PlanID:         planID,
		DurationMonths: durationMonths,
		Status:         initialStatus(doc),
		TotalCost:      breakdown.Total(),
		CostBreakdown:  costDoc,
		Items:          buildItems(requestID, assets, breakdown),
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateSubscription(ctx, request); err != nil {
		return nil, err
	}

	logging.Info("subscription created",
		zap.String("id", request.ID),
		zap.String("customer_id", customerID),
		zap.String("plan_id", planID),
		zap.String("total", request.TotalCost.String()))
	return request, nil
}

// Get fetches a subscription request by ID
func (s *Service) Get(ctx context.Context, id string) (*catalog.SubscriptionRequest, error) {
	return s.store.GetSubscription(ctx, id)
}

// List returns subscription requests matching the filter
func (s *Service) List(ctx context.Context, filter catalog.SubscriptionFilter) ([]*catalog.SubscriptionRequest, error) {
	return s.store.ListSubscriptions(ctx, filter)
}

// UpdateStatus moves a request to a new status
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*catalog.SubscriptionRequest, error) {
	parsed, err := catalog.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	request, err := s.store.UpdateSubscriptionStatus(ctx, id, parsed)
	if err != nil {
		return nil, err
	}
	logging.Info("subscription status changed",
		zap.String("id", id), zap.String("status", status))
	return request, nil
}

// resolveAssets fetches the selected assets and verifies they all exist and
// belong to the requesting customer.
func (s *Service) resolveAssets(ctx context.Context, customerID string, assetIDs []string) ([]*catalog.Asset, error) {
	if len(assetIDs) == 0 {
		return nil, nil
	}

	assets, err := s.store.GetAssetsByIDs(ctx, assetIDs)
	if err != nil {
		return nil, err
	}

	found := make(map[string]bool, len(assets))
	for _, asset := range assets {
		found[asset.ID] = true
	}
	var missing []string
	for _, id := range assetIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errors.Validation(fmt.Sprintf("Assets not found: %v", missing)).
			WithDetail("missing_asset_ids", missing)
	}

	var foreign []string
	for _, asset := range assets {
		if asset.CustomerID != customerID {
			foreign = append(foreign, asset.ID)
		}
	}
	if len(foreign) > 0 {
		return nil, errors.Validation("Some assets do not belong to the specified customer").
			WithDetail("invalid_asset_ids", foreign)
	}

	return assets, nil
}

// initialStatus derives the first status of a request from its plan
func initialStatus(doc *rules.Document) catalog.Status {
	if doc.RequiresInspection {
		return catalog.StatusPendingInspection
	}
	return catalog.StatusPending
}

// buildItems links each selected asset to its per-item cost from the
// breakdown; assets without a per-item entry carry zero.
func buildItems(requestID string, assets []*catalog.Asset, breakdown *pricing.CostBreakdown) []catalog.SubscriptionItem {
	costs := make(map[string]decimal.Decimal, len(breakdown.PerItemCosts))
	for _, item := range breakdown.PerItemCosts {
		costs[item.AssetID] = item.Cost
	}

	items := make([]catalog.SubscriptionItem, 0, len(assets))
	for _, asset := range assets {
		items = append(items, catalog.SubscriptionItem{
			ID:        uuid.NewString(),
			RequestID: requestID,
			AssetID:   asset.ID,
			ItemCost:  costs[asset.ID],
		})
	}
	return items
}

// paymentDetails summarizes when the total is due based on the payment type
func paymentDetails(paymentType string, total decimal.Decimal) map[string]any {
	if paymentType == rules.PaymentPostpaid {
		return map[string]any{
			"payment_type":    rules.PaymentPostpaid,
			"amount_due_now":  0.0,
			"deferred_amount": total.InexactFloat64(),
		}
	}
	return map[string]any{
		"payment_type":    rules.PaymentPrepaid,
		"amount_due_now":  total.InexactFloat64(),
		"deferred_amount": 0.0,
	}
}
