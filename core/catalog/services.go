package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"subscription-engine/core/plans"
	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
	"subscription-engine/internal/logging"
)

// Services manages the service catalog
type Services struct {
	store Store
}

// NewServices creates the service catalog manager
func NewServices(store Store) *Services {
	return &Services{store: store}
}

// Create creates a new service
func (s *Services) Create(ctx context.Context, name, description string, isActive bool) (*Service, error) {
	if name == "" {
		return nil, errors.Validation("name is required")
	}

	service := &Service{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		IsActive:    isActive,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateService(ctx, service); err != nil {
		return nil, err
	}

	logging.Info("service created", zap.String("id", service.ID), zap.String("name", name))
	return service, nil
}

// ServiceUpdate holds the updatable fields of a service
type ServiceUpdate struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// Update applies a partial update to an existing service
func (s *Services) Update(ctx context.Context, id string, update ServiceUpdate) (*Service, error) {
	service, err := s.store.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		service.Name = *update.Name
	}
	if update.Description != nil {
		service.Description = *update.Description
	}
	if update.IsActive != nil {
		service.IsActive = *update.IsActive
	}

	if err := s.store.UpdateService(ctx, service); err != nil {
		return nil, err
	}
	logging.Info("service updated", zap.String("id", id))
	return service, nil
}

// Get fetches a single service
func (s *Services) Get(ctx context.Context, id string) (*Service, error) {
	return s.store.GetService(ctx, id)
}

// List returns services, optionally only active ones
func (s *Services) List(ctx context.Context, activeOnly bool) ([]*Service, error) {
	return s.store.ListServices(ctx, activeOnly)
}

// Plans manages subscription plans
type Plans struct {
	store Store
}

// NewPlans creates the plan manager
func NewPlans(store Store) *Plans {
	return &Plans{store: store}
}

// Create creates a plan under a service. The rules document is validated at
// configuration time so malformed plans never reach the request path.
func (p *Plans) Create(ctx context.Context, serviceID, name string, doc *rules.Document, isActive bool) (*Plan, error) {
	if name == "" {
		return nil, errors.Validation("name is required")
	}
	if doc == nil {
		return nil, errors.Validation("rules document is required")
	}
	if _, err := p.store.GetService(ctx, serviceID); err != nil {
		return nil, err
	}
	if err := plans.ValidateRules(doc); err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:        uuid.NewString(),
		ServiceID: serviceID,
		Name:      name,
		Rules:     doc,
		IsActive:  isActive,
	}
	if err := p.store.CreatePlan(ctx, plan); err != nil {
		return nil, err
	}

	logging.Info("plan created",
		zap.String("id", plan.ID),
		zap.String("service_id", serviceID),
		zap.String("pricing_type", doc.PricingType))
	return plan, nil
}

// PlanUpdate holds the updatable fields of a plan
type PlanUpdate struct {
	Name     *string
	Rules    *rules.Document
	IsActive *bool
}

// Update applies a partial update to an existing plan. A replacement rules
// document goes through the same configuration-time validation as creation.
func (p *Plans) Update(ctx context.Context, id string, update PlanUpdate) (*Plan, error) {
	plan, err := p.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		plan.Name = *update.Name
	}
	if update.Rules != nil {
		if err := plans.ValidateRules(update.Rules); err != nil {
			return nil, err
		}
		plan.Rules = update.Rules
	}
	if update.IsActive != nil {
		plan.IsActive = *update.IsActive
	}

	if err := p.store.UpdatePlan(ctx, plan); err != nil {
		return nil, err
	}
	logging.Info("plan updated", zap.String("id", id))
	return plan, nil
}

// Get fetches a single plan
func (p *Plans) Get(ctx context.Context, id string) (*Plan, error) {
	return p.store.GetPlan(ctx, id)
}

// List returns plans, optionally filtered by service
func (p *Plans) List(ctx context.Context, serviceID string, activeOnly bool) ([]*Plan, error) {
	return p.store.ListPlans(ctx, serviceID, activeOnly)
}

// Customers manages customers and their assets
type Customers struct {
	store Store
}

// NewCustomers creates the customer manager
func NewCustomers(store Store) *Customers {
	return &Customers{store: store}
}

// Create registers a customer
func (c *Customers) Create(ctx context.Context, name, email, phone string) (*Customer, error) {
	if name == "" || email == "" {
		return nil, errors.Validation("name and email are required")
	}

	customer := &Customer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.store.CreateCustomer(ctx, customer); err != nil {
		return nil, err
	}

	logging.Info("customer created", zap.String("id", customer.ID))
	return customer, nil
}

// Get fetches a single customer
func (c *Customers) Get(ctx context.Context, id string) (*Customer, error) {
	return c.store.GetCustomer(ctx, id)
}

// List returns all customers
func (c *Customers) List(ctx context.Context) ([]*Customer, error) {
	return c.store.ListCustomers(ctx)
}

// AddAsset registers an asset owned by a customer
func (c *Customers) AddAsset(ctx context.Context, customerID, assetType, label string, metadata map[string]any) (*Asset, error) {
	if assetType == "" || label == "" {
		return nil, errors.Validation("asset_type and label are required")
	}
	if _, err := c.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	asset := &Asset{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Type:       assetType,
		Label:      label,
		Metadata:   metadata,
	}
	if err := c.store.CreateAsset(ctx, asset); err != nil {
		return nil, err
	}

	logging.Info("asset created",
		zap.String("id", asset.ID),
		zap.String("customer_id", customerID),
		zap.String("asset_type", assetType))
	return asset, nil
}

// ListAssets returns a customer's assets, optionally filtered by type
func (c *Customers) ListAssets(ctx context.Context, customerID, assetType string) ([]*Asset, error) {
	if _, err := c.store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return c.store.ListAssets(ctx, customerID, assetType)
}
