package catalog

import "context"

// SubscriptionFilter narrows subscription listings
type SubscriptionFilter struct {
	// Status filters by exact status when non-empty
	Status Status

	// NeedsInspection filters requests awaiting inspection when set
	NeedsInspection *bool
}

// Store is the persistence boundary of the engine. Implementations live in
// the db package; the core never reaches past this interface.
type Store interface {
	// Services
	CreateService(ctx context.Context, service *Service) error
	GetService(ctx context.Context, id string) (*Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]*Service, error)
	UpdateService(ctx context.Context, service *Service) error

	// Plans
	CreatePlan(ctx context.Context, plan *Plan) error
	GetPlan(ctx context.Context, id string) (*Plan, error)
	ListPlans(ctx context.Context, serviceID string, activeOnly bool) ([]*Plan, error)
	UpdatePlan(ctx context.Context, plan *Plan) error

	// Customers
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)

	// Assets
	CreateAsset(ctx context.Context, asset *Asset) error
	ListAssets(ctx context.Context, customerID, assetType string) ([]*Asset, error)
	GetAssetsByIDs(ctx context.Context, ids []string) ([]*Asset, error)

	// Subscription requests (items are persisted with the request)
	CreateSubscription(ctx context.Context, request *SubscriptionRequest) error
	GetSubscription(ctx context.Context, id string) (*SubscriptionRequest, error)
	ListSubscriptions(ctx context.Context, filter SubscriptionFilter) ([]*SubscriptionRequest, error)
	UpdateSubscriptionStatus(ctx context.Context, id string, status Status) (*SubscriptionRequest, error)

	// Close releases backend resources
	Close() error
}
