package db

import (
	"context"
	"sort"
	"sync"

	"subscription-engine/core/catalog"
	"subscription-engine/internal/errors"
)

// MemoryStore is a mutex-guarded in-memory store, used for tests and for
// running the engine without a database.
type MemoryStore struct {
	mu sync.RWMutex

	services      map[string]*catalog.Service
	plans         map[string]*catalog.Plan
	customers     map[string]*catalog.Customer
	assets        map[string]*catalog.Asset
	subscriptions map[string]*catalog.SubscriptionRequest
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		services:      make(map[string]*catalog.Service),
		plans:         make(map[string]*catalog.Plan),
		customers:     make(map[string]*catalog.Customer),
		assets:        make(map[string]*catalog.Asset),
		subscriptions: make(map[string]*catalog.SubscriptionRequest),
	}
}

// CreateService stores a service, enforcing name uniqueness
func (s *MemoryStore) CreateService(_ context.Context, service *catalog.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.services {
		if existing.Name == service.Name {
			return errors.Conflict("service name already exists: " + service.Name)
		}
	}
	copied := *service
	s.services[service.ID] = &copied
	return nil
}

// GetService fetches a service by ID
func (s *MemoryStore) GetService(_ context.Context, id string) (*catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[id]
	if !ok {
		return nil, errors.NotFound("Service", id)
	}
	copied := *service
	return &copied, nil
}

// ListServices returns services ordered by creation time
func (s *MemoryStore) ListServices(_ context.Context, activeOnly bool) ([]*catalog.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.Service
	for _, service := range s.services {
		if activeOnly && !service.IsActive {
			continue
		}
		copied := *service
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateService replaces a stored service
func (s *MemoryStore) UpdateService(_ context.Context, service *catalog.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[service.ID]; !ok {
		return errors.NotFound("Service", service.ID)
	}
	copied := *service
	s.services[service.ID] = &copied
	return nil
}

// CreatePlan stores a plan
func (s *MemoryStore) CreatePlan(_ context.Context, plan *catalog.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *plan
	s.plans[plan.ID] = &copied
	return nil
}

// GetPlan fetches a plan by ID
func (s *MemoryStore) GetPlan(_ context.Context, id string) (*catalog.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, errors.NotFound("SubscriptionPlan", id)
	}
	copied := *plan
	return &copied, nil
}

// ListPlans returns plans, optionally filtered by service
func (s *MemoryStore) ListPlans(_ context.Context, serviceID string, activeOnly bool) ([]*catalog.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.Plan
	for _, plan := range s.plans {
		if serviceID != "" && plan.ServiceID != serviceID {
			continue
		}
		if activeOnly && !plan.IsActive {
			continue
		}
		copied := *plan
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdatePlan replaces a stored plan
func (s *MemoryStore) UpdatePlan(_ context.Context, plan *catalog.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[plan.ID]; !ok {
		return errors.NotFound("SubscriptionPlan", plan.ID)
	}
	copied := *plan
	s.plans[plan.ID] = &copied
	return nil
}

// CreateCustomer stores a customer, enforcing email uniqueness
func (s *MemoryStore) CreateCustomer(_ context.Context, customer *catalog.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.Email == customer.Email {
			return errors.Conflict("email already registered: " + customer.Email)
		}
	}
	copied := *customer
	s.customers[customer.ID] = &copied
	return nil
}

// GetCustomer fetches a customer by ID
func (s *MemoryStore) GetCustomer(_ context.Context, id string) (*catalog.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, errors.NotFound("Customer", id)
	}
	copied := *customer
	return &copied, nil
}

// ListCustomers returns all customers ordered by creation time
func (s *MemoryStore) ListCustomers(_ context.Context) ([]*catalog.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*catalog.Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		copied := *customer
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CreateAsset stores an asset
func (s *MemoryStore) CreateAsset(_ context.Context, asset *catalog.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *asset
	s.assets[asset.ID] = &copied
	return nil
}

// ListAssets returns a customer's assets, optionally filtered by type
func (s *MemoryStore) ListAssets(_ context.Context, customerID, assetType string) ([]*catalog.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.Asset
	for _, asset := range s.assets {
		if asset.CustomerID != customerID {
			continue
		}
		if assetType != "" && asset.Type != assetType {
			continue
		}
		copied := *asset
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// GetAssetsByIDs fetches the assets that exist among the given IDs
func (s *MemoryStore) GetAssetsByIDs(_ context.Context, ids []string) ([]*catalog.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.Asset
	for _, id := range ids {
		if asset, ok := s.assets[id]; ok {
			copied := *asset
			out = append(out, &copied)
		}
	}
	return out, nil
}

// CreateSubscription stores a request together with its items
func (s *MemoryStore) CreateSubscription(_ context.Context, request *catalog.SubscriptionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *request
	copied.Items = append([]catalog.SubscriptionItem(nil), request.Items...)
	s.subscriptions[request.ID] = &copied
	return nil
}

// GetSubscription fetches a request by ID
func (s *MemoryStore) GetSubscription(_ context.Context, id string) (*catalog.SubscriptionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.subscriptions[id]
	if !ok {
		return nil, errors.NotFound("SubscriptionRequest", id)
	}
	copied := *request
	copied.Items = append([]catalog.SubscriptionItem(nil), request.Items...)
	return &copied, nil
}

// ListSubscriptions returns requests matching the filter, newest first
func (s *MemoryStore) ListSubscriptions(_ context.Context, filter catalog.SubscriptionFilter) ([]*catalog.SubscriptionRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*catalog.SubscriptionRequest
	for _, request := range s.subscriptions {
		if !matchesFilter(request, filter) {
			continue
		}
		copied := *request
		copied.Items = append([]catalog.SubscriptionItem(nil), request.Items...)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func matchesFilter(request *catalog.SubscriptionRequest, filter catalog.SubscriptionFilter) bool {
	if filter.Status != "" && request.Status != filter.Status {
		return false
	}
	if filter.NeedsInspection != nil {
		needs := request.Status == catalog.StatusPendingInspection
		if needs != *filter.NeedsInspection {
			return false
		}
	}
	return true
}

// UpdateSubscriptionStatus moves a request to a new status
func (s *MemoryStore) UpdateSubscriptionStatus(_ context.Context, id string, status catalog.Status) (*catalog.SubscriptionRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, ok := s.subscriptions[id]
	if !ok {
		return nil, errors.NotFound("SubscriptionRequest", id)
	}
	request.Status = status

	copied := *request
	copied.Items = append([]catalog.SubscriptionItem(nil), request.Items...)
	return &copied, nil
}

// Close implements catalog.Store
func (s *MemoryStore) Close() error {
	return nil
}
