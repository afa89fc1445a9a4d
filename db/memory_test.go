package db

import (
	"context"
	"testing"
	"time"

	"subscription-engine/core/catalog"
	"subscription-engine/internal/errors"
)

func TestMemoryStoreServiceUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := &catalog.Service{ID: "s1", Name: "Car Washing", IsActive: true, CreatedAt: time.Now().UTC()}
	if err := store.CreateService(ctx, first); err != nil {
		t.Fatal(err)
	}

	dup := &catalog.Service{ID: "s2", Name: "Car Washing", CreatedAt: time.Now().UTC()}
	if err := store.CreateService(ctx, dup); !errors.IsType(err, errors.TypeConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
}

func TestMemoryStoreCustomerEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.CreateCustomer(ctx, &catalog.Customer{ID: "c1", Email: "alice@example.com"}); err != nil {
		t.Fatal(err)
	}
	err := store.CreateCustomer(ctx, &catalog.Customer{ID: "c2", Email: "alice@example.com"})
	if !errors.IsType(err, errors.TypeConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.GetService(ctx, "missing"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("GetService: expected not-found, got %v", err)
	}
	if _, err := store.GetPlan(ctx, "missing"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("GetPlan: expected not-found, got %v", err)
	}
	if _, err := store.GetCustomer(ctx, "missing"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("GetCustomer: expected not-found, got %v", err)
	}
	if _, err := store.GetSubscription(ctx, "missing"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("GetSubscription: expected not-found, got %v", err)
	}
	if _, err := store.UpdateSubscriptionStatus(ctx, "missing", catalog.StatusActive); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("UpdateSubscriptionStatus: expected not-found, got %v", err)
	}
}

func TestMemoryStoreListServicesActiveFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now().UTC()
	store.CreateService(ctx, &catalog.Service{ID: "s1", Name: "A", IsActive: true, CreatedAt: now})
	store.CreateService(ctx, &catalog.Service{ID: "s2", Name: "B", IsActive: false, CreatedAt: now.Add(time.Second)})

	all, err := store.ListServices(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 services, got %d", len(all))
	}
	if all[0].ID != "s1" {
		t.Error("services must be ordered by creation time")
	}

	active, err := store.ListServices(ctx, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != "s1" {
		t.Errorf("expected only the active service, got %d", len(active))
	}
}

func TestMemoryStoreGetAssetsByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.CreateAsset(ctx, &catalog.Asset{ID: "a1", CustomerID: "c1", Type: "car", Label: "Sedan"})
	assets, err := store.GetAssetsByIDs(ctx, []string{"a1", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].ID != "a1" {
		t.Errorf("expected only existing assets, got %v", assets)
	}
}

func TestMemoryStoreListAssetsFilter(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	store.CreateAsset(ctx, &catalog.Asset{ID: "a1", CustomerID: "c1", Type: "car", Label: "Sedan"})
	store.CreateAsset(ctx, &catalog.Asset{ID: "a2", CustomerID: "c1", Type: "garden", Label: "Front Yard"})
	store.CreateAsset(ctx, &catalog.Asset{ID: "a3", CustomerID: "c2", Type: "car", Label: "Truck"})

	cars, err := store.ListAssets(ctx, "c1", "car")
	if err != nil {
		t.Fatal(err)
	}
	if len(cars) != 1 || cars[0].ID != "a1" {
		t.Errorf("expected c1's car only, got %v", cars)
	}

	all, err := store.ListAssets(ctx, "c1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 assets for c1, got %d", len(all))
	}
}

func TestMemoryStoreStoredCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	service := &catalog.Service{ID: "s1", Name: "Gardening", IsActive: true}
	store.CreateService(ctx, service)

	// Mutating the caller's struct must not affect the stored copy.
	service.Name = "Changed"
	stored, err := store.GetService(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "Gardening" {
		t.Errorf("stored service mutated through caller reference: %s", stored.Name)
	}

	// And mutating a fetched copy must not affect the store.
	stored.Name = "Changed Again"
	again, _ := store.GetService(ctx, "s1")
	if again.Name != "Gardening" {
		t.Errorf("store mutated through returned reference: %s", again.Name)
	}
}

func TestMemoryStoreSubscriptionFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	now := time.Now().UTC()
	store.CreateSubscription(ctx, &catalog.SubscriptionRequest{
		ID: "r1", Status: catalog.StatusPending, CreatedAt: now,
	})
	store.CreateSubscription(ctx, &catalog.SubscriptionRequest{
		ID: "r2", Status: catalog.StatusPendingInspection, CreatedAt: now.Add(time.Second),
	})

	all, err := store.ListSubscriptions(ctx, catalog.SubscriptionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all[0].ID != "r2" {
		t.Errorf("expected newest first, got %v", all)
	}

	pending, err := store.ListSubscriptions(ctx, catalog.SubscriptionFilter{Status: catalog.StatusPending})
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != "r1" {
		t.Errorf("status filter: got %v", pending)
	}

	noInspection := false
	list, err := store.ListSubscriptions(ctx, catalog.SubscriptionFilter{NeedsInspection: &noInspection})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "r1" {
		t.Errorf("needs_inspection=false filter: got %v", list)
	}
}
