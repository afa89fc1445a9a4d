package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"subscription-engine/core/catalog"
	"subscription-engine/core/rules"
	"subscription-engine/db"
	"subscription-engine/internal/config"
)

var seedDatabaseURL string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo services, plans, customers and assets",
	Long: `Populates the configured store with a small demo dataset:
three services with one plan each, two customers and their assets.

Examples:
  subscription-engine seed --database-url postgres://localhost/subscriptions`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDatabaseURL, "database-url", "", "postgres connection string (overrides config)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if seedDatabaseURL != "" {
		cfg.Database.Backend = string(db.BackendPostgres)
		cfg.Database.URL = seedDatabaseURL
	}

	store, err := db.Open(cmd.Context(), db.Backend(cfg.Database.Backend), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	services := catalog.NewServices(store)
	plans := catalog.NewPlans(store)
	customers := catalog.NewCustomers(store)

	existing, err := services.List(ctx, false)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		fmt.Println("Store already contains services, skipping seed.")
		return nil
	}

	carWash, err := services.Create(ctx, "Car Washing", "Recurring car washing at your doorstep", true)
	if err != nil {
		return err
	}
	gardening, err := services.Create(ctx, "Gardening", "Garden maintenance and landscaping", true)
	if err != nil {
		return err
	}
	pool, err := services.Create(ctx, "Pool Cleaning", "Weekly pool cleaning and chemical balancing", true)
	if err != nil {
		return err
	}

	if _, err := plans.Create(ctx, carWash.ID, "Car Wash Basic", &rules.Document{
		PricingType:          "per_asset",
		Price:                decimal.NewFromInt(50),
		MinDurationMonths:    intPtr(3),
		ApplicableAssetTypes: []string{"car"},
	}, true); err != nil {
		return err
	}
	if _, err := plans.Create(ctx, gardening.ID, "Garden Premium", &rules.Document{
		PricingType:          "per_area",
		Price:                decimal.NewFromInt(2),
		MinDurationMonths:    intPtr(6),
		PaymentType:          rules.PaymentPostpaid,
		RequiresInspection:   true,
		InspectionFee:        decimal.NewFromInt(25),
		ApplicableAssetTypes: []string{"garden"},
		Proration: rules.Proration{Fields: map[string]any{
			"enabled": true,
			"method":  rules.ProrationDaily,
		}},
	}, true); err != nil {
		return err
	}
	if _, err := plans.Create(ctx, pool.ID, "Pool Fixed Monthly", &rules.Document{
		PricingType:          "fixed",
		Price:                decimal.NewFromInt(150),
		RequiresInspection:   true,
		InspectionFee:        decimal.NewFromInt(30),
		ApplicableAssetTypes: []string{"pool"},
	}, true); err != nil {
		return err
	}

	alice, err := customers.Create(ctx, "Alice Johnson", "alice@example.com", "555-0101")
	if err != nil {
		return err
	}
	bob, err := customers.Create(ctx, "Bob Smith", "bob@example.com", "555-0102")
	if err != nil {
		return err
	}

	assets := []struct {
		customerID string
		assetType  string
		label      string
		metadata   map[string]any
	}{
		{alice.ID, "car", "Family Sedan", map[string]any{"plate": "ALC-001"}},
		{alice.ID, "garden", "Front Yard", map[string]any{"area": 120}},
		{alice.ID, "pool", "Backyard Pool", map[string]any{"area": 50}},
		{bob.ID, "car", "Pickup Truck", map[string]any{"plate": "BOB-010"}},
		{bob.ID, "car", "City Hatchback", map[string]any{"plate": "BOB-011"}},
		{bob.ID, "garden", "Back Garden", map[string]any{"area": 200}},
	}
	for _, a := range assets {
		if _, err := customers.AddAsset(ctx, a.customerID, a.assetType, a.label, a.metadata); err != nil {
			return err
		}
	}

	fmt.Println("Seeded 3 services, 3 plans, 2 customers, 6 assets.")
	return nil
}

func intPtr(n int) *int { return &n }
