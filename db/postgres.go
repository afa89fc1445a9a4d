package db

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"

	"subscription-engine/core/catalog"
	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

// uniqueViolation is the Postgres error code for unique constraint failures
const uniqueViolation = "23505"

// PostgresStore persists the catalog in Postgres. Six generic tables;
// rules, metadata and cost breakdowns are JSONB documents.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to a Postgres database
func OpenPostgres(url string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		return nil, errors.Storage("failed to open database", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, errors.Storage("failed to reach database", err)
	}
	return &PostgresStore{db: conn}, nil
}

// Migrate creates the schema if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subscription_plans (
			id TEXT PRIMARY KEY,
			service_id TEXT NOT NULL REFERENCES services(id),
			name TEXT NOT NULL,
			rules JSONB NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			asset_type TEXT NOT NULL,
			label TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'
		)`,
		`CREATE TABLE IF NOT EXISTS subscription_requests (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL REFERENCES customers(id),
			plan_id TEXT NOT NULL REFERENCES subscription_plans(id),
			duration_months INTEGER NOT NULL,
			status TEXT NOT NULL,
			total_cost NUMERIC(12,2) NOT NULL DEFAULT 0,
			cost_breakdown JSONB NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subscription_items (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL REFERENCES subscription_requests(id),
			asset_id TEXT NOT NULL REFERENCES assets(id),
			item_cost NUMERIC(12,2) NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_service ON subscription_plans(service_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_customer ON assets(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_status ON subscription_requests(status)`,
		`CREATE INDEX IF NOT EXISTS idx_items_request ON subscription_items(request_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Storage("migration failed", err)
		}
	}
	return nil
}

// storageErr maps driver errors onto domain errors
func storageErr(message string, err error) *errors.Error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return errors.Conflict(message + ": already exists")
	}
	return errors.Storage(message, err)
}

// CreateService inserts a service
func (s *PostgresStore) CreateService(ctx context.Context, service *catalog.Service) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO services (id, name, description, is_active, created_at) VALUES ($1, $2, $3, $4, $5)`,
		service.ID, service.Name, service.Description, service.IsActive, service.CreatedAt)
	if err != nil {
		return storageErr("failed to create service", err)
	}
	return nil
}

// GetService fetches a service by ID
func (s *PostgresStore) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	var service catalog.Service
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, is_active, created_at FROM services WHERE id = $1`, id).
		Scan(&service.ID, &service.Name, &service.Description, &service.IsActive, &service.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Service", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to load service", err)
	}
	return &service, nil
}

// ListServices returns services ordered by creation time
func (s *PostgresStore) ListServices(ctx context.Context, activeOnly bool) ([]*catalog.Service, error) {
	query := `SELECT id, name, description, is_active, created_at FROM services`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Storage("failed to list services", err)
	}
	defer rows.Close()

	var out []*catalog.Service
	for rows.Next() {
		var service catalog.Service
		if err := rows.Scan(&service.ID, &service.Name, &service.Description, &service.IsActive, &service.CreatedAt); err != nil {
			return nil, errors.Storage("failed to scan service", err)
		}
		out = append(out, &service)
	}
	return out, rows.Err()
}

// UpdateService updates a service row
func (s *PostgresStore) UpdateService(ctx context.Context, service *catalog.Service) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE services SET name = $2, description = $3, is_active = $4 WHERE id = $1`,
		service.ID, service.Name, service.Description, service.IsActive)
	if err != nil {
		return storageErr("failed to update service", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("Service", service.ID)
	}
	return nil
}

// CreatePlan inserts a plan with its rules document
func (s *PostgresStore) CreatePlan(ctx context.Context, plan *catalog.Plan) error {
	rulesJSON, err := json.Marshal(plan.Rules)
	if err != nil {
		return errors.Storage("failed to encode plan rules", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO subscription_plans (id, service_id, name, rules, is_active) VALUES ($1, $2, $3, $4, $5)`,
		plan.ID, plan.ServiceID, plan.Name, rulesJSON, plan.IsActive)
	if err != nil {
		return storageErr("failed to create plan", err)
	}
	return nil
}

func scanPlan(scan func(...any) error) (*catalog.Plan, error) {
	var plan catalog.Plan
	var rulesJSON []byte
	if err := scan(&plan.ID, &plan.ServiceID, &plan.Name, &rulesJSON, &plan.IsActive); err != nil {
		return nil, err
	}
	doc, err := rules.DecodeDocument(rulesJSON)
	if err != nil {
		return nil, err
	}
	plan.Rules = doc
	return &plan, nil
}

// GetPlan fetches a plan by ID
func (s *PostgresStore) GetPlan(ctx context.Context, id string) (*catalog.Plan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, service_id, name, rules, is_active FROM subscription_plans WHERE id = $1`, id)
	plan, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("SubscriptionPlan", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to load plan", err)
	}
	return plan, nil
}

// ListPlans returns plans, optionally filtered by service
func (s *PostgresStore) ListPlans(ctx context.Context, serviceID string, activeOnly bool) ([]*catalog.Plan, error) {
	query := `SELECT id, service_id, name, rules, is_active FROM subscription_plans WHERE 1=1`
	var args []any
	if serviceID != "" {
		args = append(args, serviceID)
		query += ` AND service_id = $1`
	}
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list plans", err)
	}
	defer rows.Close()

	var out []*catalog.Plan
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, errors.Storage("failed to scan plan", err)
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

// UpdatePlan updates a plan row
func (s *PostgresStore) UpdatePlan(ctx context.Context, plan *catalog.Plan) error {
	rulesJSON, err := json.Marshal(plan.Rules)
	if err != nil {
		return errors.Storage("failed to encode plan rules", err)
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE subscription_plans SET name = $2, rules = $3, is_active = $4 WHERE id = $1`,
		plan.ID, plan.Name, rulesJSON, plan.IsActive)
	if err != nil {
		return storageErr("failed to update plan", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errors.NotFound("SubscriptionPlan", plan.ID)
	}
	return nil
}

// CreateCustomer inserts a customer
func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *catalog.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (id, name, email, phone, created_at) VALUES ($1, $2, $3, $4, $5)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.CreatedAt)
	if err != nil {
		return storageErr("failed to create customer", err)
	}
	return nil
}

// GetCustomer fetches a customer by ID
func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*catalog.Customer, error) {
	var customer catalog.Customer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at FROM customers WHERE id = $1`, id).
		Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Customer", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to load customer", err)
	}
	return &customer, nil
}

// ListCustomers returns all customers ordered by creation time
func (s *PostgresStore) ListCustomers(ctx context.Context) ([]*catalog.Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, phone, created_at FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, errors.Storage("failed to list customers", err)
	}
	defer rows.Close()

	var out []*catalog.Customer
	for rows.Next() {
		var customer catalog.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &customer.CreatedAt); err != nil {
			return nil, errors.Storage("failed to scan customer", err)
		}
		out = append(out, &customer)
	}
	return out, rows.Err()
}

// CreateAsset inserts an asset
func (s *PostgresStore) CreateAsset(ctx context.Context, asset *catalog.Asset) error {
	metadataJSON, err := json.Marshal(asset.Metadata)
	if err != nil {
		return errors.Storage("failed to encode asset metadata", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assets (id, customer_id, asset_type, label, metadata) VALUES ($1, $2, $3, $4, $5)`,
		asset.ID, asset.CustomerID, asset.Type, asset.Label, metadataJSON)
	if err != nil {
		return storageErr("failed to create asset", err)
	}
	return nil
}

func scanAsset(scan func(...any) error) (*catalog.Asset, error) {
	var asset catalog.Asset
	var metadataJSON []byte
	if err := scan(&asset.ID, &asset.CustomerID, &asset.Type, &asset.Label, &metadataJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadataJSON, &asset.Metadata); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListAssets returns a customer's assets, optionally filtered by type
func (s *PostgresStore) ListAssets(ctx context.Context, customerID, assetType string) ([]*catalog.Asset, error) {
	query := `SELECT id, customer_id, asset_type, label, metadata FROM assets WHERE customer_id = $1`
	args := []any{customerID}
	if assetType != "" {
		args = append(args, assetType)
		query += ` AND asset_type = $2`
	}
	query += ` ORDER BY label`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list assets", err)
	}
	defer rows.Close()

	var out []*catalog.Asset
	for rows.Next() {
		asset, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, errors.Storage("failed to scan asset", err)
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

// GetAssetsByIDs fetches the assets that exist among the given IDs
func (s *PostgresStore) GetAssetsByIDs(ctx context.Context, ids []string) ([]*catalog.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, customer_id, asset_type, label, metadata FROM assets WHERE id = ANY($1)`,
		pq.Array(ids))
	if err != nil {
		return nil, errors.Storage("failed to load assets", err)
	}
	defer rows.Close()

	var out []*catalog.Asset
	for rows.Next() {
		asset, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, errors.Storage("failed to scan asset", err)
		}
		out = append(out, asset)
	}
	return out, rows.Err()
}

// CreateSubscription inserts a request and its items in one transaction
func (s *PostgresStore) CreateSubscription(ctx context.Context, request *catalog.SubscriptionRequest) error {
	breakdownJSON, err := json.Marshal(request.CostBreakdown)
	if err != nil {
		return errors.Storage("failed to encode cost breakdown", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO subscription_requests
			(id, customer_id, plan_id, duration_months, status, total_cost, cost_breakdown, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		request.ID, request.CustomerID, request.PlanID, request.DurationMonths,
		request.Status, request.TotalCost, breakdownJSON, request.CreatedAt)
	if err != nil {
		return storageErr("failed to create subscription request", err)
	}

	for _, item := range request.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO subscription_items (id, request_id, asset_id, item_cost) VALUES ($1, $2, $3, $4)`,
			item.ID, item.RequestID, item.AssetID, item.ItemCost)
		if err != nil {
			return storageErr("failed to create subscription item", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Storage("failed to commit subscription", err)
	}
	return nil
}

func (s *PostgresStore) scanSubscription(ctx context.Context, scan func(...any) error) (*catalog.SubscriptionRequest, error) {
	var request catalog.SubscriptionRequest
	var breakdownJSON []byte
	if err := scan(&request.ID, &request.CustomerID, &request.PlanID, &request.DurationMonths,
		&request.Status, &request.TotalCost, &breakdownJSON, &request.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(breakdownJSON, &request.CostBreakdown); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, asset_id, item_cost FROM subscription_items WHERE request_id = $1`,
		request.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item catalog.SubscriptionItem
		if err := rows.Scan(&item.ID, &item.RequestID, &item.AssetID, &item.ItemCost); err != nil {
			return nil, err
		}
		request.Items = append(request.Items, item)
	}
	return &request, rows.Err()
}

// GetSubscription fetches a request with its items
func (s *PostgresStore) GetSubscription(ctx context.Context, id string) (*catalog.SubscriptionRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, plan_id, duration_months, status, total_cost, cost_breakdown, created_at
		 FROM subscription_requests WHERE id = $1`, id)
	request, err := s.scanSubscription(ctx, row.Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("SubscriptionRequest", id)
	}
	if err != nil {
		return nil, errors.Storage("failed to load subscription request", err)
	}
	return request, nil
}

// ListSubscriptions returns requests matching the filter, newest first
func (s *PostgresStore) ListSubscriptions(ctx context.Context, filter catalog.SubscriptionFilter) ([]*catalog.SubscriptionRequest, error) {
	query := `SELECT id, customer_id, plan_id, duration_months, status, total_cost, cost_breakdown, created_at
		 FROM subscription_requests WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND status = $1`
	}
	if filter.NeedsInspection != nil {
		if *filter.NeedsInspection {
			query += ` AND status = '` + string(catalog.StatusPendingInspection) + `'`
		} else {
			query += ` AND status <> '` + string(catalog.StatusPendingInspection) + `'`
		}
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("failed to list subscription requests", err)
	}
	defer rows.Close()

	var out []*catalog.SubscriptionRequest
	for rows.Next() {
		request, err := s.scanSubscription(ctx, rows.Scan)
		if err != nil {
			return nil, errors.Storage("failed to scan subscription request", err)
		}
		out = append(out, request)
	}
	return out, rows.Err()
}

// UpdateSubscriptionStatus moves a request to a new status
func (s *PostgresStore) UpdateSubscriptionStatus(ctx context.Context, id string, status catalog.Status) (*catalog.SubscriptionRequest, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE subscription_requests SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return nil, errors.Storage("failed to update subscription status", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, errors.NotFound("SubscriptionRequest", id)
	}
	return s.GetSubscription(ctx, id)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
