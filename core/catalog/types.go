// Package catalog holds the domain entities of the subscription engine and
// the orchestration around them: services, plans, customers, assets, and
// subscription requests. Six generic entities, no service-specific types:
// every business rule lives in a plan's rules document.
package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

// Service is a top-level service offering (car washing, gardening, ...)
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Plan is a subscription plan under a service. All business rules are
// carried by the rules document.
type Plan struct {
	ID        string          `json:"id"`
	ServiceID string          `json:"service_id"`
	Name      string          `json:"name"`
	Rules     *rules.Document `json:"rules"`
	IsActive  bool            `json:"is_active"`
}

// Customer is a resident who can own assets and subscribe to services
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Asset is a customer-owned item (car, garden, pool, ...) linked to
// subscriptions
type Asset struct {
	ID         string         `json:"id"`
	CustomerID string         `json:"customer_id"`
	Type       string         `json:"asset_type"`
	Label      string         `json:"label"`
	Metadata   map[string]any `json:"metadata"`
}

// Descriptor converts the asset to the transient form consumed by the rule
// validator and pricing engine
func (a *Asset) Descriptor() rules.AssetDescriptor {
	return rules.AssetDescriptor{
		ID:       a.ID,
		Type:     a.Type,
		Label:    a.Label,
		Metadata: a.Metadata,
	}
}

// Status of a subscription request
type Status string

const (
	StatusPending           Status = "pending"
	StatusPendingInspection Status = "pending_inspection"
	StatusActive            Status = "active"
	StatusCancelled         Status = "cancelled"
	StatusExpired           Status = "expired"
)

// ParseStatus validates a status string
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusPendingInspection, StatusActive, StatusCancelled, StatusExpired:
		return Status(s), nil
	default:
		return "", errors.Validation("Invalid status '" + s + "'").
			WithDetail("allowed", []Status{
				StatusPending, StatusPendingInspection, StatusActive, StatusCancelled, StatusExpired,
			})
	}
}

// SubscriptionRequest is a resident's request to subscribe to a plan, with
// its calculated cost
type SubscriptionRequest struct {
	ID             string             `json:"id"`
	CustomerID     string             `json:"customer_id"`
	PlanID         string             `json:"plan_id"`
	DurationMonths int                `json:"duration_months"`
	Status         Status             `json:"status"`
	TotalCost      decimal.Decimal    `json:"total_cost"`
	CostBreakdown  map[string]any     `json:"cost_breakdown"`
	Items          []SubscriptionItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}

// SubscriptionItem links an asset to a subscription request with its
// individual cost
type SubscriptionItem struct {
	ID        string          `json:"id"`
	RequestID string          `json:"request_id"`
	AssetID   string          `json:"asset_id"`
	ItemCost  decimal.Decimal `json:"item_cost"`
}
