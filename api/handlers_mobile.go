package api

import (
	"encoding/json"
	"net/http"
)

// mobileService pairs a service with its active plans for the catalog view
type mobileService struct {
	Service any `json:"service"`
	Plans   any `json:"plans"`
}

// handleMobileServices handles GET /mobile/services: active services with
// their active plans.
func (s *Server) handleMobileServices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services, err := s.services.List(ctx, true)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]mobileService, 0, len(services))
	for _, service := range services {
		plans, err := s.plans.List(ctx, service.ID, true)
		if err != nil {
			writeError(w, err)
			return
		}
		out = append(out, mobileService{Service: service, Plans: plans})
	}
	writeSuccess(w, http.StatusOK, out)
}

// handleMobileCustomerAssets handles GET /mobile/customers/{id}/assets
func (s *Server) handleMobileCustomerAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.customers.ListAssets(r.Context(), r.PathValue("id"), r.URL.Query().Get("asset_type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, assets)
}

// subscriptionCreateRequest is the body of POST /mobile/subscriptions
type subscriptionCreateRequest struct {
	CustomerID     string   `json:"customer_id"`
	PlanID         string   `json:"plan_id"`
	DurationMonths int      `json:"duration_months"`
	AssetIDs       []string `json:"asset_ids"`
}

// handleCreateSubscription handles POST /mobile/subscriptions
func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	request, err := s.subscriptions.Create(r.Context(), req.CustomerID, req.PlanID, req.DurationMonths, req.AssetIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, request)
}

// handleGetSubscription handles GET /mobile/subscriptions/{id}
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	request, err := s.subscriptions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}
