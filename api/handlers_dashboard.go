package api

import (
	"encoding/json"
	"net/http"

	"subscription-engine/core/catalog"
	"subscription-engine/core/rules"
	"subscription-engine/internal/errors"
)

// serviceRequest is the body for creating or updating a service
type serviceRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// handleCreateService handles POST /dashboard/services
func (s *Server) handleCreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	name, description := "", ""
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	service, err := s.services.Create(r.Context(), name, description, isActive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, service)
}

// handleListServices handles GET /dashboard/services
func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	services, err := s.services.List(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, services)
}

// handleUpdateService handles PUT /dashboard/services/{id}
func (s *Server) handleUpdateService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	service, err := s.services.Update(r.Context(), r.PathValue("id"), catalog.ServiceUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, service)
}

// planRequest is the body for creating or updating a plan. Rules stay raw
// until decoded into a typed document.
type planRequest struct {
	ServiceID *string         `json:"service_id"`
	Name      *string         `json:"name"`
	Rules     json.RawMessage `json:"rules"`
	IsActive  *bool           `json:"is_active"`
}

func (req *planRequest) decodeRules(w http.ResponseWriter) (*rules.Document, bool) {
	if len(req.Rules) == 0 {
		return nil, true
	}
	doc, err := rules.DecodeDocument(req.Rules)
	if err != nil {
		writeError(w, errors.Validation("invalid rules document: "+err.Error()))
		return nil, false
	}
	return doc, true
}

// handleCreatePlan handles POST /dashboard/plans
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	doc, ok := req.decodeRules(w)
	if !ok {
		return
	}
	serviceID, name := "", ""
	if req.ServiceID != nil {
		serviceID = *req.ServiceID
	}
	if req.Name != nil {
		name = *req.Name
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	plan, err := s.plans.Create(r.Context(), serviceID, name, doc, isActive)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, plan)
}

// handleListPlans handles GET /dashboard/plans
func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), r.URL.Query().Get("service_id"), false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, plans)
}

// handleGetPlan handles GET /dashboard/plans/{id}
func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.plans.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, plan)
}

// handleUpdatePlan handles PUT /dashboard/plans/{id}
func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	doc, ok := req.decodeRules(w)
	if !ok {
		return
	}

	plan, err := s.plans.Update(r.Context(), r.PathValue("id"), catalog.PlanUpdate{
		Name:     req.Name,
		Rules:    doc,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, plan)
}

// customerRequest is the body for creating a customer
type customerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// handleCreateCustomer handles POST /dashboard/customers
func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	customer, err := s.customers.Create(r.Context(), req.Name, req.Email, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, customer)
}

// handleListCustomers handles GET /dashboard/customers
func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, customers)
}

// assetRequest is the body for registering a customer asset
type assetRequest struct {
	AssetType string         `json:"asset_type"`
	Label     string         `json:"label"`
	Metadata  map[string]any `json:"metadata"`
}

// handleCreateAsset handles POST /dashboard/customers/{id}/assets
func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	asset, err := s.customers.AddAsset(r.Context(), r.PathValue("id"), req.AssetType, req.Label, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, asset)
}

// handleListAssets handles GET /dashboard/customers/{id}/assets
func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.customers.ListAssets(r.Context(), r.PathValue("id"), r.URL.Query().Get("asset_type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, assets)
}

// handleListSubscriptions handles GET /dashboard/subscriptions
func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	filter := catalog.SubscriptionFilter{
		Status: catalog.Status(r.URL.Query().Get("status")),
	}
	if v := r.URL.Query().Get("needs_inspection"); v != "" {
		needs := v == "true"
		filter.NeedsInspection = &needs
	}

	requests, err := s.subscriptions.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, requests)
}

// statusUpdateRequest is the body of PATCH /dashboard/subscriptions/{id}/status
type statusUpdateRequest struct {
	Status string `json:"status"`
}

// handleUpdateSubscriptionStatus handles PATCH /dashboard/subscriptions/{id}/status
func (s *Server) handleUpdateSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidJSON(w, err)
		return
	}

	request, err := s.subscriptions.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}
