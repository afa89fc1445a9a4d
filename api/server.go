// Package api - Thin, deterministic API layer.
// The API is only responsible for input parsing, service orchestration, and
// output serialization. It never runs rule or pricing logic itself.
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"subscription-engine/core/catalog"
	"subscription-engine/core/subscription"
	"subscription-engine/internal/logging"
)

// Server is the API server
type Server struct {
	mux     *http.ServeMux
	version string

	services      *catalog.Services
	plans         *catalog.Plans
	customers     *catalog.Customers
	subscriptions *subscription.Service
}

// NewServer creates an API server on top of a store
func NewServer(version string, store catalog.Store) *Server {
	s := &Server{
		mux:           http.NewServeMux(),
		version:       version,
		services:      catalog.NewServices(store),
		plans:         catalog.NewPlans(store),
		customers:     catalog.NewCustomers(store),
		subscriptions: subscription.New(store),
	}
	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Mobile application endpoints
	s.mux.HandleFunc("GET /mobile/services", s.handleMobileServices)
	s.mux.HandleFunc("GET /mobile/customers/{id}/assets", s.handleMobileCustomerAssets)
	s.mux.HandleFunc("POST /mobile/subscriptions", s.handleCreateSubscription)
	s.mux.HandleFunc("GET /mobile/subscriptions/{id}", s.handleGetSubscription)

	// Dashboard / administration endpoints
	s.mux.HandleFunc("POST /dashboard/services", s.handleCreateService)
	s.mux.HandleFunc("GET /dashboard/services", s.handleListServices)
	s.mux.HandleFunc("PUT /dashboard/services/{id}", s.handleUpdateService)
	s.mux.HandleFunc("POST /dashboard/plans", s.handleCreatePlan)
	s.mux.HandleFunc("GET /dashboard/plans", s.handleListPlans)
	s.mux.HandleFunc("GET /dashboard/plans/{id}", s.handleGetPlan)
	s.mux.HandleFunc("PUT /dashboard/plans/{id}", s.handleUpdatePlan)
	s.mux.HandleFunc("POST /dashboard/customers", s.handleCreateCustomer)
	s.mux.HandleFunc("GET /dashboard/customers", s.handleListCustomers)
	s.mux.HandleFunc("POST /dashboard/customers/{id}/assets", s.handleCreateAsset)
	s.mux.HandleFunc("GET /dashboard/customers/{id}/assets", s.handleListAssets)
	s.mux.HandleFunc("GET /dashboard/subscriptions", s.handleListSubscriptions)
	s.mux.HandleFunc("PATCH /dashboard/subscriptions/{id}/status", s.handleUpdateSubscriptionStatus)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version,
		"engine":  "subscription-engine",
	})
}

// ServeHTTP implements http.Handler with per-request IDs for log correlation
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	start := time.Now()
	s.mux.ServeHTTP(w, r)
	logging.Debug("request handled",
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("duration", time.Since(start)))
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
