package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reconciler issues certificates that a crash left unissued
type Reconciler interface {
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

// InternalHandler handles service-to-service requests guarded by an API key
type InternalHandler struct {
	handlers.BaseHandler
	reconciler Reconciler
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(reconciler Reconciler, logger *zap.Logger) *InternalHandler {
	return &InternalHandler{
		reconciler:  reconciler,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all internal handler routes
func (h *InternalHandler) RegisterRoutes(r chi.Router, apiKeyMiddleware func(http.Handler) http.Handler) {
	r.Route("/internal", func(r chi.Router) {
		r.Use(apiKeyMiddleware)
		r.Post("/certificates/reconcile", h.ReconcileCertificates)
	})
}

// ReconcileCertificates handles POST /internal/certificates/reconcile
// @Summary Reconcile certificates
// @Description Issue certificates for completed courses that have none
// @Tags internal
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.ReconcileReport
// @Failure 401 {object} handlers.ErrorResponse "Invalid or missing API key"
// @Router /internal/certificates/reconcile [post]
func (h *InternalHandler) ReconcileCertificates(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, report)
}
