package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CertificateService is the interface that wraps methods for reading certificates
type CertificateService interface {
	// Method List returns the caller's certificates, newest first.
	List(ctx context.Context, userID models.UserID) ([]models.Certificate, error)
	// Method Get returns a certificate to its owner or an admin.
	//
	// Anyone else gets models.ErrAccessDenied.
	Get(ctx context.Context, id models.CertificateID, callerID models.UserID, callerRole models.Role) (*models.Certificate, error)
	// Method Render returns the certificate as a PNG image with the same access rules as Get.
	Render(ctx context.Context, id models.CertificateID, callerID models.UserID, callerRole models.Role) ([]byte, *models.Certificate, error)
}

// CertificateHandler handles HTTP requests for certificates
type CertificateHandler struct {
	handlers.BaseHandler
	service CertificateService
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(svc CertificateService, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all certificate handler routes
func (h *CertificateHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/certificates", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/image", h.Image)
	})
}

// List handles GET /certificates
// @Summary My certificates
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Certificate
// @Router /certificates [get]
func (h *CertificateHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	certs, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, certs)
}

// Get handles GET /certificates/{id}
// @Summary Get certificate
// @Tags certificates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {object} models.Certificate
// @Failure 403 {object} handlers.ErrorResponse "Access denied"
// @Failure 404 {object} handlers.ErrorResponse "Certificate not found"
// @Router /certificates/{id} [get]
func (h *CertificateHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	cert, err := h.service.Get(r.Context(), models.CertificateID(chi.URLParam(r, "id")), userID, role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, cert)
}

// Image handles GET /certificates/{id}/image
// @Summary Certificate image
// @Tags certificates
// @Produce png
// @Security BearerAuth
// @Param id path string true "Certificate ID"
// @Success 200 {file} binary
// @Failure 403 {object} handlers.ErrorResponse "Access denied"
// @Failure 404 {object} handlers.ErrorResponse "Certificate not found"
// @Router /certificates/{id}/image [get]
func (h *CertificateHandler) Image(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	image, cert, err := h.service.Render(r.Context(), models.CertificateID(chi.URLParam(r, "id")), userID, role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="certificate-%s.png"`, cert.CertificateNumber))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(image); err != nil {
		h.Logger.Error("failed to write certificate image", zap.Error(err))
	}
}
