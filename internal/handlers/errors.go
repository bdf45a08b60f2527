// Package handlers exposes the LMS over HTTP
package handlers

import (
	"errors"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	authMiddleware "github.com/flowitec/gogrow/libs/auth/middleware"
	"github.com/flowitec/gogrow/libs/handlers"
	"go.uber.org/zap"
)

// statusFor maps a domain error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err as {"detail": ...}. Unknown errors are logged and hidden.
func respondServiceError(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.RespondError(w, status, "Internal server error")
		return
	}

	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		h.RespondError(w, status, domainErr.Message)
		return
	}
	h.RespondError(w, status, err.Error())
}

// decodeBody decodes the request body and answers 422 when it is malformed
func decodeBody(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := h.DecodeJSON(r, dst); err != nil {
		h.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	return true
}

// caller returns the authenticated user, answering 401 when there is none
func caller(h *handlers.BaseHandler, w http.ResponseWriter, r *http.Request) (models.UserID, models.Role, bool) {
	userID, ok := authMiddleware.GetUserID(r.Context())
	if !ok {
		h.Logger.Error("user ID not found in context")
		h.RespondError(w, http.StatusUnauthorized, "Not authenticated")
		return "", "", false
	}
	role, _ := authMiddleware.GetRole(r.Context())
	return models.UserID(userID), models.Role(role), true
}
