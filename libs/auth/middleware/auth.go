package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/flowitec/gogrow/libs/auth/service"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// AccessTokenCookie is the cookie checked when no Authorization header is present
const AccessTokenCookie = "access_token"

// AuthMiddleware validates the JWT access token and stores the user ID and role in the request context
func AuthMiddleware(tokenGenerator *service.TokenGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(w, r, tokenGenerator)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Role)))
		})
	}
}

// authenticate writes a 401 and returns false when the request has no valid token
func authenticate(w http.ResponseWriter, r *http.Request, tokenGenerator *service.TokenGenerator) (*service.Claims, bool) {
	token := extractToken(r)
	if token == "" {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}

	claims, err := tokenGenerator.ValidateAccessToken(token)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
		return nil, false
	}
	return claims, true
}

// extractToken reads "Authorization: Bearer <token>" and falls back to the access_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, token, found := strings.Cut(authHeader, " ")
		if found && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithUser stores an authenticated user in ctx
func WithUser(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// GetUserID retrieves the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// GetRole retrieves the user's role from context
func GetRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"detail":"` + detail + `"}`))
}
