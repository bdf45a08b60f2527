package middleware

import (
	"net/http"

	"github.com/flowitec/gogrow/libs/auth/service"
)

// RoleMiddleware validates the access token and requires the user's role to rank at least requiredRole
func RoleMiddleware(tokenGenerator *service.TokenGenerator, requiredRole string) func(http.Handler) http.Handler {
	required := service.RoleRank(requiredRole)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := authenticate(w, r, tokenGenerator)
			if !ok {
				return
			}

			if service.RoleRank(claims.Role) < required {
				writeDetail(w, http.StatusForbidden, "Admin access required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Role)))
		})
	}
}
