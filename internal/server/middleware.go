package server

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// AdminOnly gates a route group behind a VERIFIED token carrying the admin
// group. This is the authorization counterpart to the unverified identity
// extractor: routes outside these groups never treat token contents as an
// access decision.
func (s *Server) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !hasAdminClaim(claims) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func hasAdminClaim(claims map[string]interface{}) bool {
	if role, ok := claims["role"].(string); ok && role == "admin" {
		return true
	}
	groups, ok := claims["cognito:groups"].([]interface{})
	if !ok {
		return false
	}
	for _, g := range groups {
		if name, ok := g.(string); ok && name == "admin" {
			return true
		}
	}
	return false
}
