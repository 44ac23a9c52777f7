package middleware

import (
	"net/http"

	"civic-backend/internal/utils"
)

type roleSet map[string]struct{}

func newRoleSet(roles []string) roleSet {
	s := make(roleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

func (s roleSet) has(role string) bool {
	_, ok := s[role]
	return ok
}

// RequireAuth answers 401 unless WithAuth put a user in the context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserID(r.Context()) == "" {
			utils.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles answers 403 unless the caller's role is one of roles. Mount it
// after RequireAuth so anonymous callers get 401 first.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := newRoleSet(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, role := Identity(r.Context()); !allowed.has(role) {
				utils.Error(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
