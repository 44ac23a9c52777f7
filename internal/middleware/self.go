package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"civic-backend/internal/utils"
)

// RequireSelfOrRoles lets the request through when the {id} URL param is the
// caller's own user id or the caller holds one of roles.
func RequireSelfOrRoles(roles ...string) func(http.Handler) http.Handler {
	allowed := newRoleSet(roles)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, role := Identity(r.Context())
			if allowed.has(role) || (uid != "" && chi.URLParam(r, "id") == uid) {
				next.ServeHTTP(w, r)
				return
			}
			utils.Error(w, http.StatusForbidden, "forbidden")
		})
	}
}
