package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"civic-backend/internal/config"
	"civic-backend/internal/utils"
)

type ctxKey string

const (
	CtxUserID ctxKey = "uid"
	CtxRole   ctxKey = "role"
)

// SessionCookie carries the JWT issued at login.
const SessionCookie = "session"

func WithAuth(log zerolog.Logger, cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Read JWT from cookie "session" or Authorization: Bearer
			var tok string
			if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			}

			if tok == "" {
				next.ServeHTTP(w, r) // unauthenticated; handlers can decide
				return
			}

			claims, err := utils.ParseJWT(cfg.SessionSecret, tok)
			if err != nil {
				log.Debug().Err(err).Msg("rejected session token")
				// clear a broken or expired cookie so it stops being sent
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), claims.UserID, claims.Role)))
		})
	}
}
