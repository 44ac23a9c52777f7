package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"civic-backend/internal/utils"
)

// Recoverer logs a panic with its stack and answers 500 {"error":"internal error"}.
func Recoverer(l zerolog.Logger) func(http.Handler) http.Handler {
	return RecoverWith(l, func(w http.ResponseWriter, _ *http.Request) {
		utils.Error(w, http.StatusInternalServerError, "internal error")
	})
}

// RecoverWith is Recoverer with a custom reply. http.ErrAbortHandler is
// re-raised so net/http still drops the connection.
func RecoverWith(l zerolog.Logger, reply http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				l.Error().Interface("panic", rec).Str("path", r.URL.Path).Bytes("stack", debug.Stack()).Msg("panic")
				reply(w, r)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
