package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"civic-backend/internal/utils"
)

const healthTimeout = 2 * time.Second

// Health answers {"status":"ok"}, or 503 {"status":"degraded"} when ping
// reports the database unreachable. A nil ping only reports liveness.
func Health(ping func(ctx context.Context) error, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Warn().Err(err).Msg("health check: database unreachable")
				utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
