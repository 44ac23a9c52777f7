package handlers

import (
	"net/http"
	"time"

	"civic-backend/internal/repository"
	"civic-backend/internal/utils"
)

const resolvedWindow = 7 * 24 * time.Hour

type ReportsHTTP struct {
	repo repository.ComplaintRepository
}

func NewReportsHTTP(r repository.ComplaintRepository) *ReportsHTTP { return &ReportsHTTP{repo: r} }

// GET /api/admin/reports/summary
// Returns: { open, resolved7d, urgentOpen }
func (h *ReportsHTTP) Summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.repo.Summary(r.Context(), time.Now().Add(-resolvedWindow))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, s)
	}
}
