package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"civic-backend/internal/export"
	"civic-backend/internal/models"
	"civic-backend/internal/recordings"
	"civic-backend/internal/repository"
	"civic-backend/internal/utils"
)

// ComplaintHTTP is the staff panel over the complaints captured by phone.
type ComplaintHTTP struct {
	complaints repository.ComplaintRepository
	tracker    recordings.Tracker
	log        zerolog.Logger
}

func NewComplaintHTTP(complaints repository.ComplaintRepository, tracker recordings.Tracker, log zerolog.Logger) *ComplaintHTTP {
	return &ComplaintHTTP{complaints: complaints, tracker: tracker, log: log}
}

func complaintFilter(r *http.Request) repository.ComplaintFilter {
	qv := r.URL.Query()
	return repository.ComplaintFilter{
		Q:        qv.Get("q"),
		Status:   qv.Get("status"),
		Priority: qv.Get("priority"),
		Category: qv.Get("category"),
		Limit:    utils.QueryInt(qv, "limit", repository.DefaultComplaintLimit),
		Offset:   utils.QueryInt(qv, "offset", 0),
	}.Normalize()
}

// GET /api/admin/complaints?q=&status=&priority=&category=&limit=&offset=
func (h *ComplaintHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := complaintFilter(r)
		items, err := h.complaints.List(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		total, err := h.complaints.Count(r.Context(), f)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("X-Total-Count", strconv.Itoa(total))
		utils.JSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   len(items),
			"total":   total,
			"data":    items,
		})
	}
}

// POST /api/admin/complaints
func (h *ComplaintHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Complaint
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		in.ID = ""
		in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
		in.RecordingURL = strings.TrimSpace(in.RecordingURL)

		err := h.complaints.Create(r.Context(), &in)
		switch {
		case errors.Is(err, repository.ErrInvalid):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, repository.ErrDuplicate):
			utils.Error(w, http.StatusConflict, "complaint id already exists")
			return
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(w, http.StatusBadRequest, "assignedTo does not reference a user")
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.log.Info().Str("complaint_id", in.ComplaintID).Msg("complaint created by staff")
		utils.JSON(w, http.StatusCreated, map[string]any{"success": true, "data": in})
	}
}

// GET /api/admin/complaints/{id}
func (h *ComplaintHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.complaints.FindByComplaintID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			utils.Error(w, http.StatusNotFound, "complaint not found")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"success": true, "data": c})
	}
}

// PUT /api/admin/complaints/{id}/status {status, notes?}
func (h *ComplaintHTTP) UpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Status string `json:"status"`
			Notes  string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		status := models.ComplaintStatus(strings.TrimSpace(in.Status))
		if !status.Valid() {
			utils.Error(w, http.StatusBadRequest, "status must be one of pending, in-progress, resolved, closed")
			return
		}

		c, err := h.complaints.UpdateStatus(r.Context(), chi.URLParam(r, "id"), status, in.Notes)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if c == nil {
			utils.Error(w, http.StatusNotFound, "complaint not found")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"success": true, "data": c})
	}
}

// GET /api/admin/complaints/export?status=&priority=&category=&q=
func (h *ComplaintHTTP) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := export.FetchAll(r.Context(), h.complaints, complaintFilter(r))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		name := "complaints-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
		w.Header().Set("Content-Type", export.ContentTypeXLSX)
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
		if err := export.Complaints(w, items); err != nil {
			h.log.Error().Err(err).Msg("complaint export failed")
		}
	}
}

// GET /api/admin/recordings/{sid}
func (h *ComplaintHTTP) Recording() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := h.tracker.Get(r.Context(), chi.URLParam(r, "sid"))
		switch {
		case errors.Is(err, recordings.ErrDisabled):
			utils.Error(w, http.StatusNotFound, err.Error())
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		case st == nil:
			utils.Error(w, http.StatusNotFound, "recording not found")
			return
		}
		utils.JSON(w, http.StatusOK, st)
	}
}
