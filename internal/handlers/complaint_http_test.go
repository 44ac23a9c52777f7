package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"civic-backend/internal/export"
	"civic-backend/internal/models"
	"civic-backend/internal/recordings"
)

func newComplaintRouter(repo *memComplaints, tracker recordings.Tracker) http.Handler {
	h := NewComplaintHTTP(repo, tracker, zerolog.Nop())
	rh := NewReportsHTTP(repo)
	r := chi.NewRouter()
	r.Route("/api/admin", func(r chi.Router) {
		r.Get("/complaints", h.List())
		r.Post("/complaints", h.Create())
		r.Get("/complaints/export", h.Export())
		r.Get("/complaints/{id}", h.Get())
		r.Put("/complaints/{id}/status", h.UpdateStatus())
		r.Get("/reports/summary", rh.Summary())
		r.Get("/recordings/{sid}", h.Recording())
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type complaintEnvelope struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Total   int                `json:"total"`
	Data    []models.Complaint `json:"data"`
}

func seed(t *testing.T, repo *memComplaints, cs ...models.Complaint) []models.Complaint {
	t.Helper()
	out := make([]models.Complaint, 0, len(cs))
	for _, c := range cs {
		require.NoError(t, repo.Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestComplaintListFilters(t *testing.T) {
	repo := newMemComplaints()
	seed(t, repo,
		models.Complaint{PhoneNumber: "+15550100", RecordingURL: "r1"},
		models.Complaint{PhoneNumber: "+15550101", RecordingURL: "r2", Status: models.StatusResolved},
		models.Complaint{PhoneNumber: "+15550102", RecordingURL: "r3", Priority: models.PriorityUrgent},
	)
	h := newComplaintRouter(repo, recordings.Nop{})

	rec := doJSON(t, h, http.MethodGet, "/api/admin/complaints?status=pending&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	var env complaintEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, 1, env.Count)
	assert.Equal(t, 2, env.Total)
	require.Len(t, env.Data, 1)
	assert.Equal(t, models.StatusPending, env.Data[0].Status)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/complaints?q=0101", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "+15550101", env.Data[0].PhoneNumber)
}

func TestComplaintCreateAndGet(t *testing.T) {
	h := newComplaintRouter(newMemComplaints(), recordings.Nop{})

	rec := doJSON(t, h, http.MethodPost, "/api/admin/complaints", map[string]any{
		"phoneNumber":  "+15550100",
		"recordingUrl": "https://rec/1",
		"description":  "streetlight out",
		"category":     "infrastructure",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data models.Complaint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Regexp(t, `^CIV-\d{6}-\d{3}$`, created.Data.ComplaintID)
	assert.Equal(t, models.StatusPending, created.Data.Status)
	assert.Equal(t, models.PriorityMedium, created.Data.Priority)
	assert.Equal(t, models.CategoryInfrastructure, created.Data.Category)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/complaints/"+created.Data.ComplaintID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/complaints/CIV-999999-999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintCreateRejects(t *testing.T) {
	repo := newMemComplaints()
	existing := seed(t, repo, models.Complaint{PhoneNumber: "+1", RecordingURL: "r"})[0]
	h := newComplaintRouter(repo, recordings.Nop{})

	rec := doJSON(t, h, http.MethodPost, "/api/admin/complaints", map[string]any{"recordingUrl": "r"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "phoneNumber")

	rec = doJSON(t, h, http.MethodPost, "/api/admin/complaints", map[string]any{
		"phoneNumber": "+1", "recordingUrl": "r", "priority": "critical",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/admin/complaints", map[string]any{
		"complaintId": existing.ComplaintID, "phoneNumber": "+1", "recordingUrl": "r",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestComplaintUpdateStatus(t *testing.T) {
	repo := newMemComplaints()
	c := seed(t, repo, models.Complaint{PhoneNumber: "+1", RecordingURL: "r"})[0]
	h := newComplaintRouter(repo, recordings.Nop{})
	path := "/api/admin/complaints/" + c.ComplaintID + "/status"

	rec := doJSON(t, h, http.MethodPut, path, map[string]string{"status": "in-progress", "notes": "crew sent"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, path, map[string]string{"status": "resolved"})
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Data models.Complaint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, models.StatusResolved, out.Data.Status)
	assert.Equal(t, []string{"crew sent"}, out.Data.Notes)

	rec = doJSON(t, h, http.MethodPut, path, map[string]string{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPut, "/api/admin/complaints/CIV-000000-000/status", map[string]string{"status": "closed"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComplaintExport(t *testing.T) {
	repo := newMemComplaints()
	seed(t, repo,
		models.Complaint{PhoneNumber: "+1", RecordingURL: "r1"},
		models.Complaint{PhoneNumber: "+2", RecordingURL: "r2", Status: models.StatusClosed},
	)
	h := newComplaintRouter(repo, recordings.Nop{})

	rec := doJSON(t, h, http.MethodGet, "/api/admin/complaints/export?status=closed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetComplaints)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "+2", rows[1][1])
}

func TestReportsSummary(t *testing.T) {
	repo := newMemComplaints()
	seed(t, repo,
		models.Complaint{PhoneNumber: "+1", RecordingURL: "r"},
		models.Complaint{PhoneNumber: "+2", RecordingURL: "r", Priority: models.PriorityUrgent},
		models.Complaint{PhoneNumber: "+3", RecordingURL: "r", Status: models.StatusResolved},
	)
	rec := doJSON(t, newComplaintRouter(repo, recordings.Nop{}), http.MethodGet, "/api/admin/reports/summary", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":2,"resolved7d":1,"urgentOpen":1}`, rec.Body.String())
}

func TestRecordingLookup(t *testing.T) {
	tracker := &memTracker{}
	require.NoError(t, tracker.Record(context.Background(), "RE1", "completed"))

	h := newComplaintRouter(newMemComplaints(), tracker)
	rec := doJSON(t, h, http.MethodGet, "/api/admin/recordings/RE1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"recordingStatus":"completed"`)

	rec = doJSON(t, h, http.MethodGet, "/api/admin/recordings/RE2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, newComplaintRouter(newMemComplaints(), recordings.Nop{}), http.MethodGet, "/api/admin/recordings/RE1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
