package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"civic-backend/internal/middleware"
	"civic-backend/internal/models"
	"civic-backend/internal/repository"
	"civic-backend/internal/utils"
)

type ProfileHTTP struct {
	users repository.UserRepository
}

func NewProfileHTTP(users repository.UserRepository) *ProfileHTTP {
	return &ProfileHTTP{users: users}
}

// GET /api/profile/me
func (h *ProfileHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		h.writeUser(w, r, uid, func(u *models.User) any { return u })
	}
}

// POST /api/profile/update
// profilePic is only replaced when a non-empty value is sent.
func (h *ProfileHTTP) Update() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())

		var in struct {
			Name       string `json:"name"`
			Age        *int   `json:"age"`
			DOB        string `json:"dob"`
			Phone      string `json:"phone"`
			Bio        string `json:"bio"`
			ProfilePic string `json:"profilePic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		if in.Age != nil && (*in.Age < 0 || *in.Age > 150) {
			utils.Error(w, http.StatusBadRequest, "age must be between 0 and 150")
			return
		}
		upd := models.ProfileUpdate{
			Name:  strings.TrimSpace(in.Name),
			Age:   in.Age,
			Phone: strings.TrimSpace(in.Phone),
			Bio:   strings.TrimSpace(in.Bio),
		}
		if in.DOB != "" {
			dob, err := parseDate(in.DOB)
			if err != nil {
				utils.Error(w, http.StatusBadRequest, "dob must be a date like 2006-01-02")
				return
			}
			upd.DOB = &dob
		}
		if pic := strings.TrimSpace(in.ProfilePic); pic != "" {
			upd.ProfilePic = &pic
		}

		u, err := h.users.UpdateProfile(r.Context(), uid, upd)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"msg": "Profile updated", "user": u})
	}
}

// GET /api/profile/{id}
func (h *ProfileHTTP) Public() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeUser(w, r, chi.URLParam(r, "id"), func(u *models.User) any { return u.Public() })
	}
}

// GET /api/profile/{id}/full
func (h *ProfileHTTP) Full() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeUser(w, r, chi.URLParam(r, "id"), func(u *models.User) any { return u })
	}
}

func (h *ProfileHTTP) writeUser(w http.ResponseWriter, r *http.Request, id string, view func(*models.User) any) {
	if id == "" {
		utils.Error(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if u == nil {
		utils.Error(w, http.StatusNotFound, "user not found")
		return
	}
	utils.JSON(w, http.StatusOK, view(u))
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
