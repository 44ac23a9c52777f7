package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"civic-backend/internal/middleware"
	"civic-backend/internal/repository"
	"civic-backend/internal/service"
	"civic-backend/internal/utils"
)

type AuthHTTP struct {
	svc          *service.AuthService
	users        repository.UserRepository
	secureCookie bool
}

func NewAuthHTTP(s *service.AuthService, users repository.UserRepository, secureCookie bool) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users, secureCookie: secureCookie}
}

// POST /api/auth/register
func (h *AuthHTTP) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := h.svc.Register(r.Context(), in.Username, in.Email, in.Password)
		switch {
		case errors.Is(err, service.ErrUserExists), errors.Is(err, service.ErrInvalidInput):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{
			"msg":  "Registration successful! Please check your email to verify your account.",
			"user": u,
		})
	}
}

// GET /api/auth/verify/{token}
func (h *AuthHTTP) Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h.svc.Verify(r.Context(), chi.URLParam(r, "token"))
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"msg": "Email verified successfully! You can now log in."})
	}
}

// POST /api/auth/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
		switch {
		case errors.Is(err, service.ErrNotVerified):
			utils.Error(w, http.StatusUnauthorized, err.Error())
			return
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrInvalidCredentials):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}

		// Issue httpOnly session cookie
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secureCookie,
			Expires:  time.Now().Add(h.svc.SessionTTL()),
		})

		utils.JSON(w, http.StatusOK, map[string]any{
			"token": token,
			"user": map[string]any{
				"id":       u.ID,
				"username": u.Username,
				"email":    u.Email,
				"role":     u.Role,
			},
		})
	}
}

func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		if uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
