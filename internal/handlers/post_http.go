package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civic-backend/internal/middleware"
	"civic-backend/internal/repository"
	"civic-backend/internal/service"
	"civic-backend/internal/utils"
)

const (
	maxPostBody     = 64 << 20
	multipartMemory = 8 << 20

	defaultPostLimit = 20
	maxPostLimit     = 100
)

type PostHTTP struct {
	svc *service.PostService
}

func NewPostHTTP(svc *service.PostService) *PostHTTP { return &PostHTTP{svc: svc} }

// POST /api/posts (multipart: media[], voiceMsg, description, latitude, longitude)
func (h *PostHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())

		r.Body = http.MaxBytesReader(w, r.Body, maxPostBody)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		media, closeMedia, err := openUploads(r.MultipartForm.File["media"])
		defer closeMedia()
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		voice, closeVoice, err := openUploads(r.MultipartForm.File["voiceMsg"])
		defer closeVoice()
		if err != nil {
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		p, err := h.svc.Create(r.Context(), service.NewPost{
			UserID:      uid,
			Description: r.FormValue("description"),
			Latitude:    r.FormValue("latitude"),
			Longitude:   r.FormValue("longitude"),
			Media:       media,
			Voice:       voice,
		})
		switch {
		case errors.Is(err, service.ErrPostInvalid):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(w, http.StatusUnauthorized, "user not found")
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, map[string]any{"msg": "Post created successfully", "post": p})
	}
}

// GET /api/posts?limit=&offset=
func (h *PostHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qv := r.URL.Query()
		limit := utils.Clamp(utils.QueryInt(qv, "limit", defaultPostLimit), defaultPostLimit, maxPostLimit)
		offset := max(utils.QueryInt(qv, "offset", 0), 0)

		items, err := h.svc.List(r.Context(), limit, offset)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// GET /api/posts/{id}
func (h *PostHTTP) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		if p == nil {
			utils.Error(w, http.StatusNotFound, "post not found")
			return
		}
		utils.JSON(w, http.StatusOK, p)
	}
}

// POST /api/posts/{id}/like
func (h *PostHTTP) Like() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		liked, count, err := h.svc.ToggleLike(r.Context(), chi.URLParam(r, "id"), uid)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(w, http.StatusNotFound, "post not found")
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{"liked": liked, "likes": count})
	}
}

// POST /api/posts/{id}/comments
func (h *PostHTTP) Comment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := middleware.UserID(r.Context())
		var in struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid json")
			return
		}
		c, err := h.svc.Comment(r.Context(), chi.URLParam(r, "id"), uid, in.Text)
		switch {
		case errors.Is(err, service.ErrPostInvalid):
			utils.Error(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, repository.ErrNotFound):
			utils.Error(w, http.StatusNotFound, "post not found")
			return
		case err != nil:
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// openUploads opens every part; the returned func closes whatever was opened.
func openUploads(fhs []*multipart.FileHeader) ([]service.Upload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}
	out := make([]service.Upload, 0, len(fhs))
	for _, fh := range fhs {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, errors.New("cannot read uploaded file " + fh.Filename)
		}
		files = append(files, f)
		out = append(out, service.Upload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return out, closeAll, nil
}
