package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"civic-backend/internal/config"
	"civic-backend/internal/handlers"
	"civic-backend/internal/idgen"
	"civic-backend/internal/ivr"
	"civic-backend/internal/mailer"
	"civic-backend/internal/middleware"
	"civic-backend/internal/models"
	"civic-backend/internal/recordings"
	"civic-backend/internal/repository"
	"civic-backend/internal/service"
	"civic-backend/internal/storage"
)

// Deps are the stores and clients the routes are built from.
type Deps struct {
	Complaints repository.ComplaintRepository
	Users      repository.UserRepository
	Posts      repository.PostRepository
	Tracker    recordings.Tracker
	Store      storage.Store
	Mailer     mailer.Mailer
	IDs        *idgen.Generator
	// Ping checks the database for /healthz; nil skips the check.
	Ping func(ctx context.Context) error
}

func New(log zerolog.Logger, cfg config.Config, d Deps) http.Handler {
	if d.Tracker == nil {
		d.Tracker = recordings.Nop{}
	}
	if d.Mailer == nil {
		d.Mailer = mailer.NewLogMailer(log)
	}
	if d.IDs == nil {
		d.IDs = idgen.New()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Total-Count", "Content-Disposition"},
		AllowCredentials: cfg.Origin != "*",
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))

	// Health
	r.Get("/healthz", handlers.Health(d.Ping, log))

	if local, ok := d.Store.(*storage.Local); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	// IVR webhooks
	ctl := ivr.NewController(d.Complaints, d.IDs, ivr.NewRoutes(cfg.IVRBasePath), log)
	ih := handlers.NewIVRHTTP(ctl, d.Tracker, log)
	r.Route(cfg.IVRBasePath, func(r chi.Router) {
		r.Use(middleware.RecoverWith(log, ih.Fallback()))
		r.Use(middleware.TwilioSignature(log, cfg.TwilioAuthToken, cfg.PublicURL))
		r.Post("/voice", ih.Voice())
		r.Post("/menu", ih.Menu())
		r.Post("/process-recording", ih.ProcessRecording())
		r.Post("/status", ih.Status())
		r.Post("/recording-status", ih.RecordingStatus())
	})

	// Services + handlers
	authSvc := service.NewAuthService(d.Users, d.Mailer, service.AuthOptions{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		ClientURL:     cfg.ClientURL,
	}, log)
	ah := handlers.NewAuthHTTP(authSvc, d.Users, cfg.IsProd())
	ph := handlers.NewProfileHTTP(d.Users)
	posts := handlers.NewPostHTTP(service.NewPostService(d.Posts, d.Store, log))
	ch := handlers.NewComplaintHTTP(d.Complaints, d.Tracker, log)
	rh := handlers.NewReportsHTTP(d.Complaints)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithAuth(log, cfg))

		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(20, time.Minute))
			r.Post("/register", ah.Register())
			r.Get("/verify/{token}", ah.Verify())
			r.Post("/login", ah.Login())
			r.Post("/logout", ah.Logout())
			r.With(middleware.RequireAuth).Get("/me", ah.Me())
		})

		r.Route("/profile", func(r chi.Router) {
			r.With(middleware.RequireAuth).Get("/me", ph.Me())
			r.With(middleware.RequireAuth).Post("/update", ph.Update())
			r.Get("/{id}", ph.Public())
			r.With(middleware.RequireAuth, middleware.RequireSelfOrRoles(models.RoleStaff, models.RoleAdmin)).
				Get("/{id}/full", ph.Full())
		})

		r.Route("/posts", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", posts.List())
			r.Post("/", posts.Create())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", posts.Get())
				r.Post("/like", posts.Like())
				r.Post("/comments", posts.Comment())
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
			r.Route("/complaints", func(r chi.Router) {
				r.Get("/", ch.List())
				r.Post("/", ch.Create())
				r.Get("/export", ch.Export())
				r.Get("/{id}", ch.Get())
				r.Put("/{id}/status", ch.UpdateStatus())
			})
			r.Get("/reports/summary", rh.Summary())
			r.Get("/recordings/{sid}", ch.Recording())
		})
	})

	return r
}
