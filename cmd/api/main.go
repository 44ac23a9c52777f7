package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"civic-backend/internal/bootstrap"
	"civic-backend/internal/config"
	"civic-backend/internal/mailer"
	"civic-backend/internal/router"
	"civic-backend/internal/storage"
	"civic-backend/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// stores
	stores, err := bootstrap.Open(ctx, cfg, l)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db connect failed")
	}
	defer stores.Close()
	if err := stores.Migrate(ctx); err != nil {
		l.Fatal().Err(err).Msg("migration failed")
	}

	uploads, err := storage.New(cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("storage init failed")
	}

	// http
	r := router.New(l, cfg, router.Deps{
		Complaints: stores.Complaints,
		Users:      stores.Users,
		Posts:      stores.Posts,
		Tracker:    stores.Tracker,
		Store:      uploads,
		Mailer:     mailer.New(cfg.Mail, l),
		IDs:        stores.IDs,
		Ping:       stores.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Str("ivr", cfg.IVRBasePath).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		// graceful shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error().Err(err).Msg("server error")
		stores.Close()
		os.Exit(1)
	}
	l.Info().Msg("shutdown complete")
}
