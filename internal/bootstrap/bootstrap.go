// Package bootstrap opens the backing stores selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"civic-backend/internal/config"
	"civic-backend/internal/database"
	"civic-backend/internal/idgen"
	"civic-backend/internal/recordings"
	"civic-backend/internal/repository"
	mongorepo "civic-backend/internal/repository/mongo"
	"civic-backend/internal/repository/postgres"
)

type Stores struct {
	Complaints repository.ComplaintRepository
	Users      repository.UserRepository
	Posts      repository.PostRepository
	Tracker    recordings.Tracker
	IDs        *idgen.Generator

	pool    *pgxpool.Pool
	mdb     *mongo.Database
	closers []func()
}

// Open connects to the configured database and, when REDIS_ADDR is set, to
// redis. A redis failure only disables recording tracking.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Stores, error) {
	s := &Stores{IDs: idgen.New(), Tracker: recordings.Nop{}}

	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := database.Open(ctx, cfg.DBURL)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		s.closers = append(s.closers, pool.Close)
		s.Complaints = postgres.NewComplaintRepo(pool, s.IDs.Complaint)
		s.Users = postgres.NewUserRepo(pool)
		s.Posts = postgres.NewPostRepo(pool)
	case config.DriverMongo:
		client, db, err := database.OpenMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		s.mdb = db
		s.closers = append(s.closers, func() { _ = client.Disconnect(context.Background()) })
		s.Complaints = mongorepo.NewComplaintRepo(db, s.IDs.Complaint)
		s.Users = mongorepo.NewUserRepo(db)
		s.Posts = mongorepo.NewPostRepo(db)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	if cfg.RedisAddr != "" {
		rdb, err := database.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, recording status tracking disabled")
		} else {
			s.closers = append(s.closers, func() { _ = rdb.Close() })
			s.Tracker = recordings.NewRedisTracker(rdb)
		}
	}
	return s, nil
}

// Migrate applies the SQL schema or creates the mongo indexes.
func (s *Stores) Migrate(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return database.Migrate(ctx, s.pool)
	case s.mdb != nil:
		return database.EnsureIndexes(ctx, s.mdb)
	}
	return errors.New("no database opened")
}

// Ping reports whether the opened database answers.
func (s *Stores) Ping(ctx context.Context) error {
	switch {
	case s.pool != nil:
		return s.pool.Ping(ctx)
	case s.mdb != nil:
		return s.mdb.Client().Ping(ctx, nil)
	}
	return errors.New("no database opened")
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}
