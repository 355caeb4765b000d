package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/vadimbarashkov/shortlink/internal/config"
	"github.com/vadimbarashkov/shortlink/internal/entity"
	"github.com/vadimbarashkov/shortlink/internal/recorder"
	"github.com/vadimbarashkov/shortlink/internal/usecase"
	"github.com/vadimbarashkov/shortlink/migrations"
	"github.com/vadimbarashkov/shortlink/pkg/redis"
	"github.com/vadimbarashkov/shortlink/pkg/sqldb"

	cachememory "github.com/vadimbarashkov/shortlink/internal/adapter/cache/memory"
	cacheredis "github.com/vadimbarashkov/shortlink/internal/adapter/cache/redis"
	repomemory "github.com/vadimbarashkov/shortlink/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/shortlink/internal/adapter/repository/sqlrepo"
)

type storage struct {
	links   usecase.LinkRepository
	records usecase.AccessRecordRepository
	close   func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	const op = "app.openStorage"

	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		repo := repomemory.NewRepository()
		return &storage{
			links:   repo,
			records: repo.AccessRecords(),
			close:   func() {},
		}, nil

	case config.StorageDriverSQLite:
		if err := migrations.Run(cfg.Storage.SQLite.MigrateURL(), migrations.DialectSQLite); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		db, err = sqldb.Open(ctx, sqldb.DriverSQLite, cfg.Storage.SQLite.DSN(),
			sqldb.WithMaxOpenConns(1),
		)

	default:
		pg := cfg.Storage.Postgres

		if err := migrations.Run(pg.DSN(), migrations.DialectPostgres); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		db, err = sqldb.Open(ctx, sqldb.DriverPostgres, pg.DSN(),
			sqldb.WithConnMaxIdleTime(pg.ConnMaxIdleTime),
			sqldb.WithConnMaxLifetime(pg.ConnMaxLifetime),
			sqldb.WithMaxIdleConns(pg.MaxIdleConns),
			sqldb.WithMaxOpenConns(pg.MaxOpenConns),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &storage{
		links:   sqlrepo.NewLinkRepository(db),
		records: sqlrepo.NewAccessRecordRepository(db),
		close:   func() { db.Close() },
	}, nil
}

func openCache(ctx context.Context, cfg *config.Config) (usecase.Cache, func(), error) {
	const op = "app.openCache"

	if cfg.Cache.Driver == config.CacheDriverMemory {
		return cachememory.New(cfg.Cache.Memory.CleanupInterval), func() {}, nil
	}

	rc := cfg.Cache.Redis

	client, err := redis.New(ctx, redis.Options{
		Addr:         rc.Addr(),
		Password:     rc.Password,
		DB:           rc.DB,
		DialTimeout:  rc.DialTimeout,
		ReadTimeout:  rc.ReadTimeout,
		WriteTimeout: rc.WriteTimeout,
		PoolSize:     rc.PoolSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	return cacheredis.New(client), func() { client.Close() }, nil
}

type accessRecorder interface {
	Record(ctx context.Context, ev entity.AccessEvent) error
	Run(ctx context.Context) error
}

func newRecorder(cfg *config.Config, stats recorder.StatsSaver, logger *slog.Logger) (accessRecorder, func(), error) {
	const op = "app.newRecorder"

	rc := cfg.Recorder

	switch rc.Mode {
	case config.RecorderModeAsync:
		return recorder.NewAsync(stats, logger, recorder.AsyncOptions{
			Workers:     rc.Workers,
			QueueSize:   rc.QueueSize,
			SaveTimeout: rc.SaveTimeout,
		}), func() {}, nil

	case config.RecorderModeNATS:
		conn, err := nats.Connect(rc.NATS.URL,
			nats.Name(serviceName),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: failed to connect to nats: %w", op, err)
		}

		return recorder.NewNATS(conn, stats, logger, recorder.NATSOptions{
			Subject:     rc.NATS.Subject,
			QueueGroup:  rc.NATS.QueueGroup,
			SaveTimeout: rc.SaveTimeout,
		}), func() { conn.Close() }, nil

	default:
		return recorder.NewSync(stats), func() {}, nil
	}
}
