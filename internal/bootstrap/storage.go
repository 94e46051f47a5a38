package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/adapters/memory"
	"github.com/debate-club/portal/internal/adapters/postgres"
	redisadapter "github.com/debate-club/portal/internal/adapters/redis"
	"github.com/debate-club/portal/internal/ports"
)

const defaultPurgeInterval = 10 * time.Minute

// Infrastructure holds the connections opened for the selected storage backend.
// DB and Redis are nil when the backend does not use them.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases every open connection.
func (i *Infrastructure) Close() error {
	var errs []error
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ConnectInfrastructure opens only what cfg's storage backend needs and runs migrations
// when Postgres is selected and migrations on start are enabled.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.NeedsPostgres() {
		db, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db

		if cfg.Postgres.RunMigrationsOnStart {
			if err = RunMigrations(ctx, db, logger); err != nil {
				return nil, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
	}

	if cfg.NeedsRedis() {
		client, err := ConnectRedis(ctx, dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.Redis = client
	}

	return infra, nil
}

// Purger deletes expired client storage rows.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StorageBundle is the client storage chosen by configuration.
// Purger is set for backends without native expiry.
type StorageBundle struct {
	Storage ports.ClientStorage
	Purger  Purger
}

// BuildClientStorage selects the client storage adapter for cfg.
func BuildClientStorage(cfg config.StorageConfig, infra *Infrastructure) (StorageBundle, error) {
	switch cfg.Backend {
	case config.StorageBackendMemory:
		return StorageBundle{Storage: memory.NewClientStorage(cfg.TTL)}, nil

	case config.StorageBackendPostgres:
		if infra == nil || infra.DB == nil {
			return StorageBundle{}, errors.New("postgres storage selected but no database connection")
		}
		store := postgres.NewClientStorage(postgres.ClientStorageOptions{DB: infra.DB, TTL: cfg.TTL})
		return StorageBundle{Storage: store, Purger: store}, nil

	case config.StorageBackendRedis:
		if infra == nil || infra.Redis == nil {
			return StorageBundle{}, errors.New("redis storage selected but no redis connection")
		}
		return StorageBundle{Storage: redisadapter.NewClientStorage(redisadapter.ClientStorageOptions{
			Client: infra.Redis,
			Prefix: cfg.KeyPrefix,
			TTL:    cfg.TTL,
		})}, nil

	default:
		return StorageBundle{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// PurgeRunnerOptions configures RunStoragePurger.
type PurgeRunnerOptions struct {
	Purger   Purger
	Interval time.Duration
	Logger   *slog.Logger
}

// RunStoragePurger deletes expired client storage every Interval until ctx is cancelled.
// A failed pass is logged and retried on the next tick.
func RunStoragePurger(ctx context.Context, opts PurgeRunnerOptions) error {
	if opts.Purger == nil {
		return errors.New("purger is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "storage_purger")
	logger.InfoContext(ctx, "starting storage purger", "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		purgeOnce(ctx, opts.Purger, logger)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func purgeOnce(ctx context.Context, p Purger, logger *slog.Logger) {
	n, err := p.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.WarnContext(ctx, "purge expired client storage failed", "error", err)
		}
		return
	}
	if n > 0 {
		logger.InfoContext(ctx, "purged expired client storage", "rows", n)
	}
}
