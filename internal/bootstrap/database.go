package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/redis/go-redis/v9"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/migrate"
)

const connectTimeout = 5 * time.Second

// DatabaseConfig contains configuration for the storage backend connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// PostgresDSN builds the connection URL for cfg.
func PostgresDSN(cfg config.DBConfig) string {
	// url.URL escapes special characters in credentials
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens the client storage database through the pgx driver.
func ConnectDB(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", PostgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Storage reads are single-row; a small pool is enough.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name,
		)
	}

	return db, nil
}

// ConnectRedis connects to the Redis topology in cfg and pings it.
//
//nolint:ireturn // direct, sentinel and cluster clients share redis.UniversalClient
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	target, err := resolveRedisTarget(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}
	client := target.newClient()

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis %s: %w", target.desc, pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("redis connected", "target", target.desc)
	}
	return client, nil
}

// redisTarget is a resolved Redis topology. Exactly one of the option sets is non-nil.
// desc never carries credentials.
type redisTarget struct {
	desc     string
	direct   *redis.Options
	failover *redis.FailoverOptions
	cluster  *redis.ClusterOptions
}

//nolint:ireturn // see ConnectRedis
func (t redisTarget) newClient() redis.UniversalClient {
	switch {
	case t.cluster != nil:
		return redis.NewClusterClient(t.cluster)
	case t.failover != nil:
		return redis.NewFailoverClient(t.failover)
	default:
		return redis.NewClient(t.direct)
	}
}

func resolveRedisTarget(cfg config.RedisConfig) (redisTarget, error) {
	switch {
	case cfg.UseCluster:
		return clusterTarget(cfg)
	case cfg.UseSentinel:
		return sentinelTarget(cfg)
	default:
		opts, err := redisURIOptions(cfg)
		if err != nil {
			return redisTarget{}, err
		}
		return redisTarget{desc: opts.Addr, direct: opts}, nil
	}
}

// redisURIOptions accepts a redis:// or rediss:// URL, or a bare host:port.
// REDIS_PASSWORD applies when the URL carries none.
func redisURIOptions(cfg config.RedisConfig) (*redis.Options, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("redis URI is required")
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		return &redis.Options{Addr: uri, Password: cfg.Password}, nil
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.Password == "" {
		opts.Password = cfg.Password
	}
	return opts, nil
}

// clusterTarget seeds the cluster from REDIS_CLUSTER_NODES, falling back to the URI.
func clusterTarget(cfg config.RedisConfig) (redisTarget, error) {
	opts := &redis.ClusterOptions{Password: cfg.Password}
	for _, node := range cfg.ClusterNodes {
		if node = strings.TrimSpace(node); node != "" {
			opts.Addrs = append(opts.Addrs, node)
		}
	}
	if len(opts.Addrs) == 0 && strings.TrimSpace(cfg.URI) != "" {
		seed, err := redisURIOptions(cfg)
		if err != nil {
			return redisTarget{}, err
		}
		opts.Addrs = []string{seed.Addr}
		opts.Username = seed.Username
		opts.Password = seed.Password
		opts.TLSConfig = seed.TLSConfig
	}
	if len(opts.Addrs) == 0 {
		return redisTarget{}, errors.New("redis cluster needs REDIS_CLUSTER_NODES or REDIS_URI")
	}
	return redisTarget{desc: "cluster:" + strings.Join(opts.Addrs, ","), cluster: opts}, nil
}

func sentinelTarget(cfg config.RedisConfig) (redisTarget, error) {
	if len(cfg.SentinelNodes) == 0 {
		return redisTarget{}, errors.New("redis sentinel needs REDIS_SENTINEL_NODES")
	}
	if cfg.SentinelMasterName == "" {
		return redisTarget{}, errors.New("redis sentinel needs REDIS_SENTINEL_MASTER_NAME")
	}
	return redisTarget{
		desc: "sentinel:" + cfg.SentinelMasterName,
		failover: &redis.FailoverOptions{
			MasterName:       cfg.SentinelMasterName,
			SentinelAddrs:    cfg.SentinelNodes,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		},
	}, nil
}

// RunMigrations creates the client_storage schema.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}

	return nil
}
