package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageBackend selects where per-client storage lives.
type StorageBackend string

const (
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendMemory   StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "redis", "postgres", "memory":
		*s = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q (valid options: redis, postgres, memory)", v)
	}
}

const (
	defaultStorageTTL = 7 * 24 * time.Hour
	minStorageTTL     = time.Minute

	defaultPurgeInterval = 10 * time.Minute
)

// StorageConfig controls per-client storage.
type StorageConfig struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"redis"`

	// TTL is the idle lifetime of a client's stored keys. Reads extend it.
	TTL time.Duration `env:"STORAGE_TTL" envDefault:"168h"`

	// KeyPrefix namespaces Redis keys.
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:"portal:client:"`

	// PurgeInterval is how often expired Postgres rows are deleted. Redis expires keys itself.
	PurgeInterval time.Duration `env:"STORAGE_PURGE_INTERVAL" envDefault:"10m"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendRedis
	}
	if s.TTL <= 0 {
		s.TTL = defaultStorageTTL
	}
	if s.TTL < minStorageTTL {
		s.TTL = minStorageTTL
	}
	if strings.TrimSpace(s.KeyPrefix) == "" {
		s.KeyPrefix = "portal:client:"
	}
	if s.PurgeInterval < minStorageTTL {
		s.PurgeInterval = defaultPurgeInterval
	}
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"portal"`
	Password string `env:"PASSWORD"                envDefault:"portal"`
	Name     string `env:"NAME"                    envDefault:"portal"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}
