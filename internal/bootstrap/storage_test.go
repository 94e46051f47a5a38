package bootstrap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/debate-club/portal/config"
	"github.com/debate-club/portal/internal/adapters/memory"
	redisadapter "github.com/debate-club/portal/internal/adapters/redis"
)

func TestBuildClientStorage(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		b, err := BuildClientStorage(config.StorageConfig{Backend: config.StorageBackendMemory, TTL: time.Hour}, nil)
		require.NoError(t, err)
		assert.IsType(t, &memory.ClientStorage{}, b.Storage)
		assert.Nil(t, b.Purger)
	})

	t.Run("redis", func(t *testing.T) {
		client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
		t.Cleanup(func() { _ = client.Close() })

		b, err := BuildClientStorage(
			config.StorageConfig{Backend: config.StorageBackendRedis, TTL: time.Hour, KeyPrefix: "t:"},
			&Infrastructure{Redis: client},
		)
		require.NoError(t, err)
		assert.IsType(t, &redisadapter.ClientStorage{}, b.Storage)
		assert.Nil(t, b.Purger, "redis expires keys itself")
	})

	t.Run("missing connections", func(t *testing.T) {
		_, err := BuildClientStorage(config.StorageConfig{Backend: config.StorageBackendRedis}, &Infrastructure{})
		require.Error(t, err)
		_, err = BuildClientStorage(config.StorageConfig{Backend: config.StorageBackendPostgres}, nil)
		require.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := BuildClientStorage(config.StorageConfig{Backend: "mongo"}, &Infrastructure{})
		require.Error(t, err)
	})
}

type countingPurger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 3, p.err
}

func TestRunStoragePurger(t *testing.T) {
	p := &countingPurger{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunStoragePurger(ctx, PurgeRunnerOptions{Purger: p, Interval: 5 * time.Millisecond, Logger: discardLogger()})
	}()

	require.Eventually(t, func() bool { return p.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("purger did not stop after cancel")
	}
}

func TestRunStoragePurger_KeepsGoingAfterFailure(t *testing.T) {
	p := &countingPurger{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = RunStoragePurger(ctx, PurgeRunnerOptions{Purger: p, Interval: 5 * time.Millisecond, Logger: discardLogger()})
	}()
	require.Eventually(t, func() bool { return p.calls.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestRunStoragePurger_RequiresPurger(t *testing.T) {
	require.Error(t, RunStoragePurger(context.Background(), PurgeRunnerOptions{}))
}

func TestInfrastructureClose_Empty(t *testing.T) {
	require.NoError(t, (&Infrastructure{}).Close())
}
