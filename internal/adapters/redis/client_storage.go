package redis

// Package redis provides the Redis-backed client storage adapter.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/debate-club/portal/internal/ports"
)

const defaultPrefix = "portal:client:"

// ClientStorage keeps each browser's stored keys under <prefix><clientID>:<key>.
// Every read and write pushes the key's expiry out by ttl.
type ClientStorage struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var (
	_ ports.ClientStorage = (*ClientStorage)(nil)
	_ ports.LocalStorage  = (*scopedStorage)(nil)
)

// ClientStorageOptions configures a ClientStorage.
type ClientStorageOptions struct {
	Client redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

// NewClientStorage creates a Redis-backed client storage.
func NewClientStorage(opts ClientStorageOptions) *ClientStorage {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ClientStorage{
		client: opts.Client,
		prefix: prefix,
		ttl:    opts.TTL,
	}
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // port contract
func (s *ClientStorage) For(clientID string) ports.LocalStorage {
	return &scopedStorage{parent: s, clientID: clientID}
}

type scopedStorage struct {
	parent   *ClientStorage
	clientID string
}

func (s *scopedStorage) key(k string) (string, error) {
	if s.clientID == "" {
		return "", errors.New("client ID cannot be empty")
	}
	if k == "" {
		return "", errors.New("storage key cannot be empty")
	}
	return s.parent.prefix + s.clientID + ":" + k, nil
}

func (s *scopedStorage) GetItem(ctx context.Context, k string) (string, error) {
	key, err := s.key(k)
	if err != nil {
		return "", ports.ErrItemNotFound
	}

	var val string
	if s.parent.ttl > 0 {
		val, err = s.parent.client.GetEx(ctx, key, s.parent.ttl).Result()
	} else {
		val, err = s.parent.client.Get(ctx, key).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ports.ErrItemNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return val, nil
}

func (s *scopedStorage) SetItem(ctx context.Context, k, value string) error {
	key, err := s.key(k)
	if err != nil {
		return err
	}
	if setErr := s.parent.client.Set(ctx, key, value, s.parent.ttl).Err(); setErr != nil {
		return fmt.Errorf("redis set: %w", setErr)
	}
	return nil
}

func (s *scopedStorage) RemoveItem(ctx context.Context, k string) error {
	key, err := s.key(k)
	if err != nil {
		return nil //nolint:nilerr // nothing stored under an invalid key
	}
	if delErr := s.parent.client.Del(ctx, key).Err(); delErr != nil {
		return fmt.Errorf("redis del: %w", delErr)
	}
	return nil
}
