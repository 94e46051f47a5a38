// Package postgres provides the Postgres-backed client storage adapter.
// The schema is created by internal/migrate.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
)

const (
	selectItemSQL = `
		UPDATE client_storage
		   SET expires_at = $3
		 WHERE client_id = $1 AND key = $2 AND expires_at > $4
		RETURNING value`
	upsertItemSQL = `
		INSERT INTO client_storage (client_id, key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (client_id, key)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = EXCLUDED.updated_at`
	deleteItemSQL    = `DELETE FROM client_storage WHERE client_id = $1 AND key = $2`
	deleteExpiredSQL = `DELETE FROM client_storage WHERE expires_at <= $1`
)

// ClientStorage keeps client keys in the client_storage table.
// Reads extend expires_at by ttl; expired rows read as absent.
type ClientStorage struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

var (
	_ ports.ClientStorage = (*ClientStorage)(nil)
	_ ports.LocalStorage  = (*scopedStorage)(nil)
)

// ClientStorageOptions configures a ClientStorage.
type ClientStorageOptions struct {
	DB  *sql.DB
	TTL time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

// NewClientStorage creates a Postgres-backed client storage.
func NewClientStorage(opts ClientStorageOptions) *ClientStorage {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &ClientStorage{db: opts.DB, ttl: ttl, now: now}
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // port contract
func (s *ClientStorage) For(clientID string) ports.LocalStorage {
	return &scopedStorage{parent: s, clientID: clientID}
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *ClientStorage) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, deleteExpiredSQL, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired client storage: %w", apperrors.MapDBError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge expired rows affected: %w", err)
	}
	return n, nil
}

type scopedStorage struct {
	parent   *ClientStorage
	clientID string
}

func (s *scopedStorage) GetItem(ctx context.Context, key string) (string, error) {
	if s.clientID == "" || key == "" {
		return "", ports.ErrItemNotFound
	}
	now := s.parent.now().UTC()

	var value string
	err := s.parent.db.QueryRowContext(ctx, selectItemSQL,
		s.clientID, key, now.Add(s.parent.ttl), now).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ports.ErrItemNotFound
		}
		return "", fmt.Errorf("get client storage item: %w", apperrors.MapDBError(err))
	}
	return value, nil
}

func (s *scopedStorage) SetItem(ctx context.Context, key, value string) error {
	if s.clientID == "" {
		return apperrors.ValidationField("client_id", "client ID cannot be empty")
	}
	if key == "" {
		return apperrors.ValidationField("key", "storage key cannot be empty")
	}
	now := s.parent.now().UTC()
	if _, err := s.parent.db.ExecContext(ctx, upsertItemSQL,
		s.clientID, key, value, now.Add(s.parent.ttl), now); err != nil {
		return fmt.Errorf("set client storage item: %w", apperrors.MapDBError(err))
	}
	return nil
}

func (s *scopedStorage) RemoveItem(ctx context.Context, key string) error {
	if s.clientID == "" || key == "" {
		return nil
	}
	if _, err := s.parent.db.ExecContext(ctx, deleteItemSQL, s.clientID, key); err != nil {
		return fmt.Errorf("remove client storage item: %w", apperrors.MapDBError(err))
	}
	return nil
}
