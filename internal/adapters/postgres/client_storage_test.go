package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/debate-club/portal/internal/errors"
	"github.com/debate-club/portal/internal/ports"
	"github.com/debate-club/portal/internal/testutil"
)

func TestClientStorage_Integration(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	now := testutil.TestTime()
	clock := func() time.Time { return now }
	store := NewClientStorage(ClientStorageOptions{DB: db, TTL: time.Hour, Now: clock})
	ls := store.For("client-1")

	t.Run("missing key", func(t *testing.T) {
		_, err := ls.GetItem(ctx, ports.StorageKeyToken)
		assert.ErrorIs(t, err, ports.ErrItemNotFound)
	})

	t.Run("set then get then overwrite", func(t *testing.T) {
		require.NoError(t, ls.SetItem(ctx, ports.StorageKeyToken, "t1"))
		got, err := ls.GetItem(ctx, ports.StorageKeyToken)
		require.NoError(t, err)
		assert.Equal(t, "t1", got)

		require.NoError(t, ls.SetItem(ctx, ports.StorageKeyToken, "t2"))
		got, err = ls.GetItem(ctx, ports.StorageKeyToken)
		require.NoError(t, err)
		assert.Equal(t, "t2", got)
	})

	t.Run("scoped per client", func(t *testing.T) {
		_, err := store.For("client-2").GetItem(ctx, ports.StorageKeyToken)
		assert.ErrorIs(t, err, ports.ErrItemNotFound)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		require.NoError(t, ls.RemoveItem(ctx, ports.StorageKeyToken))
		require.NoError(t, ls.RemoveItem(ctx, ports.StorageKeyToken))
		_, err := ls.GetItem(ctx, ports.StorageKeyToken)
		assert.ErrorIs(t, err, ports.ErrItemNotFound)
	})

	t.Run("expired rows read as absent and purge", func(t *testing.T) {
		require.NoError(t, ls.SetItem(ctx, ports.StorageKeyUser, `{"id":"u1"}`))
		now = now.Add(2 * time.Hour)

		_, err := ls.GetItem(ctx, ports.StorageKeyUser)
		assert.ErrorIs(t, err, ports.ErrItemNotFound)

		n, err := store.PurgeExpired(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("empty client id", func(t *testing.T) {
		err := store.For("").SetItem(ctx, ports.StorageKeyToken, "x")
		assert.True(t, apperrors.IsValidation(err))
	})
}
