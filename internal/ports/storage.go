package ports

import (
	"context"
	"errors"
)

// Keys persisted per client. Both are written together on login and cleared together on logout.
const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"
)

// ErrItemNotFound is returned by LocalStorage.GetItem when the key is absent or expired.
var ErrItemNotFound = errors.New("storage item not found")

// LocalStorage is a string key/value store owned by a single browser client.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// ClientStorage hands out the LocalStorage scoped to one client id.
type ClientStorage interface {
	For(clientID string) LocalStorage
}
