// Package memory provides an in-process client storage for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/debate-club/portal/internal/ports"
)

type entry struct {
	value   string
	expires time.Time
}

// ClientStorage is a mutex-guarded map of client id to keys. Contents are lost on restart.
type ClientStorage struct {
	mu      sync.Mutex
	clients map[string]map[string]entry
	ttl     time.Duration
	now     func() time.Time

	// FailWith, when set, is returned by every operation. Tests use it to simulate an outage.
	FailWith error
}

var (
	_ ports.ClientStorage = (*ClientStorage)(nil)
	_ ports.LocalStorage  = (*scopedStorage)(nil)
)

// NewClientStorage creates an empty storage. A zero ttl keeps keys forever.
func NewClientStorage(ttl time.Duration) *ClientStorage {
	return &ClientStorage{
		clients: make(map[string]map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock overrides the clock. It returns s for chaining.
func (s *ClientStorage) WithClock(now func() time.Time) *ClientStorage {
	s.now = now
	return s
}

// For returns the storage scoped to clientID.
//
//nolint:ireturn // port contract
func (s *ClientStorage) For(clientID string) ports.LocalStorage {
	return &scopedStorage{parent: s, clientID: clientID}
}

// Len reports how many live keys clientID holds.
func (s *ClientStorage) Len(clientID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for _, e := range s.clients[clientID] {
		if e.expires.IsZero() || now.Before(e.expires) {
			n++
		}
	}
	return n
}

func (s *ClientStorage) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

type scopedStorage struct {
	parent   *ClientStorage
	clientID string
}

func (s *scopedStorage) GetItem(_ context.Context, key string) (string, error) {
	p := s.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return "", p.FailWith
	}

	items := p.clients[s.clientID]
	e, ok := items[key]
	if !ok {
		return "", ports.ErrItemNotFound
	}
	if !e.expires.IsZero() && !p.now().Before(e.expires) {
		delete(items, key)
		return "", ports.ErrItemNotFound
	}
	e.expires = p.expiry()
	items[key] = e
	return e.value, nil
}

func (s *scopedStorage) SetItem(_ context.Context, key, value string) error {
	p := s.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}

	items, ok := p.clients[s.clientID]
	if !ok {
		items = make(map[string]entry)
		p.clients[s.clientID] = items
	}
	items[key] = entry{value: value, expires: p.expiry()}
	return nil
}

func (s *scopedStorage) RemoveItem(_ context.Context, key string) error {
	p := s.parent
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}

	items := p.clients[s.clientID]
	delete(items, key)
	if len(items) == 0 {
		delete(p.clients, s.clientID)
	}
	return nil
}
