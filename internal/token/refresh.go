// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshStore tracks outstanding refresh token IDs.
type RefreshStore interface {
	// Save records jti as valid for userID until ttl elapses.
	Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error
	// Consume removes jti and returns its owner. A missing or already
	// consumed jti returns ErrRevoked.
	Consume(ctx context.Context, jti string) (uuid.UUID, error)
}

// keyPrefix namespaces refresh token keys in Valkey.
const keyPrefix = "refresh:"

// ValkeyRefreshStore keeps refresh token IDs in Valkey with a TTL.
type ValkeyRefreshStore struct {
	client *redis.Client
}

// NewValkeyRefreshStore returns a store backed by client.
func NewValkeyRefreshStore(client *redis.Client) *ValkeyRefreshStore {
	return &ValkeyRefreshStore{client: client}
}

func (s *ValkeyRefreshStore) Save(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+jti, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("refresh store set: %w", err)
	}
	return nil
}

// Consume uses GETDEL so two concurrent refreshes cannot both succeed.
func (s *ValkeyRefreshStore) Consume(ctx context.Context, jti string) (uuid.UUID, error) {
	if jti == "" {
		return uuid.Nil, ErrRevoked
	}
	val, err := s.client.GetDel(ctx, keyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrRevoked
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("refresh store getdel: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("refresh store value: %w", err)
	}
	return id, nil
}

// MemoryRefreshStore is an in-process RefreshStore for tests and
// single-instance development runs.
type MemoryRefreshStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	userID  uuid.UUID
	expires time.Time
}

// NewMemoryRefreshStore returns an empty MemoryRefreshStore.
func NewMemoryRefreshStore() *MemoryRefreshStore {
	return &MemoryRefreshStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryRefreshStore) Save(_ context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[jti] = memoryEntry{userID: userID, expires: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshStore) Consume(_ context.Context, jti string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[jti]
	if !ok {
		return uuid.Nil, ErrRevoked
	}
	delete(s.entries, jti)
	if s.now().After(e.expires) {
		return uuid.Nil, ErrRevoked
	}
	return e.userID, nil
}
