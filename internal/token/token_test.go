// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testSecret, time.Hour, 24*time.Hour, NewMemoryRefreshStore())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("", time.Hour, time.Hour, NewMemoryRefreshStore()); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestIssueAndParseAccess(t *testing.T) {
	m := newTestManager(t)
	userID := uuid.New()

	pair, err := m.Issue(context.Background(), userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	got, err := claims.UserID()
	if err != nil || got != userID {
		t.Errorf("subject: got %v (%v), want %v", got, err, userID)
	}

	if _, err := m.ParseAccess(pair.Refresh); !errors.Is(err, ErrInvalid) {
		t.Errorf("refresh token used as access: got %v, want ErrInvalid", err)
	}
}

func TestParseAccessRejects(t *testing.T) {
	m := newTestManager(t)
	pair, _ := m.Issue(context.Background(), uuid.New())

	other, _ := NewManager("a-completely-different-secret-value!!", time.Hour, time.Hour, NewMemoryRefreshStore())
	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Issue(context.Background(), uuid.New())

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Type: TypeAccess})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong secret", func() string { p, _ := other.Issue(context.Background(), uuid.New()); return p.Access }()},
		{"expired", old.Access},
		{"alg none", unsigned},
		{"tampered", pair.Access + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ParseAccess(tt.raw); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestRotateIsSingleUse(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	userID := uuid.New()

	pair, err := m.Issue(ctx, userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := m.Rotate(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if got != userID {
		t.Errorf("Rotate user: got %v, want %v", got, userID)
	}

	if _, err := m.Rotate(ctx, pair.Refresh); !errors.Is(err, ErrRevoked) {
		t.Errorf("second Rotate: got %v, want ErrRevoked", err)
	}
}

func TestRotateRejectsAccessToken(t *testing.T) {
	m := newTestManager(t)
	pair, _ := m.Issue(context.Background(), uuid.New())
	if _, err := m.Rotate(context.Background(), pair.Access); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestMemoryRefreshStoreExpiry(t *testing.T) {
	s := NewMemoryRefreshStore()
	ctx := context.Background()
	id := uuid.New()

	if err := s.Save(ctx, "jti", id, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := s.Consume(ctx, "jti"); !errors.Is(err, ErrRevoked) {
		t.Errorf("expired entry: got %v, want ErrRevoked", err)
	}
}
