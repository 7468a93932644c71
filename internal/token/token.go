// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package token issues and validates the JSON Web Tokens handed out by
// the authentication endpoints. Access tokens are stateless; refresh
// tokens are single-use and tracked in a RefreshStore.
package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

var (
	// ErrInvalid covers malformed, expired, tampered and wrong-type tokens.
	ErrInvalid = errors.New("invalid token")
	// ErrRevoked means a refresh token was already used or never issued.
	ErrRevoked = errors.New("refresh token revoked")
)

// Claims are the JWT claims of both token types.
type Claims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// Pair is an access token with its companion refresh token.
type Pair struct {
	Access  string
	Refresh string
}

// Manager signs and verifies tokens with HMAC-SHA256.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	refresh    RefreshStore
	now        func() time.Time
}

// NewManager returns a Manager. Refresh token IDs are recorded in store.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store RefreshStore) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		refresh:    store,
		now:        time.Now,
	}, nil
}

// Issue creates a new token pair for userID.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID) (*Pair, error) {
	access, err := m.sign(userID, TypeAccess, "", m.accessTTL)
	if err != nil {
		return nil, err
	}

	jti := uuid.NewString()
	refresh, err := m.sign(userID, TypeRefresh, jti, m.refreshTTL)
	if err != nil {
		return nil, err
	}
	if err := m.refresh.Save(ctx, jti, userID, m.refreshTTL); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &Pair{Access: access, Refresh: refresh}, nil
}

// ParseAccess validates an access token and returns its claims.
func (m *Manager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, TypeAccess)
}

// Rotate consumes a refresh token and returns the user it belonged to.
// The caller issues a fresh pair. A refresh token works exactly once.
func (m *Manager) Rotate(ctx context.Context, raw string) (uuid.UUID, error) {
	claims, err := m.parse(raw, TypeRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, ErrInvalid
	}

	owner, err := m.refresh.Consume(ctx, claims.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("consume refresh token: %w", err)
	}
	if owner != userID {
		return uuid.Nil, ErrRevoked
	}
	return userID, nil
}

func (m *Manager) sign(userID uuid.UUID, typ, jti string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := &Claims{
		Type: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

func (m *Manager) parse(raw, typ string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return nil, ErrInvalid
	}
	if claims.Type != typ {
		return nil, ErrInvalid
	}
	return claims, nil
}
