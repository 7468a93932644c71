// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package confirm issues and checks the one-time codes mailed to users
// during sign-in.
//
// Codes are never stored. Each code is an HOTP value whose secret is
// derived from the signing key and the user's identity, and whose counter
// is the user's state version. Rotating the state version (done by the
// user store once a code is exchanged) makes every earlier code invalid.
package confirm

import (
	"crypto/sha256"
	"encoding/base32"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
	"golang.org/x/crypto/hkdf"

	"yamdb/internal/models"
)

var (
	// ErrInvalidCode means the code does not match the user's state.
	ErrInvalidCode = errors.New("invalid confirmation code")
	// ErrExpiredCode means the code matched but was issued too long ago.
	ErrExpiredCode = errors.New("confirmation code expired")
)

const secretSize = 20

var otpOpts = hotp.ValidateOpts{
	Digits:    otp.DigitsEight,
	Algorithm: otp.AlgorithmSHA256,
}

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Generator creates and verifies confirmation codes.
type Generator struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewGenerator returns a Generator keyed by key. Codes older than ttl
// are rejected.
func NewGenerator(key []byte, ttl time.Duration) *Generator {
	return &Generator{key: key, ttl: ttl, now: time.Now}
}

// Generate returns the current code for u.
func (g *Generator) Generate(u *models.User) (string, error) {
	secret, err := g.secret(u)
	if err != nil {
		return "", err
	}
	code, err := hotp.GenerateCodeCustom(secret, uint64(u.StateVersion), otpOpts)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return code, nil
}

// Verify checks code against u's current state and the time the code
// was sent.
func (g *Generator) Verify(u *models.User, code string) error {
	if u.CodeSentAt == nil {
		return ErrInvalidCode
	}
	secret, err := g.secret(u)
	if err != nil {
		return err
	}
	ok, err := hotp.ValidateCustom(code, uint64(u.StateVersion), secret, otpOpts)
	if err != nil || !ok {
		return ErrInvalidCode
	}
	if g.now().Sub(*u.CodeSentAt) > g.ttl {
		return ErrExpiredCode
	}
	return nil
}

// secret derives the per-user HOTP secret. The email is part of the
// derivation so changing it invalidates outstanding codes.
func (g *Generator) secret(u *models.User) (string, error) {
	r := hkdf.New(sha256.New, g.key, u.ID[:], []byte("yamdb-confirm:"+u.Email))
	buf := make([]byte, secretSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("derive code secret: %w", err)
	}
	return secretEncoding.EncodeToString(buf), nil
}
