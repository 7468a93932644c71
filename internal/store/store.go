// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides database access methods for all YaMDb entities.
// Each store struct wraps a *sql.DB and exposes typed query methods.
// Lookups return (nil, nil) when the row does not exist.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate is matched (via errors.Is) by every unique-constraint
// violation reported by a store.
var ErrDuplicate = errors.New("duplicate record")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// DuplicateError reports which unique constraint rejected a write.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate record (%s)", e.Constraint)
}

// Is makes errors.Is(err, ErrDuplicate) succeed.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// ConstraintOf returns the violated constraint name, or "" if err is not
// a duplicate error.
func ConstraintOf(err error) string {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		return dup.Constraint
	}
	return ""
}

// Unique constraint names from the migrations.
const (
	ConstraintUserEmail    = "users_email_key"
	ConstraintUserUsername = "users_username_key"
	ConstraintCategorySlug = "categories_slug_key"
	ConstraintGenreSlug    = "genres_slug_key"
	ConstraintReviewAuthor = "reviews_author_title_key"
)

// wrap converts unique violations into *DuplicateError and annotates
// everything else with op.
func wrap(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &DuplicateError{Constraint: pgErr.ConstraintName}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Page selects a window of a list query.
type Page struct {
	Limit  int
	Offset int
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
