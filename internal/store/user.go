// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"yamdb/internal/models"
)

// UserStore handles all user-related database operations.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore with the given database connection.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, email, first_name, last_name, bio, role,
	is_staff, is_superuser, is_active, state_version, code_sent_at, created_at, updated_at`

// upsertAttempts bounds username collision retries in UpsertByEmail.
const upsertAttempts = 4

// usernameSuffixAlphabet is used for generated username suffixes.
const usernameSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func scanUser(row scanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio, &u.Role,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.StateVersion, &u.CodeSentAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// findOne runs a single-row user query. Returns nil if not found.
func (s *UserStore) findOne(ctx context.Context, op, where string, arg any) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindByID retrieves a user by their UUID. Returns nil if not found.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.findOne(ctx, "find user by id", "id = $1", id)
}

// FindByEmail retrieves a user by their email address. Returns nil if not found.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, "find user by email", "email = $1", email)
}

// FindByUsername retrieves a user by username. Returns nil if not found.
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, "find user by username", "username = $1", username)
}

// UserFilter narrows List results. Empty fields are ignored.
type UserFilter struct {
	Username string // exact match
	Search   string // username substring, case-insensitive
}

// List returns a page of users ordered by username, plus the total count.
func (s *UserStore) List(ctx context.Context, f UserFilter, p Page) ([]models.User, int, error) {
	var (
		conds []string
		args  []any
	)
	if f.Username != "" {
		args = append(args, f.Username)
		conds = append(conds, fmt.Sprintf("username = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		conds = append(conds, fmt.Sprintf("username ILIKE $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	args = append(args, p.Limit, p.Offset)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM users%s ORDER BY username LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args),
	), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

// Create inserts a new user. Unique violations return *DuplicateError.
func (s *UserStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, bio, role, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.IsStaff, u.IsSuperuser,
	)
	created, err := scanUser(row)
	if err != nil {
		return nil, wrap("create user", err)
	}
	return created, nil
}

// Update writes the mutable profile fields of u and bumps its state
// version, which invalidates outstanding confirmation codes.
func (s *UserStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE users SET
			username = $1, email = $2, first_name = $3, last_name = $4, bio = $5, role = $6,
			state_version = state_version + 1, updated_at = NOW()
		WHERE id = $7
		RETURNING `+userColumns,
		u.Username, u.Email, u.FirstName, u.LastName, u.Bio, u.Role, u.ID,
	)
	updated, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("update user", err)
	}
	return updated, nil
}

// Delete removes a user. Their reviews and comments cascade.
func (s *UserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// UpsertByEmail returns the user owning email, creating one if needed.
// The unique email constraint arbitrates concurrent calls: ON CONFLICT
// turns the insert into a no-op update that still returns the row.
// A taken username is retried with a random suffix.
func (s *UserStore) UpsertByEmail(ctx context.Context, email, username string) (*models.User, bool, error) {
	if username == "" {
		username = usernameFromEmail(email)
	}

	candidate := username
	for attempt := 0; attempt < upsertAttempts; attempt++ {
		var created bool
		u := &models.User{}
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, username)
			VALUES ($1, $2)
			ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
			RETURNING `+userColumns+`, (xmax = 0) AS created`,
			email, candidate,
		).Scan(
			&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.Bio, &u.Role,
			&u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.StateVersion, &u.CodeSentAt,
			&u.CreatedAt, &u.UpdatedAt, &created,
		)
		if err == nil {
			return u, created, nil
		}

		err = wrap("upsert user", err)
		if ConstraintOf(err) != ConstraintUserUsername {
			return nil, false, err
		}

		suffix, genErr := gonanoid.Generate(usernameSuffixAlphabet, 6)
		if genErr != nil {
			return nil, false, fmt.Errorf("generate username suffix: %w", genErr)
		}
		candidate = truncate(username, models.MaxUsernameLen-len(suffix)-1) + "-" + suffix
	}
	return nil, false, fmt.Errorf("upsert user: no free username for %q", username)
}

// MarkCodeSent records when a confirmation code was issued. The state
// version is left unchanged so the code stays valid.
func (s *UserStore) MarkCodeSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET code_sent_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark code sent: %w", err)
	}
	return nil
}

// ConsumeCode rotates the user's state so the code derived from version
// can never be accepted again. It returns false if the state has already
// moved on, which makes concurrent exchanges of one code mutually exclusive.
func (s *UserStore) ConsumeCode(ctx context.Context, id uuid.UUID, version int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET state_version = state_version + 1, code_sent_at = NULL, updated_at = NOW()
		WHERE id = $1 AND state_version = $2
	`, id, version)
	if err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("consume code rows: %w", err)
	}
	return n == 1, nil
}

// usernameFromEmail derives a username from the local part of an email.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range local {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-', r == '+':
			b.WriteRune(r)
		}
	}
	name := truncate(b.String(), models.MaxUsernameLen)
	if name == "" || name == models.MeUsername {
		name = "user"
	}
	return name
}

// truncate cuts s to at most n bytes. Usernames are ASCII.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
