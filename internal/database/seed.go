// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Default development administrator created by Seed.
const (
	SeedAdminEmail    = "admin@yamdb.local"
	SeedAdminUsername = "admin"
)

// Seed populates the database with initial development data.
// It creates an administrator if no users exist. The administrator signs in
// through the regular confirmation-code flow.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO users (email, username, role, is_staff, is_superuser)
		VALUES ($1, $2, 'admin', TRUE, TRUE)
		ON CONFLICT DO NOTHING
	`, SeedAdminEmail, SeedAdminUsername)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", SeedAdminEmail,
		"username", SeedAdminUsername,
	)

	return nil
}
