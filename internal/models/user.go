// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// MeUsername is reserved for the self-service account endpoint.
const MeUsername = "me"

// MaxUsernameLen matches the users.username column.
const MaxUsernameLen = 150

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ValidUsername reports whether s may be used as a username: letters,
// digits and @/./+/-/_ only, at most MaxUsernameLen long, and not "me".
func ValidUsername(s string) bool {
	return len(s) <= MaxUsernameLen && usernamePattern.MatchString(s) && s != MeUsername
}

// User represents an account. Users are created by the email confirmation
// flow or by an administrator.
type User struct {
	ID          uuid.UUID `json:"-"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Bio         string    `json:"bio"`
	Role        Role      `json:"role"`
	IsStaff     bool      `json:"-"`
	IsSuperuser bool      `json:"-"`
	IsActive    bool      `json:"-"`

	// StateVersion is bumped by every account update. Confirmation codes
	// are derived from it, so any change invalidates outstanding codes.
	StateVersion int64      `json:"-"`
	CodeSentAt   *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// IsAdmin returns true if the user has the admin role. Staff and
// superuser flags are not considered here.
func (u *User) IsAdmin() bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleModerator, RoleUser:
		return false
	default:
		return false
	}
}

// IsModerator returns true if the user has the moderator role.
func (u *User) IsModerator() bool {
	switch u.Role {
	case RoleModerator:
		return true
	case RoleAdmin, RoleUser:
		return false
	default:
		return false
	}
}
