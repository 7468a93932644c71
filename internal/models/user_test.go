// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"testing"
)

// TestUserIsAdmin verifies that IsAdmin returns true only for the admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "moderator role", role: RoleModerator, want: false},
		{name: "user role", role: RoleUser, want: false},
		{name: "empty role", role: Role(""), want: false},
		{name: "unknown role", role: Role("superadmin"), want: false},
		{name: "uppercase ADMIN", role: Role("ADMIN"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("User{Role: %q}.IsAdmin() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestUserIsModerator(t *testing.T) {
	if !(&User{Role: RoleModerator}).IsModerator() {
		t.Error("moderator role should be a moderator")
	}
	if (&User{Role: RoleAdmin}).IsModerator() {
		t.Error("admin role must not count as moderator")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "user", want: RoleUser},
		{in: "moderator", want: RoleModerator},
		{in: "admin", want: RoleAdmin},
		{in: "", wantErr: true},
		{in: "Admin", wantErr: true},
		{in: "root", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRole(%q): expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnknownRoleHasNoPrivilege(t *testing.T) {
	u := &User{Role: Role("superadmin")}
	if u.Role.Valid() || u.IsAdmin() || u.IsModerator() {
		t.Errorf("unknown role %q granted privileges", u.Role)
	}
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", true},
		{"a.b+c@d-e_f", true},
		{"me", false},
		{"", false},
		{"al ice", false},
		{strings.Repeat("a", MaxUsernameLen), true},
		{strings.Repeat("a", MaxUsernameLen+1), false},
	}
	for _, tt := range tests {
		if got := ValidUsername(tt.in); got != tt.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
