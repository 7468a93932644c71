// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"yamdb/internal/models"
)

func TestUserCreateAndConflicts(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	name := uniq("new")
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE username = $1", name) })

	body := map[string]string{"username": name, "email": name + "@handler-test.local", "role": "moderator"}
	rec := serve(env.Users.Create, newRequest(t, http.MethodPost, "/v1/users/", body, admin))
	expectStatus(t, rec, http.StatusCreated)

	var got models.User
	decode(t, rec, &got)
	if got.Username != name || got.Role != models.RoleModerator {
		t.Errorf("created: %+v", got)
	}

	rec = serve(env.Users.Create, newRequest(t, http.MethodPost, "/v1/users/", body, admin))
	expectStatus(t, rec, http.StatusBadRequest)
	var fields map[string][]string
	decode(t, rec, &fields)
	if len(fields) == 0 {
		t.Error("expected a field error for the duplicate")
	}
}

func TestUserCreate_DefaultRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	name := uniq("plain")
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE username = $1", name) })

	rec := serve(env.Users.Create, newRequest(t, http.MethodPost, "/v1/users/",
		map[string]string{"username": name, "email": name + "@handler-test.local"}, admin))
	expectStatus(t, rec, http.StatusCreated)
	var got models.User
	decode(t, rec, &got)
	if got.Role != models.RoleUser {
		t.Errorf("role: got %q, want user", got.Role)
	}
}

func TestUserGetPatchDelete(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	target := env.newUser(t, models.RoleUser)

	rec := serve(env.Users.Get, newRequest(t, http.MethodGet, "/", nil, admin, "username", target.Username))
	expectStatus(t, rec, http.StatusOK)

	rec = serve(env.Users.Update, newRequest(t, http.MethodPatch, "/",
		map[string]string{"role": "moderator", "bio": "promoted"}, admin, "username", target.Username))
	expectStatus(t, rec, http.StatusOK)
	var got models.User
	decode(t, rec, &got)
	if got.Role != models.RoleModerator || got.Bio != "promoted" {
		t.Errorf("patched: %+v", got)
	}

	rec = serve(env.Users.Delete, newRequest(t, http.MethodDelete, "/", nil, admin, "username", target.Username))
	expectStatus(t, rec, http.StatusNoContent)

	rec = serve(env.Users.Get, newRequest(t, http.MethodGet, "/", nil, admin, "username", target.Username))
	expectStatus(t, rec, http.StatusNotFound)
}

func TestUserListFilters(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, models.RoleAdmin)
	target := env.newUser(t, models.RoleUser)

	rec := serve(env.Users.List, newRequest(t, http.MethodGet, "/v1/users/?username="+target.Username, nil, admin))
	expectStatus(t, rec, http.StatusOK)
	var page Page[models.User]
	decode(t, rec, &page)
	if page.Count != 1 || page.Results[0].Username != target.Username {
		t.Errorf("username filter: %+v", page)
	}

	rec = serve(env.Users.List, newRequest(t, http.MethodGet, "/v1/users/?search="+target.Username[2:], nil, admin))
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &page)
	if page.Count != 1 {
		t.Errorf("search: got %d results", page.Count)
	}
}

func TestMe_RoleIgnoredForNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t, models.RoleUser)

	rec := serve(env.Users.Me, newRequest(t, http.MethodGet, "/v1/users/me/", nil, u))
	expectStatus(t, rec, http.StatusOK)

	rec = serve(env.Users.UpdateMe, newRequest(t, http.MethodPatch, "/v1/users/me/",
		map[string]string{"role": "admin", "first_name": "Ann"}, u))
	expectStatus(t, rec, http.StatusOK)

	var got models.User
	decode(t, rec, &got)
	if got.Role != models.RoleUser {
		t.Errorf("role escalated to %q", got.Role)
	}
	if got.FirstName != "Ann" {
		t.Errorf("first_name: got %q", got.FirstName)
	}
}

func TestMe_AdminMayChangeOwnRole(t *testing.T) {
	env := newTestEnv(t)
	u := env.newUser(t, models.RoleAdmin)

	rec := serve(env.Users.UpdateMe, newRequest(t, http.MethodPatch, "/v1/users/me/",
		map[string]string{"role": "moderator"}, u))
	expectStatus(t, rec, http.StatusOK)
	var got models.User
	decode(t, rec, &got)
	if got.Role != models.RoleModerator {
		t.Errorf("role: got %q", got.Role)
	}
}
