// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/permission"
	"yamdb/internal/store"
)

// Users serves /users and /users/me.
type Users struct {
	users *store.UserStore
	pager Pager
}

// NewUsers creates the user controller.
func NewUsers(users *store.UserStore, pager Pager) *Users {
	return &Users{users: users, pager: pager}
}

type userCreateRequest struct {
	Username  string `json:"username" validate:"required,max=150,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role" validate:"omitempty,role"`
}

type userPatchRequest struct {
	Username  *string `json:"username" validate:"omitempty,max=150,username"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role" validate:"omitempty,role"`
}

// apply copies the present fields onto u. The role is only copied when
// withRole is set.
func (p userPatchRequest) apply(u *models.User, withRole bool) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = strings.ToLower(*p.Email)
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if withRole && p.Role != nil {
		u.Role = models.Role(*p.Role)
	}
}

// List handles GET with ?username= (exact) and ?search= (substring).
func (h *Users) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.parse(r)
	if err != nil {
		writeError(w, "list users", err)
		return
	}
	q := r.URL.Query()
	filter := store.UserFilter{Username: q.Get("username"), Search: q.Get("search")}

	items, total, err := h.users.List(r.Context(), filter, page.window())
	if err != nil {
		writeError(w, "list users", err)
		return
	}
	body, err := respond(r, page, total, items)
	if err != nil {
		writeError(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Create handles POST.
func (h *Users) Create(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create user", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "create user", err)
		return
	}

	u := &models.User{
		Username:  req.Username,
		Email:     strings.ToLower(req.Email),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      models.RoleUser,
	}
	if req.Role != "" {
		u.Role = models.Role(req.Role)
	}

	created, err := h.users.Create(r.Context(), u)
	if err != nil {
		writeError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /{username}.
func (h *Users) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.load(r)
	if err != nil {
		writeError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// Update handles PATCH /{username}.
func (h *Users) Update(w http.ResponseWriter, r *http.Request) {
	u, err := h.load(r)
	if err != nil {
		writeError(w, "update user", err)
		return
	}
	h.patch(w, r, u, true)
}

// Delete handles DELETE /{username}.
func (h *Users) Delete(w http.ResponseWriter, r *http.Request) {
	u, err := h.load(r)
	if err != nil {
		writeError(w, "delete user", err)
		return
	}
	if err := h.users.Delete(r.Context(), u.ID); err != nil {
		writeError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (h *Users) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.ActorFromCtx(r.Context()))
}

// UpdateMe handles PATCH /me. Only administrators may change their own
// role; for everyone else the field is ignored.
func (h *Users) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor := *middleware.ActorFromCtx(r.Context())
	h.patch(w, r, &actor, permission.Admin.HasPermission(middleware.PermissionRequest(r)))
}

func (h *Users) patch(w http.ResponseWriter, r *http.Request, u *models.User, withRole bool) {
	var req userPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update user", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "update user", err)
		return
	}
	req.apply(u, withRole)

	updated, err := h.users.Update(r.Context(), u)
	if err != nil {
		writeError(w, "update user", err)
		return
	}
	if updated == nil {
		writeError(w, "update user", errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Users) load(r *http.Request) (*models.User, error) {
	u, err := h.users.FindByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errNotFound
	}
	return u, nil
}
