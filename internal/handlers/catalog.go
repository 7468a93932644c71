// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"yamdb/internal/models"
	"yamdb/internal/slug"
	"yamdb/internal/store"
)

// slugStore is the store surface shared by categories and genres.
type slugStore[T any] interface {
	List(ctx context.Context, name string, p store.Page) ([]T, int, error)
	Create(ctx context.Context, name, slug string) (*T, error)
	DeleteBySlug(ctx context.Context, slug string) (bool, error)
}

// SlugResource serves a slug-addressed lookup table (categories or
// genres): list, create and delete by slug.
type SlugResource[T any] struct {
	store slugStore[T]
	pager Pager
	noun  string
}

// NewCategories returns the category controller.
func NewCategories(s *store.CategoryStore, pager Pager) *SlugResource[models.Category] {
	return &SlugResource[models.Category]{store: s, pager: pager, noun: "category"}
}

// NewGenres returns the genre controller.
func NewGenres(s *store.GenreStore, pager Pager) *SlugResource[models.Genre] {
	return &SlugResource[models.Genre]{store: s, pager: pager, noun: "genre"}
}

type slugCreateRequest struct {
	Name string `json:"name" validate:"required,notblank,max=256"`
	Slug string `json:"slug" validate:"omitempty,slug"`
}

// List handles GET. ?search= filters by exact name.
func (h *SlugResource[T]) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.parse(r)
	if err != nil {
		writeError(w, "list "+h.noun, err)
		return
	}

	items, total, err := h.store.List(r.Context(), r.URL.Query().Get("search"), page.window())
	if err != nil {
		writeError(w, "list "+h.noun, err)
		return
	}

	body, err := respond(r, page, total, items)
	if err != nil {
		writeError(w, "list "+h.noun, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Create handles POST. A missing slug is derived from the name.
func (h *SlugResource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var req slugCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create "+h.noun, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		writeError(w, "create "+h.noun, err)
		return
	}

	if req.Slug == "" {
		req.Slug = slug.Generate(req.Name)
		if req.Slug == "" {
			writeError(w, "create "+h.noun, fieldError("slug", "This field is required."))
			return
		}
	}

	created, err := h.store.Create(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeError(w, "create "+h.noun, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Delete handles DELETE /{slug}.
func (h *SlugResource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, "delete "+h.noun, err)
		return
	}
	if !deleted {
		writeError(w, "delete "+h.noun, errNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
