// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/models"
	"yamdb/internal/store"
)

// Titles serves the title collection.
type Titles struct {
	titles     *store.TitleStore
	categories *store.CategoryStore
	genres     *store.GenreStore
	pager      Pager
	now        func() time.Time
}

// NewTitles creates the title controller.
func NewTitles(titles *store.TitleStore, categories *store.CategoryStore, genres *store.GenreStore, pager Pager) *Titles {
	return &Titles{titles: titles, categories: categories, genres: genres, pager: pager, now: time.Now}
}

// titleCreateRequest is the POST body. Category and genres are slugs.
type titleCreateRequest struct {
	Name        string   `json:"name" validate:"required,notblank,max=256"`
	Year        *int     `json:"year" validate:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category" validate:"required,slug"`
	Genre       []string `json:"genre" validate:"required,dive,slug"`
}

// titlePatchRequest is the PATCH body. Absent fields keep their value.
type titlePatchRequest struct {
	Name        *string   `json:"name" validate:"omitempty,notblank,max=256"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category" validate:"omitempty,slug"`
	Genre       *[]string `json:"genre" validate:"omitempty,dive,slug"`
}

// List handles GET with ?category=, ?genre=, ?name= and ?year= filters.
func (h *Titles) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.parse(r)
	if err != nil {
		writeError(w, "list titles", err)
		return
	}

	q := r.URL.Query()
	filter := store.TitleFilter{
		Category: q.Get("category"),
		Genre:    q.Get("genre"),
		Name:     q.Get("name"),
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, "list titles", fieldError("year", "Enter a whole number."))
			return
		}
		filter.Year = &year
	}

	items, total, err := h.titles.List(r.Context(), filter, page.window())
	if err != nil {
		writeError(w, "list titles", err)
		return
	}

	body, err := respond(r, page, total, items)
	if err != nil {
		writeError(w, "list titles", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Get handles GET /{title_id}.
func (h *Titles) Get(w http.ResponseWriter, r *http.Request) {
	title, err := h.load(r)
	if err != nil {
		writeError(w, "get title", err)
		return
	}
	writeJSON(w, http.StatusOK, title)
}

// Create handles POST.
func (h *Titles) Create(w http.ResponseWriter, r *http.Request) {
	var req titleCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create title", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "create title", err)
		return
	}
	if err := h.checkYear(*req.Year); err != nil {
		writeError(w, "create title", err)
		return
	}

	in := store.TitleInput{Name: strings.TrimSpace(req.Name), Year: *req.Year, Description: req.Description}
	if err := h.resolve(r.Context(), &in, &req.Category, &req.Genre); err != nil {
		writeError(w, "create title", err)
		return
	}

	title, err := h.titles.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create title", err)
		return
	}
	writeJSON(w, http.StatusCreated, title)
}

// Update handles PATCH /{title_id}.
func (h *Titles) Update(w http.ResponseWriter, r *http.Request) {
	title, err := h.load(r)
	if err != nil {
		writeError(w, "update title", err)
		return
	}

	var req titlePatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update title", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "update title", err)
		return
	}

	in := store.TitleInput{Name: title.Name, Year: title.Year, Description: title.Description}
	if title.Category != nil {
		in.CategoryID = &title.Category.ID
	}
	for _, g := range title.Genres {
		in.GenreIDs = append(in.GenreIDs, g.ID)
	}

	if req.Name != nil {
		in.Name = strings.TrimSpace(*req.Name)
	}
	if req.Year != nil {
		if err := h.checkYear(*req.Year); err != nil {
			writeError(w, "update title", err)
			return
		}
		in.Year = *req.Year
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil && *req.Category == "" {
		writeError(w, "update title", fieldError("category", "This field may not be null."))
		return
	}
	if err := h.resolve(r.Context(), &in, req.Category, req.Genre); err != nil {
		writeError(w, "update title", err)
		return
	}

	updated, err := h.titles.Update(r.Context(), title.ID, in)
	if err != nil {
		writeError(w, "update title", err)
		return
	}
	if updated == nil {
		writeError(w, "update title", errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /{title_id}.
func (h *Titles) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "title_id")
	if err != nil {
		writeError(w, "delete title", err)
		return
	}
	deleted, err := h.titles.Delete(r.Context(), id)
	if err != nil {
		writeError(w, "delete title", err)
		return
	}
	if !deleted {
		writeError(w, "delete title", errNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Titles) load(r *http.Request) (*models.Title, error) {
	id, err := idParam(r, "title_id")
	if err != nil {
		return nil, err
	}
	title, err := h.titles.FindByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if title == nil {
		return nil, errNotFound
	}
	return title, nil
}

func (h *Titles) checkYear(year int) error {
	if !models.ValidYear(year, h.now()) {
		if year < 0 {
			return fieldError("year", "Ensure this value is greater than or equal to 0.")
		}
		return fieldError("year", "Year can't be later than the current year.")
	}
	return nil
}

// resolve turns category and genre slugs into IDs on in. Nil arguments
// leave the corresponding field of in untouched.
func (h *Titles) resolve(ctx context.Context, in *store.TitleInput, category *string, genres *[]string) error {
	fields := map[string][]string{}

	if category != nil {
		c, err := h.categories.FindBySlug(ctx, *category)
		if err != nil {
			return err
		}
		if c == nil {
			fields["category"] = []string{fmt.Sprintf("Object with slug=%s does not exist.", *category)}
		} else {
			in.CategoryID = &c.ID
		}
	}

	if genres != nil {
		wanted := dedupe(*genres)
		found, err := h.genres.FindBySlugs(ctx, wanted)
		if err != nil {
			return err
		}
		known := make(map[string]int64, len(found))
		for _, g := range found {
			known[g.Slug] = g.ID
		}
		in.GenreIDs = in.GenreIDs[:0]
		for _, s := range wanted {
			id, ok := known[s]
			if !ok {
				fields["genre"] = append(fields["genre"], fmt.Sprintf("Object with slug=%s does not exist.", s))
				continue
			}
			in.GenreIDs = append(in.GenreIDs, id)
		}
	}

	if len(fields) > 0 {
		return &APIError{Status: http.StatusBadRequest, Fields: fields}
	}
	return nil
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
