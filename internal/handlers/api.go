// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON resource controllers of the API.
// Every handler writes its result through writeJSON and every failure
// through writeError, so response shapes stay uniform.
package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"yamdb/internal/permission"
	"yamdb/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// NonFieldErrors keys errors that are not tied to a single field.
const NonFieldErrors = "non_field_errors"

// APIError is a failure with an HTTP status. Either Detail or Fields is
// rendered: {"detail": "..."} or {"field": ["msg", ...]}.
type APIError struct {
	Status int
	Detail string
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("validation failed: %v", e.Fields)
}

// fieldError returns a 400 for a single field.
func fieldError(field, msg string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Fields: map[string][]string{field: {msg}}}
}

// errNotFound is the shared 404.
var errNotFound = &APIError{Status: http.StatusNotFound, Detail: "Not found."}

// denied returns the 401/403 for a refused permission request.
func denied(req permission.Request) *APIError {
	return &APIError{Status: permission.DenialStatus(req), Detail: permission.DenialDetail(req)}
}

// constraintFields maps unique constraints to the field they guard.
var constraintFields = map[string]string{
	store.ConstraintUserEmail:    "email",
	store.ConstraintUserUsername: "username",
	store.ConstraintCategorySlug: "slug",
	store.ConstraintGenreSlug:    "slug",
	store.ConstraintReviewAuthor: NonFieldErrors,
}

// constraintMessages holds the message for each unique constraint.
var constraintMessages = map[string]string{
	store.ConstraintUserEmail:    "A user with that email already exists.",
	store.ConstraintUserUsername: "A user with that username already exists.",
	store.ConstraintCategorySlug: "Category with this slug already exists.",
	store.ConstraintGenreSlug:    "Genre with this slug already exists.",
	store.ConstraintReviewAuthor: "You have already reviewed this title.",
}

// duplicateError converts a store duplicate into a 400, or returns nil
// if err is not a duplicate.
func duplicateError(err error) *APIError {
	c := store.ConstraintOf(err)
	if c == "" {
		return nil
	}
	field, ok := constraintFields[c]
	if !ok {
		field = NonFieldErrors
	}
	msg, ok := constraintMessages[c]
	if !ok {
		msg = "This value already exists."
	}
	return fieldError(field, msg)
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError renders err. Anything that is not an *APIError is logged
// under op and reported as a bare 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		if dup := duplicateError(err); dup != nil {
			apiErr = dup
		} else {
			slog.Error(op+" failed", "error", err)
			apiErr = &APIError{Status: http.StatusInternalServerError, Detail: "Internal Server Error"}
		}
	}

	if apiErr.Fields != nil {
		writeJSON(w, apiErr.Status, apiErr.Fields)
		return
	}
	writeJSON(w, apiErr.Status, map[string]string{"detail": apiErr.Detail})
}

// decodeJSON reads the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &APIError{Status: http.StatusRequestEntityTooLarge, Detail: "Request body too large."}
		}
		return &APIError{Status: http.StatusBadRequest, Detail: "Could not read request body."}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return &APIError{Status: http.StatusBadRequest, Detail: "Request body is empty."}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &APIError{Status: http.StatusBadRequest, Detail: "JSON parse error - " + err.Error()}
	}
	return nil
}

// idParam parses a numeric path parameter. Malformed IDs cannot name
// an existing object, so they are reported as 404.
func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}

// MethodNotAllowed is the router's 405 handler.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"detail": fmt.Sprintf("Method %q not allowed.", r.Method),
	})
}

// NotFound is the router's 404 handler.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, "route", errNotFound)
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
