// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"yamdb/internal/middleware"
	"yamdb/internal/models"
	"yamdb/internal/permission"
	"yamdb/internal/store"
)

// authorize runs the object check of the feedback policy against obj.
func authorize(r *http.Request, obj permission.Owned) error {
	req := middleware.PermissionRequest(r)
	if !permission.FeedbackPolicy.HasObjectPermission(req, obj) {
		return denied(req)
	}
	return nil
}

// Reviews serves /titles/{title_id}/reviews.
type Reviews struct {
	titles  *store.TitleStore
	reviews *store.ReviewStore
	pager   Pager
}

// NewReviews creates the review controller.
func NewReviews(titles *store.TitleStore, reviews *store.ReviewStore, pager Pager) *Reviews {
	return &Reviews{titles: titles, reviews: reviews, pager: pager}
}

type reviewCreateRequest struct {
	Text  string `json:"text" validate:"required,reviewtext"`
	Score *int   `json:"score" validate:"required,score"`
}

type reviewPatchRequest struct {
	Text  *string `json:"text" validate:"omitempty,reviewtext"`
	Score *int    `json:"score" validate:"omitempty,score"`
}

// titleID resolves the parent title, or returns a 404.
func (h *Reviews) titleID(r *http.Request) (int64, error) {
	id, err := idParam(r, "title_id")
	if err != nil {
		return 0, err
	}
	ok, err := h.titles.Exists(r.Context(), id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errNotFound
	}
	return id, nil
}

func (h *Reviews) load(r *http.Request) (*models.Review, error) {
	titleID, err := idParam(r, "title_id")
	if err != nil {
		return nil, err
	}
	id, err := idParam(r, "review_id")
	if err != nil {
		return nil, err
	}
	review, err := h.reviews.FindByID(r.Context(), titleID, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, errNotFound
	}
	return review, nil
}

// List handles GET.
func (h *Reviews) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.parse(r)
	if err != nil {
		writeError(w, "list reviews", err)
		return
	}
	titleID, err := h.titleID(r)
	if err != nil {
		writeError(w, "list reviews", err)
		return
	}

	items, total, err := h.reviews.List(r.Context(), titleID, page.window())
	if err != nil {
		writeError(w, "list reviews", err)
		return
	}
	body, err := respond(r, page, total, items)
	if err != nil {
		writeError(w, "list reviews", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Create handles POST. The author is always the caller, and a caller may
// review each title once.
func (h *Reviews) Create(w http.ResponseWriter, r *http.Request) {
	titleID, err := h.titleID(r)
	if err != nil {
		writeError(w, "create review", err)
		return
	}

	var req reviewCreateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create review", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "create review", err)
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	exists, err := h.reviews.ExistsForAuthor(r.Context(), titleID, actor.ID)
	if err != nil {
		writeError(w, "create review", err)
		return
	}
	if exists {
		writeError(w, "create review", fieldError(NonFieldErrors, constraintMessages[store.ConstraintReviewAuthor]))
		return
	}

	// The unique constraint still catches a concurrent duplicate.
	created, err := h.reviews.Create(r.Context(), &models.Review{
		TitleID:  titleID,
		AuthorID: actor.ID,
		Text:     req.Text,
		Score:    *req.Score,
	})
	if err != nil {
		writeError(w, "create review", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /{review_id}.
func (h *Reviews) Get(w http.ResponseWriter, r *http.Request) {
	review, err := h.load(r)
	if err != nil {
		writeError(w, "get review", err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// Update handles PATCH /{review_id}.
func (h *Reviews) Update(w http.ResponseWriter, r *http.Request) {
	review, err := h.load(r)
	if err != nil {
		writeError(w, "update review", err)
		return
	}
	if err := authorize(r, review); err != nil {
		writeError(w, "update review", err)
		return
	}

	var req reviewPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update review", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "update review", err)
		return
	}
	if req.Text != nil {
		review.Text = *req.Text
	}
	if req.Score != nil {
		review.Score = *req.Score
	}

	updated, err := h.reviews.Update(r.Context(), review)
	if err != nil {
		writeError(w, "update review", err)
		return
	}
	if updated == nil {
		writeError(w, "update review", errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /{review_id}.
func (h *Reviews) Delete(w http.ResponseWriter, r *http.Request) {
	review, err := h.load(r)
	if err != nil {
		writeError(w, "delete review", err)
		return
	}
	if err := authorize(r, review); err != nil {
		writeError(w, "delete review", err)
		return
	}
	if err := h.reviews.Delete(r.Context(), review.TitleID, review.ID); err != nil {
		writeError(w, "delete review", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comments serves /titles/{title_id}/reviews/{review_id}/comments.
type Comments struct {
	reviews  *store.ReviewStore
	comments *store.CommentStore
	pager    Pager
}

// NewComments creates the comment controller.
func NewComments(reviews *store.ReviewStore, comments *store.CommentStore, pager Pager) *Comments {
	return &Comments{reviews: reviews, comments: comments, pager: pager}
}

type commentRequest struct {
	Text string `json:"text" validate:"required,commenttext"`
}

type commentPatchRequest struct {
	Text *string `json:"text" validate:"omitempty,commenttext"`
}

// reviewID resolves the parent review within its title, or returns a 404.
func (h *Comments) reviewID(r *http.Request) (int64, error) {
	titleID, err := idParam(r, "title_id")
	if err != nil {
		return 0, err
	}
	id, err := idParam(r, "review_id")
	if err != nil {
		return 0, err
	}
	review, err := h.reviews.FindByID(r.Context(), titleID, id)
	if err != nil {
		return 0, err
	}
	if review == nil {
		return 0, errNotFound
	}
	return review.ID, nil
}

func (h *Comments) load(r *http.Request) (*models.Comment, error) {
	reviewID, err := h.reviewID(r)
	if err != nil {
		return nil, err
	}
	id, err := idParam(r, "comment_id")
	if err != nil {
		return nil, err
	}
	comment, err := h.comments.FindByID(r.Context(), reviewID, id)
	if err != nil {
		return nil, err
	}
	if comment == nil {
		return nil, errNotFound
	}
	return comment, nil
}

// List handles GET.
func (h *Comments) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.pager.parse(r)
	if err != nil {
		writeError(w, "list comments", err)
		return
	}
	reviewID, err := h.reviewID(r)
	if err != nil {
		writeError(w, "list comments", err)
		return
	}

	items, total, err := h.comments.List(r.Context(), reviewID, page.window())
	if err != nil {
		writeError(w, "list comments", err)
		return
	}
	body, err := respond(r, page, total, items)
	if err != nil {
		writeError(w, "list comments", err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// Create handles POST.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	reviewID, err := h.reviewID(r)
	if err != nil {
		writeError(w, "create comment", err)
		return
	}

	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "create comment", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "create comment", err)
		return
	}

	actor := middleware.ActorFromCtx(r.Context())
	created, err := h.comments.Create(r.Context(), &models.Comment{
		ReviewID: reviewID,
		AuthorID: actor.ID,
		Text:     req.Text,
	})
	if err != nil {
		writeError(w, "create comment", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Get handles GET /{comment_id}.
func (h *Comments) Get(w http.ResponseWriter, r *http.Request) {
	comment, err := h.load(r)
	if err != nil {
		writeError(w, "get comment", err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// Update handles PATCH /{comment_id}.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
	comment, err := h.load(r)
	if err != nil {
		writeError(w, "update comment", err)
		return
	}
	if err := authorize(r, comment); err != nil {
		writeError(w, "update comment", err)
		return
	}

	var req commentPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "update comment", err)
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, "update comment", err)
		return
	}
	if req.Text != nil {
		comment.Text = *req.Text
	}

	updated, err := h.comments.Update(r.Context(), comment)
	if err != nil {
		writeError(w, "update comment", err)
		return
	}
	if updated == nil {
		writeError(w, "update comment", errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /{comment_id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	comment, err := h.load(r)
	if err != nil {
		writeError(w, "delete comment", err)
		return
	}
	if err := authorize(r, comment); err != nil {
		writeError(w, "delete comment", err)
		return
	}
	if err := h.comments.Delete(r.Context(), comment.ReviewID, comment.ID); err != nil {
		writeError(w, "delete comment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
