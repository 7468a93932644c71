// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"yamdb/internal/models"
)

// ReviewStore manages reviews. Every lookup is scoped to a title so a
// review is only reachable under the title it belongs to.
type ReviewStore struct {
	db *sql.DB
}

// NewReviewStore returns a new ReviewStore.
func NewReviewStore(db *sql.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

const reviewColumns = `r.id, r.title_id, r.author_id, u.username, r.text, r.score, r.pub_date`

func scanReview(row scanner) (*models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.TitleID, &r.AuthorID, &r.Author, &r.Text, &r.Score, &r.PubDate)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns a page of a title's reviews, newest first.
func (s *ReviewStore) List(ctx context.Context, titleID int64, p Page) ([]models.Review, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews WHERE title_id = $1`, titleID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count reviews: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1
		ORDER BY r.pub_date DESC, r.id DESC
		LIMIT $2 OFFSET $3
	`, titleID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	return reviews, total, rows.Err()
}

// FindByID returns review id of the given title, or nil.
func (s *ReviewStore) FindByID(ctx context.Context, titleID, id int64) (*models.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r JOIN users u ON u.id = r.author_id
		WHERE r.title_id = $1 AND r.id = $2
	`, titleID, id)
	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	return r, nil
}

// ExistsForAuthor reports whether author already reviewed the title.
func (s *ReviewStore) ExistsForAuthor(ctx context.Context, titleID int64, authorID uuid.UUID) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE title_id = $1 AND author_id = $2)`,
		titleID, authorID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return ok, nil
}

// Create inserts a review. A second review by the same author for the
// same title returns *DuplicateError for ConstraintReviewAuthor.
func (s *ReviewStore) Create(ctx context.Context, r *models.Review) (*models.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH r AS (
			INSERT INTO reviews (title_id, author_id, text, score)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+reviewColumns+` FROM r JOIN users u ON u.id = r.author_id
	`, r.TitleID, r.AuthorID, r.Text, r.Score)
	created, err := scanReview(row)
	if err != nil {
		return nil, wrap("create review", err)
	}
	return created, nil
}

// Update rewrites the text and score of a review. Author, title and
// publication date never change.
func (s *ReviewStore) Update(ctx context.Context, r *models.Review) (*models.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH r AS (
			UPDATE reviews SET text = $1, score = $2
			WHERE id = $3 AND title_id = $4
			RETURNING *
		)
		SELECT `+reviewColumns+` FROM r JOIN users u ON u.id = r.author_id
	`, r.Text, r.Score, r.ID, r.TitleID)
	updated, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update review: %w", err)
	}
	return updated, nil
}

// Delete removes a review and its comments.
func (s *ReviewStore) Delete(ctx context.Context, titleID, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1 AND title_id = $2`, id, titleID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	return nil
}
