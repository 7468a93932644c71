// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yamdb/internal/models"
)

// CommentStore manages comments on reviews.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `c.id, c.review_id, c.author_id, u.username, c.text, c.pub_date`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	if err := row.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Author, &c.Text, &c.PubDate); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a page of a review's comments, newest first.
func (s *CommentStore) List(ctx context.Context, reviewID int64, p Page) ([]models.Comment, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments WHERE review_id = $1`, reviewID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.review_id = $1
		ORDER BY c.pub_date DESC, c.id DESC
		LIMIT $2 OFFSET $3
	`, reviewID, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, total, rows.Err()
}

// FindByID returns comment id of the given review, or nil.
func (s *CommentStore) FindByID(ctx context.Context, reviewID, id int64) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.review_id = $1 AND c.id = $2
	`, reviewID, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Create inserts a comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH c AS (
			INSERT INTO comments (review_id, author_id, text)
			VALUES ($1, $2, $3)
			RETURNING *
		)
		SELECT `+commentColumns+` FROM c JOIN users u ON u.id = c.author_id
	`, c.ReviewID, c.AuthorID, c.Text)
	created, err := scanComment(row)
	if err != nil {
		return nil, wrap("create comment", err)
	}
	return created, nil
}

// Update rewrites the text of a comment.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH c AS (
			UPDATE comments SET text = $1
			WHERE id = $2 AND review_id = $3
			RETURNING *
		)
		SELECT `+commentColumns+` FROM c JOIN users u ON u.id = c.author_id
	`, c.Text, c.ID, c.ReviewID)
	updated, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return updated, nil
}

// Delete removes a comment.
func (s *CommentStore) Delete(ctx context.Context, reviewID, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND review_id = $2`, id, reviewID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}
