// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/models"
)

// TitleStore manages titles and their genre links.
type TitleStore struct {
	db *sql.DB
}

// NewTitleStore returns a new TitleStore.
func NewTitleStore(db *sql.DB) *TitleStore {
	return &TitleStore{db: db}
}

// titleSelect reads a title with its category and mean review score.
const titleSelect = `
	SELECT t.id, t.name, t.year, t.description,
	       c.id, c.name, c.slug,
	       (SELECT AVG(r.score)::float8 FROM reviews r WHERE r.title_id = t.id)
	FROM titles t
	LEFT JOIN categories c ON c.id = t.category_id`

func scanTitle(row scanner) (*models.Title, error) {
	var (
		t       models.Title
		catID   sql.NullInt64
		catName sql.NullString
		catSlug sql.NullString
		rating  sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Year, &t.Description, &catID, &catName, &catSlug, &rating); err != nil {
		return nil, err
	}
	if catID.Valid {
		t.Category = &models.Category{ID: catID.Int64, Name: catName.String, Slug: catSlug.String}
	}
	if rating.Valid {
		v := rating.Float64
		t.Rating = &v
	}
	t.Genres = []models.Genre{}
	return &t, nil
}

// TitleFilter narrows List results. Zero values are ignored.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     *int
}

func (f TitleFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.Genre != "" {
		args = append(args, f.Genre)
		conds = append(conds, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM title_genres tg JOIN genres g ON g.id = tg.genre_id
			WHERE tg.title_id = t.id AND g.slug = $%d)`, len(args)))
	}
	if f.Name != "" {
		args = append(args, likePattern(f.Name))
		conds = append(conds, fmt.Sprintf("t.name ILIKE $%d", len(args)))
	}
	if f.Year != nil {
		args = append(args, *f.Year)
		conds = append(conds, fmt.Sprintf("t.year = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns a page of titles matching f ordered by name, plus the
// total number of matches.
func (s *TitleStore) List(ctx context.Context, f TitleFilter, p Page) ([]models.Title, int, error) {
	where, args := f.where()

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM titles t LEFT JOIN categories c ON c.id = t.category_id`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count titles: %w", err)
	}

	args = append(args, p.Limit, p.Offset)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`%s%s ORDER BY t.name, t.id LIMIT $%d OFFSET $%d`, titleSelect, where, len(args)-1, len(args),
	), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	titles := []models.Title{}
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list titles: %w", err)
	}

	if err := s.loadGenres(ctx, titles); err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// FindByID returns a title with genres and rating, or nil.
func (s *TitleStore) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	t, err := scanTitle(s.db.QueryRowContext(ctx, titleSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find title: %w", err)
	}
	one := []models.Title{*t}
	if err := s.loadGenres(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Exists reports whether a title with id exists.
func (s *TitleStore) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM titles WHERE id = $1)`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return ok, nil
}

// loadGenres fills the Genres field of every title with one query.
func (s *TitleStore) loadGenres(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]int64, len(titles))
	index := make(map[int64]int, len(titles))
	for i, t := range titles {
		ids[i] = t.ID
		index[t.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT tg.title_id, g.id, g.name, g.slug
		FROM title_genres tg
		JOIN genres g ON g.id = tg.genre_id
		WHERE tg.title_id = ANY($1)
		ORDER BY g.name, g.id
	`, ids)
	if err != nil {
		return fmt.Errorf("load title genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			titleID int64
			g       models.Genre
		)
		if err := rows.Scan(&titleID, &g.ID, &g.Name, &g.Slug); err != nil {
			return fmt.Errorf("scan title genre: %w", err)
		}
		i := index[titleID]
		titles[i].Genres = append(titles[i].Genres, g)
	}
	return rows.Err()
}

// TitleInput carries the writable columns of a title.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	CategoryID  *int64
	GenreIDs    []int64
}

// Create inserts a title and its genre links in one transaction.
func (s *TitleStore) Create(ctx context.Context, in TitleInput) (*models.Title, error) {
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO titles (name, year, description, category_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, in.Name, in.Year, in.Description, in.CategoryID).Scan(&id)
		if err != nil {
			return fmt.Errorf("create title: %w", err)
		}
		return linkGenres(ctx, tx, id, in.GenreIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Update replaces every writable column of a title, genre links
// included. Returns nil if the title does not exist.
func (s *TitleStore) Update(ctx context.Context, id int64, in TitleInput) (*models.Title, error) {
	found := false
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE titles SET name = $1, year = $2, description = $3, category_id = $4
			WHERE id = $5
		`, in.Name, in.Year, in.Description, in.CategoryID, id)
		if err != nil {
			return fmt.Errorf("update title: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		found = true
		if _, err := tx.ExecContext(ctx, `DELETE FROM title_genres WHERE title_id = $1`, id); err != nil {
			return fmt.Errorf("clear title genres: %w", err)
		}
		return linkGenres(ctx, tx, id, in.GenreIDs)
	})
	if err != nil || !found {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Delete removes a title. Its reviews and comments cascade.
func (s *TitleStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete title: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete title rows: %w", err)
	}
	return n > 0, nil
}

func linkGenres(ctx context.Context, tx *sql.Tx, titleID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO title_genres (title_id, genre_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, titleID, genreIDs)
	if err != nil {
		return fmt.Errorf("link title genres: %w", err)
	}
	return nil
}

func (s *TitleStore) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
