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

// slugTable implements the queries shared by categories and genres,
// which have identical shapes and differ only in table name.
type slugTable struct {
	db    *sql.DB
	table string
	noun  string
}

const slugColumns = `id, name, slug`

func scanSlugRow(row scanner) (*models.Category, error) {
	var c models.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t slugTable) list(ctx context.Context, name string, p Page) ([]models.Category, int, error) {
	where, args := "", []any{}
	if name != "" {
		where, args = " WHERE name = $1", append(args, name)
	}

	var total int
	if err := t.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+t.table+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", t.table, err)
	}

	args = append(args, p.Limit, p.Offset)
	rows, err := t.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT %s FROM %s%s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		slugColumns, t.table, where, len(args)-1, len(args),
	), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", t.table, err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanSlugRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", t.noun, err)
		}
		items = append(items, *c)
	}
	return items, total, rows.Err()
}

func (t slugTable) findBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := t.db.QueryRowContext(ctx, `SELECT `+slugColumns+` FROM `+t.table+` WHERE slug = $1`, slug)
	c, err := scanSlugRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s by slug: %w", t.noun, err)
	}
	return c, nil
}

func (t slugTable) findBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT `+slugColumns+` FROM `+t.table+` WHERE slug = ANY($1) ORDER BY name, id`, slugs)
	if err != nil {
		return nil, fmt.Errorf("find %s by slugs: %w", t.table, err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanSlugRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.noun, err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (t slugTable) create(ctx context.Context, name, slug string) (*models.Category, error) {
	row := t.db.QueryRowContext(ctx,
		`INSERT INTO `+t.table+` (name, slug) VALUES ($1, $2) RETURNING `+slugColumns, name, slug)
	c, err := scanSlugRow(row)
	if err != nil {
		return nil, wrap("create "+t.noun, err)
	}
	return c, nil
}

func (t slugTable) deleteBySlug(ctx context.Context, slug string) (bool, error) {
	res, err := t.db.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE slug = $1`, slug)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", t.noun, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s rows: %w", t.noun, err)
	}
	return n > 0, nil
}

// CategoryStore manages categories in the database.
type CategoryStore struct {
	t slugTable
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{t: slugTable{db: db, table: "categories", noun: "category"}}
}

// List returns a page of categories ordered by name. A non-empty name
// restricts the result to exact matches.
func (s *CategoryStore) List(ctx context.Context, name string, p Page) ([]models.Category, int, error) {
	return s.t.list(ctx, name, p)
}

// FindBySlug returns the category with the given slug, or nil.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.t.findBySlug(ctx, slug)
}

// FindBySlugs returns the categories matching slugs.
func (s *CategoryStore) FindBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	return s.t.findBySlugs(ctx, slugs)
}

// Create inserts a category. A taken slug returns *DuplicateError.
func (s *CategoryStore) Create(ctx context.Context, name, slug string) (*models.Category, error) {
	return s.t.create(ctx, name, slug)
}

// DeleteBySlug removes a category. Titles referencing it keep existing
// with no category. Reports whether a row was deleted.
func (s *CategoryStore) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	return s.t.deleteBySlug(ctx, slug)
}

// GenreStore manages genres in the database.
type GenreStore struct {
	t slugTable
}

// NewGenreStore returns a new GenreStore.
func NewGenreStore(db *sql.DB) *GenreStore {
	return &GenreStore{t: slugTable{db: db, table: "genres", noun: "genre"}}
}

// List returns a page of genres ordered by name.
func (s *GenreStore) List(ctx context.Context, name string, p Page) ([]models.Genre, int, error) {
	items, total, err := s.t.list(ctx, name, p)
	if err != nil {
		return nil, 0, err
	}
	return toGenres(items), total, nil
}

// FindBySlug returns the genre with the given slug, or nil.
func (s *GenreStore) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	c, err := s.t.findBySlug(ctx, slug)
	if c == nil || err != nil {
		return nil, err
	}
	g := models.Genre(*c)
	return &g, nil
}

// FindBySlugs returns the genres matching slugs. Unknown slugs are
// silently absent from the result.
func (s *GenreStore) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	items, err := s.t.findBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	return toGenres(items), nil
}

// Create inserts a genre. A taken slug returns *DuplicateError.
func (s *GenreStore) Create(ctx context.Context, name, slug string) (*models.Genre, error) {
	c, err := s.t.create(ctx, name, slug)
	if err != nil {
		return nil, err
	}
	g := models.Genre(*c)
	return &g, nil
}

// DeleteBySlug removes a genre and its title links.
func (s *GenreStore) DeleteBySlug(ctx context.Context, slug string) (bool, error) {
	return s.t.deleteBySlug(ctx, slug)
}

func toGenres(items []models.Category) []models.Genre {
	out := make([]models.Genre, len(items))
	for i, c := range items {
		out[i] = models.Genre(c)
	}
	return out
}
