// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"yamdb/internal/models"
)

func TestTitleStoreCreateWithRelations(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	catSlug, genSlug := uniq("movie"), uniq("noir")
	t.Cleanup(func() {
		db.Exec("DELETE FROM categories WHERE slug = $1", catSlug)
		db.Exec("DELETE FROM genres WHERE slug = $1", genSlug)
	})
	cat, err := NewCategoryStore(db).Create(ctx, "Movie", catSlug)
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	gen, err := NewGenreStore(db).Create(ctx, "Noir", genSlug)
	if err != nil {
		t.Fatalf("create genre: %v", err)
	}

	s := NewTitleStore(db)
	title, err := s.Create(ctx, TitleInput{
		Name:        uniq("Chinatown"),
		Year:        1974,
		Description: "Forget it, Jake.",
		CategoryID:  &cat.ID,
		GenreIDs:    []int64{gen.ID},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM titles WHERE id = $1", title.ID) })

	if title.Category == nil || title.Category.Slug != catSlug {
		t.Errorf("category: got %+v", title.Category)
	}
	if len(title.Genres) != 1 || title.Genres[0].Slug != genSlug {
		t.Errorf("genres: got %+v", title.Genres)
	}
	if title.Rating != nil {
		t.Errorf("expected nil rating without reviews, got %v", *title.Rating)
	}

	byGenre, total, err := s.List(ctx, TitleFilter{Genre: genSlug}, Page{Limit: 10})
	if err != nil {
		t.Fatalf("List by genre: %v", err)
	}
	if total != 1 || byGenre[0].ID != title.ID {
		t.Errorf("genre filter: total=%d", total)
	}

	year := 1974
	_, total, err = s.List(ctx, TitleFilter{Category: catSlug, Year: &year, Name: "chinatown"}, Page{Limit: 10})
	if err != nil {
		t.Fatalf("List combined: %v", err)
	}
	if total != 1 {
		t.Errorf("combined filter: expected 1, got %d", total)
	}

	// Deleting the category keeps the title with no category.
	if _, err := NewCategoryStore(db).DeleteBySlug(ctx, catSlug); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	after, err := s.FindByID(ctx, title.ID)
	if err != nil || after == nil {
		t.Fatalf("FindByID after category delete: %+v, %v", after, err)
	}
	if after.Category != nil {
		t.Errorf("expected category to be cleared, got %+v", after.Category)
	}
}

func TestTitleStoreUpdateReplacesGenres(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	a, b := uniq("war"), uniq("epic")
	t.Cleanup(func() { db.Exec("DELETE FROM genres WHERE slug = ANY($1)", []string{a, b}) })
	ga, _ := NewGenreStore(db).Create(ctx, "War", a)
	gb, _ := NewGenreStore(db).Create(ctx, "Epic", b)

	s := NewTitleStore(db)
	title, err := s.Create(ctx, TitleInput{Name: uniq("Ran"), Year: 1985, GenreIDs: []int64{ga.ID}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM titles WHERE id = $1", title.ID) })

	updated, err := s.Update(ctx, title.ID, TitleInput{Name: title.Name, Year: 1985, GenreIDs: []int64{gb.ID}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.Genres) != 1 || updated.Genres[0].ID != gb.ID {
		t.Errorf("genres after update: %+v", updated.Genres)
	}

	missing, err := s.Update(ctx, -1, TitleInput{Name: "x"})
	if err != nil || missing != nil {
		t.Errorf("Update missing: got %+v, %v", missing, err)
	}
}

func TestTitleStoreRatingAndCascade(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	title := newTestTitle(t, db)
	reviews := NewReviewStore(db)

	var last *models.Review
	for _, score := range []int{10, 8, 6} {
		author := newTestUser(t, db, models.RoleUser)
		r, err := reviews.Create(ctx, &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "ok", Score: score})
		if err != nil {
			t.Fatalf("create review: %v", err)
		}
		last = r
	}
	if _, err := NewCommentStore(db).Create(ctx, &models.Comment{ReviewID: last.ID, AuthorID: last.AuthorID, Text: "agreed"}); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	s := NewTitleStore(db)
	got, err := s.FindByID(ctx, title.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Rating == nil || *got.Rating != 8 {
		t.Errorf("rating: got %v, want 8", got.Rating)
	}

	deleted, err := s.Delete(ctx, title.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: deleted=%v err=%v", deleted, err)
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM reviews WHERE title_id = $1", title.ID).Scan(&n)
	if n != 0 {
		t.Errorf("expected reviews to cascade, %d left", n)
	}
	db.QueryRow("SELECT COUNT(*) FROM comments WHERE review_id = $1", last.ID).Scan(&n)
	if n != 0 {
		t.Errorf("expected comments to cascade, %d left", n)
	}
}
