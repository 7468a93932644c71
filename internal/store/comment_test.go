// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"yamdb/internal/models"
)

func TestCommentStoreLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	title := newTestTitle(t, db)
	author := newTestUser(t, db, models.RoleUser)

	review, err := NewReviewStore(db).Create(ctx, &models.Review{TitleID: title.ID, AuthorID: author.ID, Text: "Fine", Score: 6})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	s := NewCommentStore(db)
	first, err := s.Create(ctx, &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "first"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create(ctx, &models.Comment{ReviewID: review.ID, AuthorID: author.ID, Text: "second"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, total, err := s.List(ctx, review.ID, Page{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || list[0].ID != second.ID {
		t.Errorf("expected newest first, got %+v", list)
	}

	first.Text = "edited"
	updated, err := s.Update(ctx, first)
	if err != nil || updated.Text != "edited" || updated.Author != author.Username {
		t.Errorf("Update: %+v, %v", updated, err)
	}

	if err := s.Delete(ctx, review.ID, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := s.FindByID(ctx, review.ID, first.ID); got != nil {
		t.Error("expected comment to be deleted")
	}
}
