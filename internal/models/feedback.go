// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Score bounds and text limits for feedback.
const (
	MinScore          = 1
	MaxScore          = 10
	MaxReviewTextLen  = 10_000
	MaxCommentTextLen = 2_000
)

// Review is a user's scored opinion of a title. A user may review a
// given title at most once.
type Review struct {
	ID       int64     `json:"id"`
	TitleID  int64     `json:"-"`
	AuthorID uuid.UUID `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// OwnerID returns the author's user ID.
func (r *Review) OwnerID() uuid.UUID { return r.AuthorID }

// Comment is a reply attached to a review.
type Comment struct {
	ID       int64     `json:"id"`
	ReviewID int64     `json:"-"`
	AuthorID uuid.UUID `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

// OwnerID returns the author's user ID.
func (c *Comment) OwnerID() uuid.UUID { return c.AuthorID }
