// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Title is a cataloged work that users review.
type Title struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Category    *Category `json:"category"`
	Genres      []Genre   `json:"genre"`

	// Rating is the mean review score, computed on every read.
	// Nil when the title has no reviews.
	Rating *float64 `json:"rating"`
}

// ValidYear reports whether year is not in the future relative to now.
func ValidYear(year int, now time.Time) bool {
	return year >= 0 && year <= now.Year()
}
