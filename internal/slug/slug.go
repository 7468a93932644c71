// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates the short identifiers used to
// address categories and genres in URLs.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLength is the longest slug accepted.
const MaxLength = 50

var (
	// valid matches an acceptable slug.
	valid = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	// disallowed matches anything a generated slug may not contain.
	disallowed = regexp.MustCompile(`[^a-z0-9\s_-]`)
	// separators collapses whitespace and hyphen runs into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a URL-friendly slug from the given string.
// Accents are folded to their base letters and the result is cut to
// MaxLength. Example: "Amélie (2001)" → "amelie-2001"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = disallowed.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Valid reports whether s is an acceptable slug.
func Valid(s string) bool {
	return len(s) <= MaxLength && valid.MatchString(s)
}

// fold strips combining marks after canonical decomposition.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
