// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple two words", "Science Fiction", "science-fiction"},
		{"title with year", "Blade Runner 2049", "blade-runner-2049"},
		{"punctuation", "Rock & Roll!", "rock-roll"},
		{"parentheses", "Amélie (2001)", "amelie-2001"},
		{"french accents folded", "Les Misérables à la carte", "les-miserables-a-la-carte"},
		{"german umlauts folded", "Über die Brücke", "uber-die-brucke"},
		{"spanish tilde", "El Niño", "el-nino"},
		{"non-latin dropped", "Kino 映画", "kino"},
		{"underscore kept", "film_noir", "film_noir"},
		{"tabs become hyphens", "hello\tworld", "hello-world"},
		{"newlines become hyphens", "hello\nworld", "hello-world"},
		{"repeated separators", "  --hello -- world--  ", "hello-world"},
		{"empty string", "", ""},
		{"only special characters", "!@#$%^&*()", ""},
		{"single character", "A", "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateTruncates(t *testing.T) {
	got := Generate(strings.Repeat("ab ", 40))
	if len(got) > MaxLength {
		t.Errorf("length %d exceeds %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug ends with hyphen: %q", got)
	}
}

func TestGenerateOutputIsValid(t *testing.T) {
	for _, in := range []string{"Drama", "Film Noir", "Sci-Fi & Fantasy", "Ça ira", strings.Repeat("x", 80)} {
		if got := Generate(in); !Valid(got) {
			t.Errorf("Generate(%q) = %q is not a valid slug", in, got)
		}
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"drama", true},
		{"sci-fi", true},
		{"Film_Noir_2", true},
		{"", false},
		{"with space", false},
		{"amélie", false},
		{"a/b", false},
		{strings.Repeat("a", MaxLength), true},
		{strings.Repeat("a", MaxLength+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Valid(tt.in); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
