// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates page slugs.
package slug

import (
	"regexp"
	"strings"
)

// MaxLength is the longest slug accepted for a page.
const MaxLength = 200

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// whitespace runs become a single hyphen.
	whitespace = regexp.MustCompile(`\s+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// valid is the accepted slug alphabet.
	valid = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = whitespace.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	if len(result) > MaxLength {
		result = strings.TrimRight(result[:MaxLength], "-")
	}
	return result
}

// Valid reports whether s is usable as a page slug: 1 to MaxLength
// characters of lower-case letters, digits and hyphens.
func Valid(s string) bool {
	return len(s) > 0 && len(s) <= MaxLength && valid.MatchString(s)
}
