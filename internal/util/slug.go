// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug derivation and read-time estimation for blog posts.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonAlnumRun matches runs of characters outside [a-z0-9]
var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a post title to a URL-friendly slug.
// It removes accents, converts to lowercase, replaces every run of
// non-alphanumeric characters with a single hyphen, and trims leading
// and trailing hyphens.
//
// The derivation is a pure function of the title: identical titles
// produce identical slugs, and no collision check is performed.
func Slugify(title string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, title)

	result = strings.ToLower(result)
	result = nonAlnumRun.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	return !strings.Contains(s, "--")
}
