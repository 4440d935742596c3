// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import "strings"

// wordsPerMinute is the average adult reading speed used for estimates.
const wordsPerMinute = 200

// ReadTime estimates how many minutes it takes to read content,
// assuming 200 words per minute. The result is always at least 1,
// even for empty content.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}
