// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts post markdown into sanitized HTML for
// public delivery.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// markdown renders raw HTML blocks; the sanitizer below decides what
// survives, so rendering must not be the filter.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// htmlSanitizer strips anything outside bluemonday's user-generated
// content allowlist, including scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

// PostHTML converts markdown content to sanitized HTML.
func PostHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
