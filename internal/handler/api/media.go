// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/lonecowry/cowry-cms/internal/model"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxUploadMemory = 8 << 20

// Upload handles POST /api/uploads: a multipart batch under the
// "files" field with an optional "scope" field (blog, featured,
// admin). Oversized or non-image files are skipped and reported in an
// aggregated warning, not rejected as a batch.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		WriteError(w, http.StatusBadRequest, "No files provided")
		return
	}

	user := h.sessionUser(r)
	scope := r.FormValue("scope")

	result, err := h.media.UploadBatch(files, scope, user)
	if err != nil {
		slog.Error("storing uploads", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.events.Log(r.Context(), model.EventLevelInfo, model.EventCategoryMedia,
		"files uploaded", map[string]any{
			"count": len(result.Files), "scope": scope, "user": user.Email,
		})

	WriteSuccess(w, result)
}
