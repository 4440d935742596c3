// Copyright (c) 2025-2026 Lone Cowry
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lonecowry/cowry-cms/internal/imaging"
	"github.com/lonecowry/cowry-cms/internal/model"
	"github.com/lonecowry/cowry-cms/internal/util"
)

// Upload limits
const (
	MaxUploadSize = 5 * 1024 * 1024 // 5MB per file

	thumbnailMaxDim = 400
)

// SkippedFilesWarning is returned alongside partial results when some
// files in a batch were rejected.
const SkippedFilesWarning = "Some files were skipped. Images must be less than 5MB."

// Upload scopes determine the directory prefix a file is stored
// under. Admin-scoped files are placed under a per-user directory and
// served only to authenticated sessions.
const (
	ScopeBlog     = "blog"
	ScopeFeatured = "featured"
	ScopeAdmin    = "admin"
)

// UploadedFile describes one stored file.
type UploadedFile struct {
	Name string `json:"name"`
	Key  string `json:"key"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

// UploadResult aggregates a batch upload: stored files plus a warning
// when any were skipped.
type UploadResult struct {
	Files   []UploadedFile `json:"files"`
	Warning string         `json:"warning,omitempty"`
}

// MediaService stores uploaded images under the uploads directory.
type MediaService struct {
	processor *imaging.Processor
	uploadDir string
}

// NewMediaService creates a media service rooted at uploadDir.
func NewMediaService(uploadDir string) *MediaService {
	return &MediaService{
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
	}
}

// prefixFor maps an upload scope to its storage prefix.
func prefixFor(scope string, user *model.SessionUser) (string, error) {
	switch scope {
	case ScopeBlog, "":
		return "blog-images", nil
	case ScopeFeatured:
		return "featured", nil
	case ScopeAdmin:
		if user == nil || user.ID == "" {
			return "", fmt.Errorf("admin scope requires an authenticated user")
		}
		return path.Join("admin", user.ID), nil
	default:
		return "", fmt.Errorf("unknown upload scope %q", scope)
	}
}

// errNotImage marks an upload whose bytes do not decode as a
// supported image format, whatever content type it claims.
var errNotImage = errors.New("upload is not an image")

// UploadBatch stores a set of multipart files. Files over the size
// limit, with a non-image content type, or whose bytes fail content
// sniffing are skipped, not fatal: the result carries every stored
// file plus a single aggregated warning.
func (s *MediaService) UploadBatch(headers []*multipart.FileHeader, scope string, user *model.SessionUser) (*UploadResult, error) {
	prefix, err := prefixFor(scope, user)
	if err != nil {
		return nil, err
	}

	result := &UploadResult{Files: []UploadedFile{}}
	skipped := false

	for _, header := range headers {
		if header.Size > MaxUploadSize || !isImageType(header) {
			skipped = true
			continue
		}

		stored, err := s.saveOne(header, prefix)
		if err != nil {
			if errors.Is(err, errNotImage) {
				slog.Warn("upload skipped, content is not an image", "name", header.Filename)
				skipped = true
				continue
			}
			return nil, err
		}
		result.Files = append(result.Files, *stored)
	}

	if skipped {
		result.Warning = SkippedFilesWarning
	}
	return result, nil
}

func isImageType(header *multipart.FileHeader) bool {
	return strings.HasPrefix(header.Header.Get("Content-Type"), "image/")
}

func (s *MediaService) saveOne(header *multipart.FileHeader, prefix string) (*UploadedFile, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload: %w", err)
	}
	defer file.Close()

	// The declared content type is attacker-controlled; sniff the
	// actual bytes before accepting the file.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if mime := s.processor.DetectMimeType(head[:n]); !s.processor.IsImage(mime) {
		return nil, fmt.Errorf("%w: detected %s", errNotImage, mime)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}

	safeName, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		return nil, err
	}

	// Unique key so repeated uploads of the same filename never clash
	key := path.Join(prefix, uuid.NewString()+"-"+safeName)

	dest := filepath.Join(s.uploadDir, filepath.FromSlash(key))
	if err := util.ValidatePathWithinBase(s.uploadDir, dest); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	size, err := s.writeFile(file, dest)
	if err != nil {
		return nil, err
	}

	// Normalize orientation and strip metadata for formats we decode,
	// and write a thumbnail variant next to the original
	if reprocessable(safeName) {
		if err := s.processor.NormalizeImage(dest); err != nil {
			// Keep the original bytes when reprocessing fails
			slog.Warn("normalizing upload failed", "key", key, "error", err)
		}
		if err := s.processor.CreateThumbnail(dest, thumbnailPath(dest), thumbnailMaxDim); err != nil {
			slog.Warn("creating thumbnail failed", "key", key, "error", err)
		}
	}

	return &UploadedFile{
		Name: safeName,
		Key:  key,
		URL:  "/uploads/" + key,
		Size: size,
	}, nil
}

func (s *MediaService) writeFile(src io.Reader, dest string) (int64, error) {
	out, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("writing file: %w", err)
	}
	if n > MaxUploadSize {
		os.Remove(dest)
		return 0, fmt.Errorf("file exceeds maximum size of %d bytes", MaxUploadSize)
	}
	return n, nil
}

// thumbnailPath derives the variant path: photo.png -> photo_thumb.png.
func thumbnailPath(dest string) string {
	ext := filepath.Ext(dest)
	return strings.TrimSuffix(dest, ext) + "_thumb" + ext
}

func reprocessable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
