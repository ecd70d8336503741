// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package media manages uploaded images in the blob store: naming new
// uploads, listing the library and deleting files by name.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"corpsite/internal/imaging"
	"corpsite/internal/models"
	"corpsite/internal/storage"
)

const (
	// Prefix is the key prefix for every CMS upload in the bucket.
	Prefix = "cms/"

	// thumbPrefix holds generated thumbnails. Keys under it are hidden
	// from the library listing.
	thumbPrefix = Prefix + "thumbs/"

	// listLimit caps how many objects List reads from the bucket.
	listLimit = 1000
)

var (
	// ErrInvalidName is returned for names with path components.
	ErrInvalidName = errors.New("invalid file name")

	// ErrNotConfigured is returned when no blob store is available.
	ErrNotConfigured = errors.New("media storage not configured")

	// ErrUnsupportedType is returned for uploads that are not images.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// unsafeChars matches every character not allowed in a stored base name.
var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Blobs is the subset of the blob store the media library needs.
// *storage.Client satisfies it.
type Blobs interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	List(ctx context.Context, prefix string, limit int) ([]storage.Object, error)
	Delete(ctx context.Context, key string) error
	FileURL(key string) string
}

// Service implements the media library on top of a blob store.
type Service struct {
	blobs Blobs
	now   func() time.Time

	mu   sync.Mutex
	last int64 // last millisecond stamp handed out
}

// NewService creates a media service. blobs may be nil, in which case
// every operation returns ErrNotConfigured.
func NewService(blobs Blobs) *Service {
	return &Service{blobs: blobs, now: time.Now}
}

// Configured reports whether a blob store is attached.
func (s *Service) Configured() bool {
	return s.blobs != nil
}

// List returns every uploaded file, newest first.
func (s *Service) List(ctx context.Context) ([]models.MediaFile, error) {
	if s.blobs == nil {
		return nil, ErrNotConfigured
	}

	objects, err := s.blobs.List(ctx, Prefix, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	files := make([]models.MediaFile, 0, len(objects))
	for _, obj := range objects {
		if strings.HasPrefix(obj.Key, thumbPrefix) {
			continue
		}
		name := strings.TrimPrefix(obj.Key, Prefix)
		files = append(files, models.MediaFile{
			Name:       name,
			Path:       obj.Key,
			URL:        s.blobs.FileURL(obj.Key),
			Size:       obj.Size,
			Mime:       mimeFromName(name),
			UploadedAt: obj.LastModified.UTC(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// Save stores an uploaded file under a fresh name derived from the
// original filename. Raster images also get a thumbnail; thumbnail
// failures are logged and do not fail the upload.
func (s *Service) Save(ctx context.Context, filename string, data []byte) (*models.MediaFile, error) {
	if s.blobs == nil {
		return nil, ErrNotConfigured
	}

	contentType := imaging.DetectType(data[:min(len(data), 512)], filename)
	if !imaging.Allowed(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	now := s.now()
	name := GenerateName(filename, s.stamp(now))
	key := Prefix + name

	if err := s.blobs.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	if imaging.Thumbable(contentType) {
		s.saveThumbnail(ctx, name, data)
	}

	return &models.MediaFile{
		Name:       name,
		Path:       key,
		URL:        s.blobs.FileURL(key),
		Size:       int64(len(data)),
		Mime:       contentType,
		UploadedAt: now.UTC(),
	}, nil
}

func (s *Service) saveThumbnail(ctx context.Context, name string, data []byte) {
	thumb, err := imaging.Thumbnail(data, imaging.ThumbMaxWidth)
	if err != nil {
		slog.Warn("thumbnail generation failed", "error", err, "name", name)
		return
	}
	if thumb == nil {
		return
	}
	key := ThumbKey(name)
	if err := s.blobs.Upload(ctx, key, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		slog.Warn("thumbnail upload failed", "error", err, "key", key)
	}
}

// Delete removes a file and its thumbnail. name must be a bare file name.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if s.blobs == nil {
		return ErrNotConfigured
	}

	if err := s.blobs.Delete(ctx, Prefix+name); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if err := s.blobs.Delete(ctx, ThumbKey(name)); err != nil {
		slog.Warn("thumbnail delete failed", "error", err, "name", name)
	}
	return nil
}

// stamp returns the current millisecond timestamp, bumped past the last
// one handed out so two uploads never share a suffix.
func (s *Service) stamp(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= s.last {
		ms = s.last + 1
	}
	s.last = ms
	return ms
}

// GenerateName builds the stored name for an upload: the sanitised base
// name, a millisecond timestamp and the original extension (".bin" when
// there is none).
func GenerateName(original string, millis int64) string {
	original = path.Base(strings.ReplaceAll(original, `\`, "/"))

	ext := ".bin"
	base := original
	if i := strings.LastIndex(original, "."); i >= 0 {
		ext = "." + unsafeChars.ReplaceAllString(strings.ToLower(original[i+1:]), "-")
		base = original[:i]
	}

	base = unsafeChars.ReplaceAllString(base, "-")
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%s-%d%s", base, millis, ext)
}

// ValidateName rejects empty names and names that could address anything
// outside the upload prefix.
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// ThumbKey returns the blob key of the thumbnail for an uploaded file.
func ThumbKey(name string) string {
	return thumbPrefix + name + ".jpg"
}

func mimeFromName(name string) string {
	if t := mime.TypeByExtension(path.Ext(name)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/*"
}
