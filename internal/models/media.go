// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaFile is an uploaded image stored in the blob store. The name is
// generated at upload time and is unique; files are never overwritten.
type MediaFile struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	Mime       string    `json:"mime"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// IsImage returns true if the media item is an image type.
func (m *MediaFile) IsImage() bool {
	return strings.HasPrefix(m.Mime, "image/")
}

// HumanSize returns a human-readable file size string.
func (m *MediaFile) HumanSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case m.Size >= mb:
		return fmt.Sprintf("%.1f MB", float64(m.Size)/float64(mb))
	case m.Size >= kb:
		return fmt.Sprintf("%.0f KB", float64(m.Size)/float64(kb))
	default:
		return fmt.Sprintf("%d B", m.Size)
	}
}
