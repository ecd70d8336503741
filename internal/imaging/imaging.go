// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging detects uploaded image types and generates JPEG
// thumbnails for the media library. Decoding covers JPEG, PNG, GIF and
// WebP; vector and animated formats are stored as-is.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// ThumbMaxWidth is the maximum thumbnail width in pixels.
	ThumbMaxWidth = 300

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps the number of pixels to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// allowedTypes defines MIME types accepted for upload.
var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/avif":    true,
}

// thumbableTypes are image types that support thumbnail generation.
// GIF is excluded to preserve animation; SVG is vector; AVIF has no
// pure-Go decoder.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectType sniffs the content type of an upload from its first bytes.
// filename is only consulted to recognise SVG, which sniffs as XML/text.
func DetectType(head []byte, filename string) string {
	if len(head) >= 12 && string(head[4:8]) == "ftyp" {
		switch string(head[8:12]) {
		case "avif", "avis":
			return "image/avif"
		}
	}

	contentType := http.DetectContentType(head)

	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	return contentType
}

// Allowed reports whether contentType may be uploaded.
func Allowed(contentType string) bool {
	return allowedTypes[contentType]
}

// Thumbable reports whether a thumbnail can be generated for contentType.
func Thumbable(contentType string) bool {
	return thumbableTypes[contentType]
}

// Thumbnail creates a JPEG thumbnail constrained to maxWidth while
// preserving aspect ratio. Returns nil if the image is already narrower
// than maxWidth.
func Thumbnail(data []byte, maxWidth int) ([]byte, error) {
	// Decode config first to check dimensions without full decode.
	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if int64(imgCfg.Width)*int64(imgCfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", imgCfg.Width, imgCfg.Height, maxImagePixels)
	}

	if imgCfg.Width <= maxWidth {
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := max(1, int(float64(bounds.Dy())*ratio))

	// JPEG has no alpha channel; transparent areas are composited onto white.
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
