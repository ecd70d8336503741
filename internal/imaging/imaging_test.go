package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	pngData := encodePNG(t, 2, 2)
	avif := append([]byte{0, 0, 0, 0x1c}, []byte("ftypavif\x00\x00\x00\x00")...)

	tests := []struct {
		name     string
		head     []byte
		filename string
		want     string
	}{
		{name: "png", head: pngData, filename: "a.png", want: "image/png"},
		{name: "svg by extension", head: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), filename: "Logo.SVG", want: "image/svg+xml"},
		{name: "xml without svg extension", head: []byte(`<?xml version="1.0"?><note/>`), filename: "a.xml", want: "text/xml; charset=utf-8"},
		{name: "avif", head: avif, filename: "a.avif", want: "image/avif"},
		{name: "plain text", head: []byte("hello"), filename: "a.txt", want: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectType(tt.head, tt.filename); got != tt.want {
				t.Errorf("DetectType: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllowedAndThumbable(t *testing.T) {
	if !Allowed("image/png") || !Allowed("image/svg+xml") {
		t.Error("png and svg should be allowed")
	}
	if Allowed("application/pdf") || Allowed("text/plain; charset=utf-8") {
		t.Error("non-images should be rejected")
	}
	if !Thumbable("image/jpeg") || Thumbable("image/gif") || Thumbable("image/svg+xml") {
		t.Error("thumbable set mismatch")
	}
}

func TestThumbnail(t *testing.T) {
	t.Run("small image is skipped", func(t *testing.T) {
		out, err := Thumbnail(encodePNG(t, 100, 50), ThumbMaxWidth)
		if err != nil {
			t.Fatalf("Thumbnail: %v", err)
		}
		if out != nil {
			t.Error("expected nil thumbnail for image narrower than max width")
		}
	})

	t.Run("wide image is scaled", func(t *testing.T) {
		out, err := Thumbnail(encodePNG(t, 600, 200), ThumbMaxWidth)
		if err != nil {
			t.Fatalf("Thumbnail: %v", err)
		}
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("thumbnail is not a JPEG: %v", err)
		}
		if cfg.Width != ThumbMaxWidth || cfg.Height != 100 {
			t.Errorf("size: got %dx%d, want %dx100", cfg.Width, cfg.Height, ThumbMaxWidth)
		}
	})

	t.Run("transparent areas become white", func(t *testing.T) {
		// Only the top row of the source is opaque.
		out, err := Thumbnail(encodePNG(t, 600, 200), ThumbMaxWidth)
		if err != nil {
			t.Fatalf("Thumbnail: %v", err)
		}
		img, err := jpeg.Decode(bytes.NewReader(out))
		if err != nil {
			t.Fatalf("decode thumbnail: %v", err)
		}
		r, g, b, _ := img.At(ThumbMaxWidth/2, 50).RGBA()
		if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
			t.Errorf("centre pixel: got rgb(%d,%d,%d), want white", r>>8, g>>8, b>>8)
		}
	})

	t.Run("garbage fails", func(t *testing.T) {
		if _, err := Thumbnail([]byte("not an image"), ThumbMaxWidth); err == nil {
			t.Error("expected decode error")
		}
	})
}
