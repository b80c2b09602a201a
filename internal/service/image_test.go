package service_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/msomdec/prof/internal/domain"
	"github.com/msomdec/prof/internal/service"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode normalized image: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	return cfg.Width, cfg.Height
}

func TestNormalize_SmallImageNeverUpscaled(t *testing.T) {
	n := service.NewImageNormalizer()
	name, encoded, err := n.Normalize(makePNG(t, 100, 80), "photo.png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.HasSuffix(name, ".jpg") {
		t.Fatalf("expected .jpg extension, got %s", name)
	}
	w, h := decodeDims(t, encoded)
	if w != 100 || h != 80 {
		t.Fatalf("expected 100x80, got %dx%d", w, h)
	}
}

func TestNormalize_LargeImageBoundedWithAspectRatio(t *testing.T) {
	n := service.NewImageNormalizer()
	_, encoded, err := n.Normalize(makePNG(t, 2048, 1024), "wide.png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	w, h := decodeDims(t, encoded)
	if w > 1024 || h > 1024 {
		t.Fatalf("dimensions exceed cap: %dx%d", w, h)
	}
	if w != 1024 || h != 512 {
		t.Fatalf("expected 1024x512 for a 2:1 image, got %dx%d", w, h)
	}
}

func TestNormalize_TallImageBounded(t *testing.T) {
	n := service.NewImageNormalizer()
	_, encoded, err := n.Normalize(makePNG(t, 512, 2048), "tall.png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	w, h := decodeDims(t, encoded)
	if w != 256 || h != 1024 {
		t.Fatalf("expected 256x1024 for a 1:4 image, got %dx%d", w, h)
	}
}

func TestNormalize_InvalidData(t *testing.T) {
	n := service.NewImageNormalizer()
	_, _, err := n.Normalize([]byte("definitely not an image"), "junk.bin")
	if !errors.Is(err, domain.ErrImageProcessing) {
		t.Fatalf("expected ErrImageProcessing, got %v", err)
	}
}

func TestNormalize_FilenameUnrelatedToUpload(t *testing.T) {
	n := service.NewImageNormalizer()
	name1, _, err := n.Normalize(makePNG(t, 10, 10), "avatar.png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	name2, _, err := n.Normalize(makePNG(t, 10, 10), "avatar.png")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if strings.Contains(name1, "avatar") {
		t.Fatalf("storage name must not derive from the upload name: %s", name1)
	}
	if name1 == name2 {
		t.Fatal("storage names must be unique per normalization")
	}
}
