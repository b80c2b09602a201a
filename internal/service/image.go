package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/msomdec/prof/internal/domain"
)

// Default normalization settings.
const (
	DefaultMaxImageWidth  = 1024
	DefaultMaxImageHeight = 1024
	DefaultJPEGQuality    = 85
)

// ImageNormalizer decodes an uploaded image, downsizes it to a bounding box
// while preserving aspect ratio, and re-encodes it as JPEG. Re-encoding to a
// single canonical format keeps storage uniform and strips embedded metadata.
type ImageNormalizer struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// NewImageNormalizer creates an ImageNormalizer with the default settings.
func NewImageNormalizer() *ImageNormalizer {
	return &ImageNormalizer{
		MaxWidth:  DefaultMaxImageWidth,
		MaxHeight: DefaultMaxImageHeight,
		Quality:   DefaultJPEGQuality,
	}
}

// Normalize returns a storage-ready filename and encoded bytes for the raw
// upload. The filename is freshly generated and unrelated to the original
// upload name; its extension always reflects the canonical format. Images
// already inside the bounding box are never upscaled.
func (n *ImageNormalizer) Normalize(raw []byte, originalFilename string) (string, []byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", nil, fmt.Errorf("%w: decode %q: %v", domain.ErrImageProcessing, originalFilename, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > n.MaxWidth || h > n.MaxHeight {
		scale := float64(n.MaxWidth) / float64(w)
		if s := float64(n.MaxHeight) / float64(h); s < scale {
			scale = s
		}
		dw := int(float64(w)*scale + 0.5)
		dh := int(float64(h)*scale + 0.5)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: n.Quality}); err != nil {
		return "", nil, fmt.Errorf("%w: encode: %v", domain.ErrImageProcessing, err)
	}

	return uuid.NewString() + ".jpg", buf.Bytes(), nil
}
