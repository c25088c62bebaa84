// Package imageutil prepares user-supplied photos for the generative backend.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
)

const (
	maxWidth    = 1920
	maxHeight   = 1080
	jpegQuality = 85
)

// Prepare decodes an uploaded photo (any registered raster format), scales it
// to fit within 1920x1080 without upscaling, and returns JPEG bytes ready for
// the vision model. The original upload is not modified.
func Prepare(data []byte) (out []byte, mimeType string, err error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	scaled := scaleToFit(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}

	return buf.Bytes(), "image/jpeg", nil
}

// scaleToFit scales the image down to fit within maxWidth x maxHeight,
// preserving aspect ratio. Images already within bounds pass through.
func scaleToFit(img image.Image) image.Image {
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()

	if w <= maxWidth && h <= maxHeight {
		return img
	}

	scaleX := float64(maxWidth) / float64(w)
	scaleY := float64(maxHeight) / float64(h)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}

	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
