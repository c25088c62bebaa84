// Package cert rasterizes a printable certificate summarizing the landmarks
// visited during a tour session.
package cert

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Entry is one visited landmark on the certificate.
type Entry struct {
	Name     string
	Location string
	Emoji    string
}

// emojiPlaceholder stands in for tags the bitmap face cannot draw.
const emojiPlaceholder = "[*]"

const (
	pageWidth  = 800
	marginX    = 60
	headerH    = 150
	lineH      = 26
	footerH    = 90
	borderInsl = 20
)

// Renderer draws certificates as PNG images.
type Renderer struct {
	face font.Face
}

// NewRenderer creates a Renderer using the built-in bitmap face.
func NewRenderer() *Renderer {
	return &Renderer{face: basicfont.Face7x13}
}

// Render produces a PNG certificate for the given visitor. The page grows
// with the number of entries.
func (r *Renderer) Render(visitor string, issued time.Time, entries []Entry) ([]byte, error) {
	if len(entries) == 0 {
		return nil, errors.New("certificate requires at least one visited landmark")
	}
	if strings.TrimSpace(visitor) == "" {
		visitor = "A Curious Explorer"
	}

	height := headerH + len(entries)*lineH + footerH
	img := image.NewRGBA(image.Rect(0, 0, pageWidth, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	r.drawBorder(img)

	ink := color.RGBA{40, 40, 60, 255}
	accent := color.RGBA{120, 90, 30, 255}

	y := 50
	r.drawCentered(img, "CERTIFICATE OF EXPLORATION", y, accent)
	y += 30
	r.drawCentered(img, "This certifies that", y, ink)
	y += 24
	r.drawCentered(img, asciiSafe(visitor), y, accent)
	y += 28
	r.drawCentered(img, fmt.Sprintf("has visited the following %s:", pluralLandmark(len(entries))), y, ink)
	y += 30

	for i, e := range entries {
		tag := asciiSafe(e.Emoji)
		if tag == "" {
			tag = emojiPlaceholder
		}
		line := fmt.Sprintf("%d. %s  %s", i+1, tag, asciiSafe(e.Name))
		if e.Location != "" {
			line += "  (" + asciiSafe(e.Location) + ")"
		}
		r.drawText(img, line, marginX, y, ink)
		y += lineH
	}

	y += 30
	r.drawCentered(img, "Issued "+issued.Format("January 2, 2006"), y, ink)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBorder(img *image.RGBA) {
	frame := color.RGBA{120, 90, 30, 255}
	b := img.Bounds()
	for x := borderInsl; x < b.Dx()-borderInsl; x++ {
		img.Set(x, borderInsl, frame)
		img.Set(x, b.Dy()-borderInsl, frame)
	}
	for y := borderInsl; y <= b.Dy()-borderInsl; y++ {
		img.Set(borderInsl, y, frame)
		img.Set(b.Dx()-borderInsl, y, frame)
	}
}

func (r *Renderer) drawCentered(img *image.RGBA, text string, y int, c color.Color) {
	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: r.face}
	w := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((img.Bounds().Dx()-w)/2, y)
	d.DrawString(text)
}

func (r *Renderer) drawText(img *image.RGBA, text string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: r.face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// asciiSafe replaces runes outside the bitmap face's coverage so names with
// accents or emoji still render legibly.
func asciiSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r > unicode.MaxASCII:
			b.WriteByte('?')
		case unicode.IsPrint(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func pluralLandmark(n int) string {
	if n == 1 {
		return "landmark"
	}
	return fmt.Sprintf("%d landmarks", n)
}
