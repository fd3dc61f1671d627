// caption.go - Caption rendering with custom TTF support and embedded fallback font.
// Uses golang.org/x/image/font for OpenType rendering. Defaults to Go Regular
// font when no custom font is specified.
package cover

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const captionMargin = 16

// loadFace returns a font.Face at the given size from path, or Go Regular.
func loadFace(path string, size float64) (font.Face, error) {
	data := goregular.TTF
	if path != "" {
		custom, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font: %w", err)
		}
		data = custom
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	return face, nil
}

// drawCaption writes cfg.Caption in black or white, whichever contrasts
// with the top-left pixel, wrapping at the image width.
func drawCaption(img *image.RGBA, cfg Config) error {
	size := cfg.FontSize
	if size <= 0 {
		size = 24
	}
	face, err := loadFace(cfg.FontPath, size)
	if err != nil {
		return err
	}
	defer face.Close()

	col := contrastColor(img.RGBAAt(0, 0))
	lineHeight := int(size * 1.4)
	y := captionMargin
	for _, line := range wrapText(cfg.Caption, img.Bounds().Dx()-2*captionMargin, face) {
		y += lineHeight
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(col),
			Face: face,
			Dot:  fixed.P(captionMargin, y),
		}
		drawer.DrawString(line)
	}
	return nil
}

// wrapText breaks text into lines no wider than maxWidth pixels.
func wrapText(text string, maxWidth int, face font.Face) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		next := current + " " + word
		if font.MeasureString(face, next).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
		} else {
			current = next
		}
	}
	return append(lines, current)
}

func contrastColor(bg color.RGBA) color.RGBA {
	// Rec. 601 luma.
	luma := (299*int(bg.R) + 587*int(bg.G) + 114*int(bg.B)) / 1000
	if luma > 140 {
		return color.RGBA{A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}
