// Package cover generates carrier images for steganography.
//
// A cover is a solid colour, optionally roughened with per-pixel noise so the
// least significant bits look random before anything is hidden, and
// optionally captioned. Output is always lossless (PNG or BMP).
package cover

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"
)

// Config holds parameters for cover generation.
type Config struct {
	Width    int     // Pixel width (default: 640)
	Height   int     // Pixel height (default: 480)
	Color    string  // Hex "#rrggbb" or "random"
	Noise    int     // Max per-channel deviation, 0..127 (0: flat colour)
	Seed     uint64  // Noise seed; 0 picks one at random
	Caption  string  // Optional text drawn near the top-left corner
	FontPath string  // TTF for the caption; empty uses Go Regular
	FontSize float64 // Caption size in points (default: 24)
}

// Generate creates an output file. The format is inferred from the file extension:
//   - ".png" → PNG image
//   - ".bmp" → 24-bit BMP image
func Generate(output string, cfg Config) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext != ".png" && ext != ".bmp" {
		return fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}

	img, err := Render(cfg)
	if err != nil {
		return err
	}
	return writeFile(output, ext, img)
}

// GenerateToWriter writes a cover to w. The format is specified by ext (".png" or ".bmp").
func GenerateToWriter(w io.Writer, ext string, cfg Config) error {
	img, err := Render(cfg)
	if err != nil {
		return err
	}
	return encode(w, strings.ToLower(ext), img)
}

// Render builds the cover image in memory.
func Render(cfg Config) (*image.RGBA, error) {
	w := cfg.Width
	if w <= 0 {
		w = 640
	}
	h := cfg.Height
	if h <= 0 {
		h = 480
	}
	if cfg.Noise < 0 || cfg.Noise > 127 {
		return nil, fmt.Errorf("noise %d out of range 0..127", cfg.Noise)
	}

	fill, err := ParseColor(cfg.Color)
	if err != nil {
		return nil, err
	}
	img := NewSolidImage(w, h, fill)

	if cfg.Noise > 0 {
		if err := addNoise(img, cfg.Noise, cfg.Seed); err != nil {
			return nil, err
		}
	}

	if cfg.Caption != "" {
		if err := drawCaption(img, cfg); err != nil {
			return nil, err
		}
	}
	return img, nil
}
