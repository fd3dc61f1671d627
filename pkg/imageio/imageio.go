// Package imageio decodes uploaded images into carriers and writes carriers
// back out in a lossless format.
//
// Input may be PNG, JPEG, GIF, BMP, TIFF or WebP. Output is PNG or BMP only:
// anything lossy would destroy the embedded bits.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/xob0t/GoStego/pkg/stego"
)

// DefaultMaxPixels bounds decoded image size (64 megapixels).
const DefaultMaxPixels = 64 << 20

var (
	ErrUnsupportedFormat = errors.New("imageio: unsupported image format")
	ErrTooLarge          = errors.New("imageio: image exceeds pixel limit")
)

// Decode reads an image and converts it to a carrier. Images with more than
// maxPixels pixels are rejected before their pixel data is decoded; a
// non-positive maxPixels means DefaultMaxPixels. The returned format is the
// name the image package registered ("png", "jpeg", ...).
func Decode(data []byte, maxPixels int) (*stego.Carrier, string, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", ErrUnsupportedFormat
		}
		return nil, "", fmt.Errorf("decode %s header: %w", format, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, format, fmt.Errorf("decode %s: empty image", format)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, format, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, format, fmt.Errorf("decode %s: %w", format, err)
	}
	return stego.FromImage(img), format, nil
}

// Encode writes c as format ("png" or "bmp"). BMP output requires an opaque
// carrier.
func Encode(w io.Writer, c *stego.Carrier, format string) error {
	switch format {
	case "png", "":
		if err := png.Encode(w, c.Image()); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case "bmp":
		if c.Channels != 3 {
			return fmt.Errorf("encode BMP: carrier has an alpha channel, use PNG")
		}
		if err := bmp.Encode(w, c.Image()); err != nil {
			return fmt.Errorf("encode BMP: %w", err)
		}
	default:
		return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, format)
	}
	return nil
}

// EncodePNG is Encode to a byte slice in PNG.
func EncodePNG(c *stego.Carrier) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c, "png"); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatForPath picks the output format from a file extension.
func FormatForPath(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return "png", nil
	case ".bmp":
		return "bmp", nil
	default:
		return "", fmt.Errorf("%w: %q, use .png or .bmp", ErrUnsupportedFormat, ext)
	}
}

// Lossless reports whether a decoded format keeps exact pixel values, i.e.
// whether a payload could have survived in it.
func Lossless(format string) bool {
	switch format {
	case "png", "bmp", "tiff":
		return true
	default:
		return false
	}
}
