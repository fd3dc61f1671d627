// write.go — PNG and BMP file writers.
package cover

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"
)

// writeFile encodes img to the given path.
func writeFile(output, ext string, img image.Image) error {
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()

	if err := encode(f, ext, img); err != nil {
		return err
	}
	return f.Sync()
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case ".png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode PNG: %w", err)
		}
	case ".bmp":
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("encode BMP: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}
	return nil
}
