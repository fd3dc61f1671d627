// color.go — Colour parsing, solid fills and noise.
package cover

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	mrand "math/rand/v2"
	"strings"
)

// ParseColor turns a background spec into an opaque fill: "#rrggbb",
// "#rgb" (each digit doubled), or "random"/"" for a fresh random colour.
func ParseColor(s string) (color.RGBA, error) {
	fill := color.RGBA{A: 255}
	if s == "" || strings.EqualFold(s, "random") {
		var rgb [3]byte
		if _, err := rand.Read(rgb[:]); err != nil {
			return fill, fmt.Errorf("random color: %w", err)
		}
		fill.R, fill.G, fill.B = rgb[0], rgb[1], rgb[2]
		return fill, nil
	}

	digits := strings.TrimPrefix(s, "#")
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return fill, fmt.Errorf("invalid color %q: want #rrggbb or #rgb", s)
	}
	rgb, err := hex.DecodeString(digits)
	if err != nil {
		return fill, fmt.Errorf("invalid color %q: %w", s, err)
	}
	fill.R, fill.G, fill.B = rgb[0], rgb[1], rgb[2]
	return fill, nil
}

// NewSolidImage fills a w×h canvas with c.
func NewSolidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// addNoise shifts every colour channel by a uniform value in [-amp, amp].
// Alpha stays opaque.
func addNoise(img *image.RGBA, amp int, seed uint64) error {
	if seed == 0 {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return fmt.Errorf("noise seed: %w", err)
		}
		seed = binary.LittleEndian.Uint64(buf[:])
	}
	rng := mrand.New(mrand.NewPCG(seed, ^seed))

	for i := 0; i < len(img.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := int(img.Pix[i+ch]) + rng.IntN(2*amp+1) - amp
			img.Pix[i+ch] = uint8(min(max(v, 0), 255))
		}
	}
	return nil
}
