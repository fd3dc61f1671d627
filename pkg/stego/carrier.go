package stego

import (
	"fmt"
	"image"
	"image/draw"
	"iter"
)

// SlotsPerPixel is the number of channels that carry data in each pixel.
// Alpha is never written so transparency is preserved.
const SlotsPerPixel = 3

// Carrier is a decoded raster image: Width*Height pixels of Channels
// interleaved 8-bit values (R, G, B and optionally A), rows top to bottom.
type Carrier struct {
	Width    int
	Height   int
	Channels int // 3 or 4
	Pix      []byte
}

// NewCarrier allocates a zeroed carrier.
func NewCarrier(width, height, channels int) (*Carrier, error) {
	c := &Carrier{Width: width, Height: height, Channels: channels}
	if err := c.dims(); err != nil {
		return nil, err
	}
	c.Pix = make([]byte, width*height*channels)
	return c, nil
}

// FromImage copies img into a carrier. Fully opaque images get 3 channels,
// anything with transparency gets 4. Channel values are straight (not
// alpha-premultiplied).
func FromImage(img image.Image) *Carrier {
	src := toNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	channels := 3
	if !src.Opaque() {
		channels = 4
	}

	c := &Carrier{Width: w, Height: h, Channels: channels, Pix: make([]byte, w*h*channels)}
	i := 0
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := 0; x < w; x++ {
			copy(c.Pix[i:i+channels], row[x*4:x*4+channels])
			i += channels
		}
	}
	return c
}

// Image returns the carrier as a new *image.NRGBA. Three-channel carriers
// come back fully opaque.
func (c *Carrier) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Width, c.Height))
	i := 0
	for p := 0; p < c.Width*c.Height; p++ {
		o := p * 4
		copy(img.Pix[o:o+3], c.Pix[i:i+3])
		if c.Channels == 4 {
			img.Pix[o+3] = c.Pix[i+3]
		} else {
			img.Pix[o+3] = 0xff
		}
		i += c.Channels
	}
	return img
}

// Clone returns a deep copy.
func (c *Carrier) Clone() *Carrier {
	out := *c
	out.Pix = append([]byte(nil), c.Pix...)
	return &out
}

// offset maps a channel slot in walk order to its index in Pix.
func (c *Carrier) offset(slot int) int {
	return (slot/SlotsPerPixel)*c.Channels + slot%SlotsPerPixel
}

// readBytes packs the least significant bits of n*8 consecutive slots,
// starting at slot from, into n bytes, MSB first.
func (c *Carrier) readBytes(from, n int) []byte {
	out := make([]byte, n)
	slot := from
	for i := range out {
		var b byte
		for range 8 {
			b = b<<1 | c.Pix[c.offset(slot)]&1
			slot++
		}
		out[i] = b
	}
	return out
}

// writeBits overwrites the least significant bit of consecutive slots,
// starting at slot 0, with bits.
func (c *Carrier) writeBits(bits iter.Seq[uint8]) {
	slot := 0
	for bit := range bits {
		o := c.offset(slot)
		c.Pix[o] = c.Pix[o]&^1 | bit&1
		slot++
	}
}

func (c *Carrier) dims() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrInvalidCarrier, c.Width, c.Height)
	}
	if c.Channels != 3 && c.Channels != 4 {
		return fmt.Errorf("%w: %d channels", ErrInvalidCarrier, c.Channels)
	}
	return nil
}

func (c *Carrier) validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil", ErrInvalidCarrier)
	}
	if err := c.dims(); err != nil {
		return err
	}
	if want := c.Width * c.Height * c.Channels; len(c.Pix) != want {
		return fmt.Errorf("%w: pixel buffer is %d bytes, want %d", ErrInvalidCarrier, len(c.Pix), want)
	}
	return nil
}

// toNRGBA returns img as an *image.NRGBA anchored at (0,0). NRGBA sources are
// copied row by row so values under zero or partial alpha survive untouched.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			o := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], src.Pix[o:o+b.Dx()*4])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
