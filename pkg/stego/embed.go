// Package stego hides a byte payload in the least significant bits of a
// carrier image and recovers it.
//
// The payload is framed (magic, length, CRC-32, body), serialized MSB first,
// XOR-ed with a password-derived keystream and written one bit per colour
// channel, walking rows top to bottom, pixels left to right, then R, G, B.
// Alpha is never touched. Embed and Extract never modify their input and hold
// no shared state, so they are safe for concurrent use.
package stego

import (
	"fmt"

	"github.com/xob0t/GoStego/pkg/bitstream"
	"github.com/xob0t/GoStego/pkg/keystream"
)

// salt is part of the format: extraction must derive the same keystream.
var salt = []byte("gostego/lsb/v1")

// Options tune embedding. The zero value matches Embed.
type Options struct {
	// Compress stores the payload zstd-compressed when that is smaller.
	Compress bool
}

// Embed returns a copy of c carrying payload. An empty password disables
// the keystream.
func Embed(c *Carrier, payload []byte, password string) (*Carrier, error) {
	return EmbedWithOptions(c, payload, password, Options{})
}

// EmbedWithOptions is Embed with explicit options.
func EmbedWithOptions(c *Carrier, payload []byte, password string, opts Options) (*Carrier, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var (
		f   Frame
		err error
	)
	if opts.Compress {
		f, err = newCompressedFrame(payload)
	} else {
		f, err = NewFrame(payload)
	}
	if err != nil {
		return nil, err
	}

	if need := FrameBits(len(f.Body)); !Fits(c, need) {
		return nil, fmt.Errorf("%w: frame needs %d bits, carrier holds %d", ErrPayloadTooLarge, need, CapacityBits(c))
	}

	data := f.Bytes()
	bitstream.XorBytes(data, keystream.Stream(password, salt, len(data)))

	out := c.Clone()
	out.writeBits(bitstream.BitsOf(data))
	return out, nil
}
