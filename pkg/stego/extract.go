package stego

import (
	"fmt"

	"github.com/xob0t/GoStego/pkg/bitstream"
	"github.com/xob0t/GoStego/pkg/keystream"
)

// Extract recovers the payload hidden in c with password.
func Extract(c *Carrier, password string) ([]byte, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	capacity := CapacityBits(c)
	if capacity < HeaderBits {
		return nil, fmt.Errorf("%w: header needs %d bits, carrier holds %d", ErrInsufficientCapacity, HeaderBits, capacity)
	}

	hdr := c.readBytes(0, headerSize)
	bitstream.XorBytes(hdr, keystream.Stream(password, salt, headerSize))
	h, err := parseHeader(hdr)
	if err != nil {
		return nil, err
	}

	total := uint64(HeaderBits) + h.bodyBits()
	if total > uint64(capacity) {
		return nil, fmt.Errorf("%w: frame declares %d bits, carrier holds %d", ErrInsufficientCapacity, total, capacity)
	}

	body := c.readBytes(HeaderBits, int(h.length))
	ks := keystream.Stream(password, salt, headerSize+int(h.length))
	bitstream.XorBytes(body, ks[headerSize:])
	return h.open(body)
}
