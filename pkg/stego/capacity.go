package stego

// CapacityBits is the number of payload bits c can carry: one per colour
// channel, alpha excluded.
func CapacityBits(c *Carrier) int {
	return c.Width * c.Height * SlotsPerPixel
}

// Fits reports whether a frame of frameBits bits fits in c.
func Fits(c *Carrier, frameBits int) bool {
	return frameBits >= 0 && frameBits <= CapacityBits(c)
}

// MaxPayloadBytes is the largest uncompressed payload Embed accepts for c.
func MaxPayloadBytes(c *Carrier) int {
	n := (CapacityBits(c) - HeaderBits) / 8
	return max(n, 0)
}
