package stego

import "errors"

// Errors returned by Embed and Extract. Callers branch with errors.Is; the
// wrapped message may carry sizes but never pixel or keystream data.
var (
	// ErrPayloadTooLarge means the framed payload needs more bits than the
	// carrier offers. The carrier is left untouched.
	ErrPayloadTooLarge = errors.New("stego: payload too large for carrier")

	// ErrInsufficientCapacity means the carrier cannot hold the header, or
	// the length the header declares.
	ErrInsufficientCapacity = errors.New("stego: insufficient carrier capacity")

	// ErrCorruptFrame covers a wrong password, a damaged image and an image
	// with nothing hidden in it. The three are reported identically.
	ErrCorruptFrame = errors.New("stego: corrupt frame")

	// ErrChecksumMismatch means the body was altered after embedding.
	ErrChecksumMismatch = errors.New("stego: checksum mismatch")

	// ErrEncoding means the payload cannot be framed.
	ErrEncoding = errors.New("stego: encoding failed")

	// ErrInvalidCarrier means the carrier's dimensions and pixel buffer disagree.
	ErrInvalidCarrier = errors.New("stego: invalid carrier")
)
