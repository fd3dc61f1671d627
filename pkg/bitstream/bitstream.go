// Package bitstream converts between byte slices and MSB-first bit sequences.
//
// A bit is represented as a uint8 holding 0 or 1. Sequences are produced
// lazily with iter.Seq so callers can stop early without materializing the
// whole expansion.
package bitstream

import (
	"errors"
	"fmt"
	"iter"
)

// ErrTruncatedStream is returned when fewer bits are available than a
// reader was asked to consume.
var ErrTruncatedStream = errors.New("bitstream: truncated stream")

// BitsOf returns the bits of data, most significant bit first per byte.
// The sequence is finite and may be ranged over any number of times.
func BitsOf(data []byte) iter.Seq[uint8] {
	return func(yield func(uint8) bool) {
		for _, b := range data {
			for i := 7; i >= 0; i-- {
				if !yield((b >> i) & 1) {
					return
				}
			}
		}
	}
}

// Collect expands data into a slice of len(data)*8 bits.
func Collect(data []byte) []uint8 {
	bits := make([]uint8, 0, len(data)*8)
	for bit := range BitsOf(data) {
		bits = append(bits, bit)
	}
	return bits
}

// BytesOf packs the first n*8 bits of seq into n bytes.
// It fails with ErrTruncatedStream if seq ends early. The result grows as
// bits arrive, so a large n over a short sequence costs nothing.
func BytesOf(seq iter.Seq[uint8], n int) ([]byte, error) {
	out := make([]byte, 0, min(max(n, 0), packChunk))
	if n <= 0 {
		return out, nil
	}

	var (
		cur byte
		got int
	)
	for bit := range seq {
		cur = cur<<1 | bit&1
		got++
		if got%8 != 0 {
			continue
		}
		out = append(out, cur)
		cur = 0
		if len(out) == n {
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: need %d bits, have %d", ErrTruncatedStream, uint64(n)*8, got)
}

// packChunk bounds the up-front allocation of BytesOf.
const packChunk = 4096

// Pack is BytesOf over a bit slice.
func Pack(bits []uint8, n int) ([]byte, error) {
	return BytesOf(Slice(bits), n)
}

// Slice adapts a bit slice to a sequence.
func Slice(bits []uint8) iter.Seq[uint8] {
	return func(yield func(uint8) bool) {
		for _, b := range bits {
			if !yield(b) {
				return
			}
		}
	}
}

// Xor sets dst[i] ^= key[i] for every position both slices share.
func Xor(dst, key []uint8) {
	n := min(len(dst), len(key))
	for i := 0; i < n; i++ {
		dst[i] ^= key[i] & 1
	}
}

// XorBytes sets dst[i] ^= key[i] for every position both slices share.
// XOR-ing bytes is XOR-ing their MSB-first bits.
func XorBytes(dst, key []byte) {
	n := min(len(dst), len(key))
	for i := 0; i < n; i++ {
		dst[i] ^= key[i]
	}
}
