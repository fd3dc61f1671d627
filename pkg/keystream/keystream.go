// Package keystream derives the password-dependent bit mask applied to
// frame bits before they are written into a carrier.
//
// The stream is ChaCha20 keyed through HKDF-SHA256. It scrambles the hidden
// data so that extraction without the right password reads garbage; it is
// not authenticated encryption.
package keystream

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/xob0t/GoStego/pkg/bitstream"
)

const info = "keystream"

// Stream returns the first n keystream bytes for password and salt.
// An empty password yields zeros. A longer stream with the same inputs
// always extends a shorter one.
func Stream(password string, salt []byte, n int) []byte {
	buf := make([]byte, max(n, 0))
	if password == "" || n <= 0 {
		return buf
	}

	c, err := newCipher(password, salt)
	if err != nil {
		// Key and nonce sizes are fixed by this package.
		panic(err)
	}
	c.XORKeyStream(buf, buf)
	return buf
}

// Derive returns exactly nbits keystream bits, the MSB-first expansion of
// Stream.
func Derive(password string, salt []byte, nbits int) []uint8 {
	if nbits <= 0 {
		return []uint8{}
	}
	bits := bitstream.Collect(Stream(password, salt, (nbits+7)/8))
	return bits[:nbits]
}

func newCipher(password string, salt []byte) (*chacha20.Cipher, error) {
	kdf := hkdf.New(sha256.New, []byte(password), salt, []byte(info))

	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return chacha20.NewUnauthenticatedCipher(material[:chacha20.KeySize], material[chacha20.KeySize:])
}
