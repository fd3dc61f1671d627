package stego

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/xob0t/GoStego/pkg/bitstream"
)

// Frame layout, most significant bit first:
//
//	magic    16 bits  "SG" plain body, "SZ" zstd-compressed body
//	length   32 bits  big-endian body length in bytes
//	checksum 32 bits  big-endian CRC-32 (IEEE) of body
//	body     length*8 bits
const (
	magicSize    = 2
	headerSize   = magicSize + 4 + 4
	HeaderBits   = headerSize * 8
	maxBodyBytes = math.MaxUint32
)

// MaxDecompressedSize caps the output of a compressed frame.
const MaxDecompressedSize = 64 << 20

var (
	magicPlain = [magicSize]byte{'S', 'G'}
	magicZstd  = [magicSize]byte{'S', 'Z'}
)

// Frame wraps a payload with the fields extraction needs to find its end
// and detect damage.
type Frame struct {
	Magic    [magicSize]byte
	Length   uint32
	Checksum uint32
	Body     []byte
}

// NewFrame frames payload as a plain body.
func NewFrame(payload []byte) (Frame, error) {
	return newFrame(magicPlain, payload)
}

// newCompressedFrame frames payload as zstd when that makes it smaller.
// Payloads above MaxDecompressedSize stay plain: extraction would refuse to
// inflate them.
func newCompressedFrame(payload []byte) (Frame, error) {
	if len(payload) > MaxDecompressedSize {
		return NewFrame(payload)
	}
	enc, err := encoder()
	if err != nil {
		return Frame{}, fmt.Errorf("%w: zstd: %v", ErrEncoding, err)
	}
	packed := enc.EncodeAll(payload, nil)
	if len(packed) >= len(payload) {
		return NewFrame(payload)
	}
	return newFrame(magicZstd, packed)
}

func newFrame(magic [magicSize]byte, body []byte) (Frame, error) {
	if uint64(len(body)) > maxBodyBytes {
		return Frame{}, fmt.Errorf("%w: body of %d bytes exceeds length field", ErrEncoding, len(body))
	}
	return Frame{
		Magic:    magic,
		Length:   uint32(len(body)),
		Checksum: crc32.ChecksumIEEE(body),
		Body:     body,
	}, nil
}

// FrameBits is the serialized size of a frame with an n-byte body.
func FrameBits(n int) int {
	return HeaderBits + n*8
}

// Bytes serializes the frame.
func (f Frame) Bytes() []byte {
	out := make([]byte, headerSize, headerSize+len(f.Body))
	copy(out, f.Magic[:])
	binary.BigEndian.PutUint32(out[magicSize:], f.Length)
	binary.BigEndian.PutUint32(out[magicSize+4:], f.Checksum)
	return append(out, f.Body...)
}

// Bits serializes the frame as a bit slice.
func (f Frame) Bits() []uint8 {
	return bitstream.Collect(f.Bytes())
}

type header struct {
	magic    [magicSize]byte
	length   uint32
	checksum uint32
}

// readHeader decodes the header from the front of bits.
func readHeader(bits []uint8) (header, error) {
	if len(bits) < HeaderBits {
		return header{}, fmt.Errorf("%w: %v", ErrCorruptFrame, bitstream.ErrTruncatedStream)
	}
	raw, err := bitstream.Pack(bits[:HeaderBits], headerSize)
	if err != nil {
		return header{}, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	return parseHeader(raw)
}

// parseHeader decodes a serialized header. The magic is checked before
// anything else is read.
func parseHeader(raw []byte) (header, error) {
	var h header
	if len(raw) < headerSize {
		return h, fmt.Errorf("%w: %v", ErrCorruptFrame, bitstream.ErrTruncatedStream)
	}
	copy(h.magic[:], raw[:magicSize])
	if h.magic != magicPlain && h.magic != magicZstd {
		return h, ErrCorruptFrame
	}
	h.length = binary.BigEndian.Uint32(raw[magicSize:])
	h.checksum = binary.BigEndian.Uint32(raw[magicSize+4:])
	return h, nil
}

// bodyBits is the number of bits the body declared by h occupies.
func (h header) bodyBits() uint64 {
	return uint64(h.length) * 8
}

// Unframe decodes a serialized frame and returns its payload. The declared
// length is checked against the bits on hand before the body is read.
func Unframe(bits []uint8) ([]byte, error) {
	h, err := readHeader(bits)
	if err != nil {
		return nil, err
	}

	have := uint64(len(bits) - HeaderBits)
	if have < h.bodyBits() {
		return nil, fmt.Errorf("%w: %w: need %d bits, have %d", ErrCorruptFrame, bitstream.ErrTruncatedStream, h.bodyBits(), have)
	}

	body, err := bitstream.Pack(bits[HeaderBits:], int(h.length))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	return h.open(body)
}

// open verifies body against the header and undoes compression.
func (h header) open(body []byte) ([]byte, error) {
	if crc32.ChecksumIEEE(body) != h.checksum {
		return nil, ErrChecksumMismatch
	}
	if h.magic != magicZstd {
		return body, nil
	}

	dec, err := decoder()
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	out, err := dec.DecodeAll(body, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrCorruptFrame, err)
	}
	return out, nil
}

// Encoder and decoder are safe for concurrent EncodeAll/DecodeAll.
var (
	encoder = sync.OnceValues(func() (*zstd.Encoder, error) {
		return zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		)
	})
	decoder = sync.OnceValues(func() (*zstd.Decoder, error) {
		return zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(0),
			zstd.WithDecoderMaxMemory(MaxDecompressedSize),
		)
	})
)
