package stego

import (
	"bytes"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/GoStego/pkg/bitstream"
	"github.com/xob0t/GoStego/pkg/keystream"
)

func makeCarrier(t testing.TB, w, h, channels int) *Carrier {
	t.Helper()
	c, err := NewCarrier(w, h, channels)
	require.NoError(t, err)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := []byte{
				uint8((x * 17) ^ (y * 31)),
				uint8((x * 43) + (y * 13)),
				uint8((x * 7) ^ (y * 11)),
				uint8(128 + x%64),
			}
			copy(c.Pix[i:i+channels], px)
			i += channels
		}
	}
	return c
}

func noiseCarrier(t testing.TB, w, h int, seed uint64) *Carrier {
	t.Helper()
	c, err := NewCarrier(w, h, 3)
	require.NoError(t, err)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	for i := range c.Pix {
		c.Pix[i] = uint8(r.Uint32())
	}
	return c
}

func requireSamePayload(t *testing.T, want, got []byte) {
	t.Helper()
	require.True(t, bytes.Equal(want, got), "payload mismatch: want %q, got %q", want, got)
}

func TestRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"nil":    nil,
		"empty":  {},
		"hi":     []byte("hi"),
		"text":   []byte("Hello world!"),
		"binary": {0x00, 0xff, 0x80, 0x01, 0x7f},
		"repeat": bytes.Repeat([]byte("a"), 4096),
	}
	passwords := []string{"", "swordfish", "пароль"}

	for _, channels := range []int{3, 4} {
		src := makeCarrier(t, 200, 100, channels)
		for name, payload := range payloads {
			for _, pw := range passwords {
				for _, compress := range []bool{false, true} {
					out, err := EmbedWithOptions(src, payload, pw, Options{Compress: compress})
					require.NoError(t, err, "%s/%q/compress=%v", name, pw, compress)

					got, err := Extract(out, pw)
					require.NoError(t, err, "%s/%q/compress=%v", name, pw, compress)
					requireSamePayload(t, payload, got)
				}
			}
		}
	}
}

func TestTenByTenScenario(t *testing.T) {
	src := makeCarrier(t, 10, 10, 3)
	require.Equal(t, 300, CapacityBits(src))
	require.Equal(t, 96, FrameBits(2))

	out, err := Embed(src, []byte("hi"), "swordfish")
	require.NoError(t, err)
	require.Equal(t, src.Width, out.Width)
	require.Equal(t, src.Height, out.Height)

	for i := range src.Pix {
		require.LessOrEqual(t, src.Pix[i]^out.Pix[i], uint8(1), "byte %d differs beyond the LSB", i)
	}

	got, err := Extract(out, "swordfish")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)

	_, err = Extract(out, "wrong")
	assert.ErrorIs(t, err, ErrCorruptFrame)
}

func TestWrongPassword(t *testing.T) {
	src := makeCarrier(t, 64, 64, 3)
	out, err := Embed(src, []byte("top secret"), "correct horse")
	require.NoError(t, err)

	for _, pw := range []string{"battery staple", "Correct horse", "correct horse "} {
		_, err := Extract(out, pw)
		assert.ErrorIs(t, err, ErrCorruptFrame, "password %q", pw)
	}
}

func TestMissingPasswordOnProtectedImage(t *testing.T) {
	out, err := Embed(makeCarrier(t, 64, 64, 3), []byte("top secret"), "swordfish")
	require.NoError(t, err)

	_, err = Extract(out, "")
	assert.ErrorIs(t, err, ErrCorruptFrame)
}

func TestCapacityBoundary(t *testing.T) {
	// 32 pixels * 3 slots = 96 bits, exactly a 2-byte frame.
	exact := makeCarrier(t, 32, 1, 3)
	require.Equal(t, FrameBits(2), CapacityBits(exact))
	require.Equal(t, 2, MaxPayloadBytes(exact))

	out, err := Embed(exact, []byte("ok"), "pw")
	require.NoError(t, err)
	got, err := Extract(out, "pw")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)

	_, err = Embed(exact, []byte("ok!"), "pw")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)

	short := makeCarrier(t, 31, 1, 3)
	before := short.Clone()
	_, err = Embed(short, []byte("ok"), "pw")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Equal(t, before.Pix, short.Pix)
}

func TestEmptyPayloadHeaderOnly(t *testing.T) {
	// 27 pixels = 81 bits, one more than the header.
	c := makeCarrier(t, 27, 1, 3)
	out, err := Embed(c, nil, "swordfish")
	require.NoError(t, err)

	got, err := Extract(out, "swordfish")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEmbedWritesMaskedFrameBits(t *testing.T) {
	src := makeCarrier(t, 24, 24, 4)
	payload := []byte("layout check")
	out, err := Embed(src, payload, "swordfish")
	require.NoError(t, err)

	f, err := NewFrame(payload)
	require.NoError(t, err)
	want := f.Bits()
	bitstream.Xor(want, keystream.Derive("swordfish", salt, len(want)))

	for slot, bit := range want {
		require.Equal(t, bit, out.Pix[out.offset(slot)]&1, "slot %d", slot)
	}
}

func TestTamperDetection(t *testing.T) {
	payload := []byte("the quick brown fox")
	out, err := Embed(makeCarrier(t, 30, 30, 3), payload, "swordfish")
	require.NoError(t, err)

	total := FrameBits(len(payload))
	for slot := HeaderBits; slot < total; slot++ {
		tampered := out.Clone()
		tampered.Pix[tampered.offset(slot)] ^= 1

		_, err := Extract(tampered, "swordfish")
		require.ErrorIs(t, err, ErrChecksumMismatch, "slot %d", slot)
	}
}

func TestBitsPastFrameUntouched(t *testing.T) {
	src := makeCarrier(t, 20, 20, 3)
	out, err := Embed(src, []byte("hi"), "")
	require.NoError(t, err)

	for slot := FrameBits(2); slot < CapacityBits(src); slot++ {
		o := src.offset(slot)
		require.Equal(t, src.Pix[o], out.Pix[o], "slot %d", slot)
	}
}

func TestNoPayload(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3} {
		_, err := Extract(noiseCarrier(t, 50, 50, seed), "")
		assert.ErrorIs(t, err, ErrCorruptFrame, "seed %d", seed)
	}
	_, err := Extract(makeCarrier(t, 50, 50, 3), "swordfish")
	assert.ErrorIs(t, err, ErrCorruptFrame)
}

func TestDeterminism(t *testing.T) {
	src := makeCarrier(t, 40, 40, 4)
	a, err := Embed(src, []byte("same input"), "swordfish")
	require.NoError(t, err)
	b, err := Embed(src, []byte("same input"), "swordfish")
	require.NoError(t, err)
	assert.Equal(t, a.Pix, b.Pix)

	p1, err := Extract(a, "swordfish")
	require.NoError(t, err)
	p2, err := Extract(a, "swordfish")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
}

func TestAlphaPreserved(t *testing.T) {
	src := makeCarrier(t, 16, 16, 4)
	out, err := Embed(src, bytes.Repeat([]byte{0x5a}, 50), "swordfish")
	require.NoError(t, err)

	for i := 3; i < len(src.Pix); i += 4 {
		require.Equal(t, src.Pix[i], out.Pix[i], "alpha byte %d", i)
	}
}

func TestExtractTooSmallForHeader(t *testing.T) {
	// 5x5x3 = 75 bits < 80.
	c := makeCarrier(t, 5, 5, 3)
	_, err := Extract(c, "")
	assert.ErrorIs(t, err, ErrInsufficientCapacity)

	_, err = Embed(c, nil, "")
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestExtractDeclaredLengthBeyondCapacity(t *testing.T) {
	src := makeCarrier(t, 100, 100, 3)
	out, err := Embed(src, bytes.Repeat([]byte{7}, 2000), "swordfish")
	require.NoError(t, err)

	// Keep the top ten rows: the header survives, the body does not fit.
	cropped := &Carrier{Width: 100, Height: 10, Channels: 3, Pix: out.Pix[:100*10*3]}
	_, err = Extract(cropped, "swordfish")
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
}

func TestConcurrentUse(t *testing.T) {
	src := makeCarrier(t, 64, 64, 3)
	orig := src.Clone()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := []byte{byte(i), byte(i * 3), byte(i * 7)}
			out, err := Embed(src, payload, "swordfish")
			if err != nil {
				errs <- err
				return
			}
			got, err := Extract(out, "swordfish")
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(payload, got) {
				errs <- assert.AnError
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Equal(t, orig.Pix, src.Pix)
}

func TestInvalidCarrier(t *testing.T) {
	_, err := Embed(nil, []byte("x"), "")
	assert.ErrorIs(t, err, ErrInvalidCarrier)

	_, err = Extract(&Carrier{Width: 4, Height: 4, Channels: 3, Pix: make([]byte, 10)}, "")
	assert.ErrorIs(t, err, ErrInvalidCarrier)

	_, err = NewCarrier(4, 4, 2)
	assert.ErrorIs(t, err, ErrInvalidCarrier)
}
