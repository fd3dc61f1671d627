package keystream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xob0t/GoStego/pkg/bitstream"
)

var salt = []byte("test-salt")

func TestDeriveLength(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 80, 1001} {
		assert.Len(t, Derive("pw", salt, n), n)
		assert.Len(t, Derive("", salt, n), n)
	}
}

func TestDeriveNoPasswordIsIdentity(t *testing.T) {
	for _, b := range Derive("", salt, 256) {
		require.Zero(t, b)
	}
}

func TestDeriveDeterministic(t *testing.T) {
	a := Derive("swordfish", salt, 500)
	b := Derive("swordfish", salt, 500)
	assert.Equal(t, a, b)
}

func TestDerivePrefixStable(t *testing.T) {
	short := Derive("swordfish", salt, 80)
	long := Derive("swordfish", salt, 1000)
	assert.Equal(t, short, long[:80])
}

func TestDeriveDependsOnInputs(t *testing.T) {
	base := Derive("swordfish", salt, 256)
	assert.NotEqual(t, base, Derive("wrong", salt, 256))
	assert.NotEqual(t, base, Derive("swordfish", []byte("other"), 256))
}

func TestDeriveLooksBalanced(t *testing.T) {
	bits := Derive("swordfish", salt, 8192)
	ones := 0
	for _, b := range bits {
		require.LessOrEqual(t, b, uint8(1))
		ones += int(b)
	}
	assert.InDelta(t, 4096, ones, 400)
}

func TestStreamExpandsToDerive(t *testing.T) {
	for _, pw := range []string{"", "swordfish"} {
		stream := Stream(pw, salt, 13)
		require.Len(t, stream, 13)
		assert.Equal(t, Derive(pw, salt, 100), bitstream.Collect(stream)[:100])
	}
	assert.Empty(t, Stream("swordfish", salt, 0))
	assert.Equal(t, Stream("swordfish", salt, 10), Stream("swordfish", salt, 64)[:10])
}
