package sswave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func naiveReverse(b byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		if b&(1<<i) != 0 {
			out |= 1 << (7 - i)
		}
	}

	return out
}

func TestReverseBitsInvolutive(t *testing.T) {
	for b := 0; b < 256; b++ {
		assert.Equal(t, byte(b), ReverseBits(ReverseBits(byte(b))), "byte 0x%02x", b)
		assert.Equal(t, naiveReverse(byte(b)), ReverseBits(byte(b)), "byte 0x%02x", b)
	}
}

func TestReverseBitsKnownValues(t *testing.T) {
	tests := []struct {
		in, want byte
	}{
		{0x00, 0x00},
		{0x01, 0x80},
		{0x80, 0x01},
		{0x0f, 0xf0},
		{0xa5, 0xa5},
		{0x53, 0xca}, // 'S'
		{0xff, 0xff},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ReverseBits(tt.in), "ReverseBits(0x%02x)", tt.in)
	}
}

func TestReverseBytesInPlace(t *testing.T) {
	buf := []byte{0x01, 0x02, 0x03}
	reverseBytes(buf, buf)
	assert.Equal(t, []byte{0x80, 0x40, 0xc0}, buf)
}
