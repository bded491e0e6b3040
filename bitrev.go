package sswave

import "math/bits"

// reverseTable maps every byte to its bit-reversed value.
var reverseTable = func() [256]byte {
	var t [256]byte
	for i := range t {
		t[i] = bits.Reverse8(uint8(i))
	}

	return t
}()

// ReverseBits returns b with its bit order reversed (bit 0 becomes bit 7).
// Applying it twice returns the original byte.
func ReverseBits(b byte) byte {
	return reverseTable[b]
}

// reverseBytes writes the bit-reversed value of every byte of src into dst.
// dst and src may be the same slice.
func reverseBytes(dst, src []byte) {
	for i, b := range src {
		dst[i] = reverseTable[b]
	}
}
