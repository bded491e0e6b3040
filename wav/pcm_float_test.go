package wav

import "testing"

func TestFloat32ToPCMInt32(t *testing.T) {
	testCases := []struct {
		in       float32
		bitDepth int
		want     int32
	}{
		{0, 16, 0},
		{1, 16, 32767},
		{-1, 16, -32768},
		{2, 16, 32767},
		{0.5, 24, 4194304},
		{-1, 24, -8388608},
		{1, 32, 2147483647},
		{0.5, 8, 0},
	}

	for _, tc := range testCases {
		if got := float32ToPCMInt32(tc.in, tc.bitDepth); got != tc.want {
			t.Fatalf("float32ToPCMInt32(%v, %d) = %d, want %d", tc.in, tc.bitDepth, got, tc.want)
		}
	}
}

func TestNormalizePCMInt(t *testing.T) {
	testCases := []struct {
		in       int
		bitDepth int
		want     float32
	}{
		{255, 8, 1},
		{0, 8, -1},
		{-32768, 16, -1},
		{16384, 16, 0.5},
		{-8388608, 24, -1},
		{1, 12, 0},
	}

	for _, tc := range testCases {
		if got := normalizePCMInt(tc.in, tc.bitDepth); !float32ApproxEqual(got, tc.want, 1e-6) {
			t.Fatalf("normalizePCMInt(%d, %d) = %f, want %f", tc.in, tc.bitDepth, got, tc.want)
		}
	}
}

func TestFloat32ToPCMUint8(t *testing.T) {
	if got := float32ToPCMUint8(-1); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}

	if got := float32ToPCMUint8(1); got != 255 {
		t.Fatalf("expected 255, got %d", got)
	}
}
