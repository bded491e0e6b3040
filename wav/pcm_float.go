package wav

import "math"

const (
	maxPCMInt8Unsigned = 255
	scalePCMInt8       = 127.5
	scalePCMInt16      = 32768.0
	scalePCMInt24      = 8388608.0
	scalePCMInt32      = 2147483648.0
	floatPCM8Center    = 127.5
	maxPCMInt16        = 32767
	maxPCMInt24        = 8388607
	maxPCMInt32        = 2147483647
)

func clampFloat32(value, min, max float32) float32 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

func clampFloat64(value, min, max float64) float64 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// normalizePCMInt maps a PCM integer sample of the given storage depth into
// [-1, 1]. 8-bit samples are unsigned.
func normalizePCMInt(sample int, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return float32((float64(sample) - floatPCM8Center) / scalePCMInt8)
	case 16:
		return float32(float64(sample) / scalePCMInt16)
	case 24:
		return float32(float64(sample) / scalePCMInt24)
	case 32:
		return float32(float64(sample) / scalePCMInt32)
	default:
		return 0
	}
}

func float32ToPCMUint8(value float32) uint8 {
	value = clampFloat32(value, -1, 1)

	scaled := int(math.Round(float64((value + 1.0) * scalePCMInt8)))
	if scaled < 0 {
		return 0
	}

	if scaled > maxPCMInt8Unsigned {
		return maxPCMInt8Unsigned
	}

	return uint8(scaled)
}

// float32ToPCMInt32 rounds a normalized sample to the nearest PCM integer of
// the given depth, clamping at the positive end.
func float32ToPCMInt32(value float32, bitDepth int) int32 {
	value = clampFloat32(value, -1, 1)

	var (
		scale float64
		max   int64
	)

	switch bitDepth {
	case 16:
		scale, max = scalePCMInt16, maxPCMInt16
	case 24:
		scale, max = scalePCMInt24, maxPCMInt24
	case 32:
		scale, max = scalePCMInt32, maxPCMInt32
	default:
		return 0
	}

	sample := min(int64(math.Round(float64(value)*scale)), max)
	if sample < int64(-scale) {
		sample = int64(-scale)
	}

	return int32(sample)
}
