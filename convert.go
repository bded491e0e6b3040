package sswave

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// Subtype tags the sample encoding of an external audio buffer.
type Subtype int

const (
	SubtypeUnknown Subtype = iota
	SubtypePCM16
	SubtypePCM24
	SubtypeFloat
)

const (
	scalePCM16 = 32768.0
	maxPCM16   = math.MaxInt16
	minPCM16   = math.MinInt16
)

func (s Subtype) String() string {
	switch s {
	case SubtypePCM16:
		return "PCM_16"
	case SubtypePCM24:
		return "PCM_24"
	case SubtypeFloat:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// ByteFactor is the storage size of one sample relative to 16-bit PCM.
// It only serves container byte-count estimates, samples are never rescaled
// by it.
func (s Subtype) ByteFactor() float64 {
	switch s {
	case SubtypePCM16:
		return 1
	case SubtypePCM24:
		return 1.5
	case SubtypeFloat:
		return 2
	default:
		return 0
	}
}

// SampleBuffer is audio supplied by a container reader.
// Audio is an *audio.IntBuffer for the PCM subtypes and an
// *audio.Float32Buffer for SubtypeFloat.
type SampleBuffer struct {
	// Source identifies the buffer in diagnostics, usually a file path.
	Source  string
	Subtype Subtype
	Audio   audio.Buffer
}

// NumChannels returns the channel count of the buffer, 0 if unknown.
func (b SampleBuffer) NumChannels() int {
	if b.Audio == nil || b.Audio.PCMFormat() == nil {
		return 0
	}

	return b.Audio.PCMFormat().NumChannels
}

// ToNative converts a mono buffer into the codec's signed 16-bit domain.
// The result is not length checked.
func ToNative(buf SampleBuffer) (Waveform, error) {
	if ch := buf.NumChannels(); ch != 1 {
		return nil, fmt.Errorf("%w: %s has %d channels, only mono is supported", ErrUnsupportedChannelLayout, buf.Source, ch)
	}

	switch buf.Subtype {
	case SubtypePCM16, SubtypePCM24:
		ints, ok := buf.Audio.(*audio.IntBuffer)
		if !ok {
			return nil, fmt.Errorf("%w: %s is tagged %s but holds %T", ErrUnsupportedSampleSubtype, buf.Source, buf.Subtype, buf.Audio)
		}

		shift := 0
		if buf.Subtype == SubtypePCM24 {
			shift = 8
		}

		w := make(Waveform, len(ints.Data))
		for i, v := range ints.Data {
			w[i] = clampPCM16(int64(v >> shift))
		}

		return w, nil
	case SubtypeFloat:
		floats, ok := buf.Audio.(*audio.Float32Buffer)
		if !ok {
			return nil, fmt.Errorf("%w: %s is tagged %s but holds %T", ErrUnsupportedSampleSubtype, buf.Source, buf.Subtype, buf.Audio)
		}

		w := make(Waveform, len(floats.Data))
		for i, v := range floats.Data {
			w[i] = FloatToPCM16(v)
		}

		return w, nil
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedSampleSubtype, buf.Source, buf.Subtype)
	}
}

// FloatToPCM16 scales a [-1, 1] sample by 2^15, truncates toward zero and
// clamps to the int16 range. 1.0 maps to 32767.
func FloatToPCM16(v float32) int16 {
	if math.IsNaN(float64(v)) {
		return 0
	}

	scaled := float64(v) * scalePCM16
	if scaled >= maxPCM16 {
		return maxPCM16
	}

	if scaled <= minPCM16 {
		return minPCM16
	}

	return int16(scaled)
}

func clampPCM16(v int64) int16 {
	if v > maxPCM16 {
		return maxPCM16
	}

	if v < minPCM16 {
		return minPCM16
	}

	return int16(v)
}

// FromNative wraps samples in a mono 16-bit buffer at the given rate.
func FromNative(w []int16, sampleRate int) *audio.IntBuffer {
	data := make([]int, len(w))
	for i, s := range w {
		data[i] = int(s)
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
}
