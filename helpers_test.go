package sswave

import (
	"fmt"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/require"
)

// smallLayout keeps synthesized images small.
var smallLayout = Layout{
	NameBase:        0x10,
	NameLength:      NameLength,
	WavetableBase:   0x200,
	WavetableCount:  4,
	WaveformCount:   WaveformCount,
	WaveformSamples: WaveformSamples,
	BytesPerSample:  BytesPerSample,
}

func testSample(i, j, k int) int16 {
	return int16((i*WaveformCount+j)*977 + k*131 - 20000)
}

// buildImage writes names "WT<i>" and deterministic waveforms into an image
// of exactly layout.ImageSize() bytes, filling the gaps with 0x5a.
func buildImage(t *testing.T, layout Layout) MemImage {
	t.Helper()

	img := make(MemImage, layout.ImageSize())
	for i := range img {
		img[i] = 0x5a
	}

	for i := 0; i < layout.WavetableCount; i++ {
		r, err := layout.NameRange(i)
		require.NoError(t, err)

		name := fmt.Sprintf("%-*s", layout.NameLength, fmt.Sprintf("WT%d", i))
		for k := 0; k < layout.NameLength; k++ {
			img[r.Offset+int64(k)] = ReverseBits(name[k])
		}

		for j := 0; j < layout.WaveformCount; j++ {
			r, err := layout.WaveformRange(i, j)
			require.NoError(t, err)

			for k := 0; k < layout.WaveformSamples; k++ {
				s := uint16(testSample(i, j, k))
				img[r.Offset+int64(2*k)] = ReverseBits(byte(s))
				img[r.Offset+int64(2*k+1)] = ReverseBits(byte(s >> 8))
			}
		}
	}

	return img
}

func newTestCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	codec, err := New(append([]Option{WithLayout(smallLayout)}, opts...)...)
	require.NoError(t, err)

	return codec
}

func pcm16Buffer(source string, channels int, samples []int) SampleBuffer {
	return SampleBuffer{
		Source:  source,
		Subtype: SubtypePCM16,
		Audio: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: ExportSampleRate},
			Data:           samples,
			SourceBitDepth: 16,
		},
	}
}

func ramp(n, offset int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = (i*64 + offset) % 65536
		if out[i] > 32767 {
			out[i] -= 65536
		}
	}

	return out
}
