package sswave

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Waveform is one cycle of signed 16-bit samples.
type Waveform []int16

// Clone returns a copy of the waveform.
func (w Waveform) Clone() Waveform {
	return append(Waveform(nil), w...)
}

// DecodeWaveform reads waveform j of wavetable i from the image.
func (c *Codec) DecodeWaveform(img io.ReaderAt, i, j int) (Waveform, error) {
	r, err := c.cfg.Layout.WaveformRange(i, j)
	if err != nil {
		return nil, err
	}

	raw, err := readRange(img, r)
	if err != nil {
		return nil, fmt.Errorf("wavetable %d waveform %d: %w", i, j, err)
	}

	reverseBytes(raw, raw)

	return decodeSamples(raw), nil
}

// EncodeWaveform writes w as waveform j of wavetable i. Only the bytes of
// that waveform block are modified.
func (c *Codec) EncodeWaveform(img Image, i, j int, w Waveform) error {
	r, err := c.cfg.Layout.WaveformRange(i, j)
	if err != nil {
		return err
	}

	if len(w) != c.cfg.Layout.WaveformSamples {
		return fmt.Errorf("%w: %d samples, want %d", ErrInvalidSampleCount, len(w), c.cfg.Layout.WaveformSamples)
	}

	raw := encodeSamples(w)
	reverseBytes(raw, raw)

	if err := writeRange(img, r, raw); err != nil {
		return fmt.Errorf("wavetable %d waveform %d: %w", i, j, err)
	}

	return nil
}

func decodeSamples(raw []byte) Waveform {
	w := make(Waveform, len(raw)/BytesPerSample)
	for k := range w {
		w[k] = int16(binary.LittleEndian.Uint16(raw[k*BytesPerSample:]))
	}

	return w
}

func encodeSamples(w Waveform) []byte {
	raw := make([]byte, len(w)*BytesPerSample)
	for k, s := range w {
		binary.LittleEndian.PutUint16(raw[k*BytesPerSample:], uint16(s))
	}

	return raw
}
