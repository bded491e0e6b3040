package sswave

import "fmt"

// Firmware layout of the stock Shapeshifter image.
const (
	NamesAddress      = 0x0f009b
	NameLength        = 8
	WavetablesAddress = 0x10009b
	WavetableCount    = 128
	WaveformCount     = 8
	WaveformSamples   = 512
	BytesPerSample    = 2
	WaveformLength    = WaveformSamples * BytesPerSample

	// ExportSampleRate is the sample rate attached to exported audio.
	ExportSampleRate = 44100
)

// Layout describes where the name table and the wavetable table live inside
// a firmware image. A Layout is a plain value and holds no image data.
type Layout struct {
	NameBase        int64
	NameLength      int
	WavetableBase   int64
	WavetableCount  int
	WaveformCount   int
	WaveformSamples int
	BytesPerSample  int
}

// Range is a byte range inside a firmware image.
type Range struct {
	Offset int64
	Length int
}

// End returns the offset just past the range.
func (r Range) End() int64 {
	return r.Offset + int64(r.Length)
}

// DefaultLayout returns the layout of the stock firmware.
func DefaultLayout() Layout {
	return Layout{
		NameBase:        NamesAddress,
		NameLength:      NameLength,
		WavetableBase:   WavetablesAddress,
		WavetableCount:  WavetableCount,
		WaveformCount:   WaveformCount,
		WaveformSamples: WaveformSamples,
		BytesPerSample:  BytesPerSample,
	}
}

// WaveformLength returns the size in bytes of one waveform block.
func (l Layout) WaveformLength() int {
	return l.WaveformSamples * l.BytesPerSample
}

// WavetableLength returns the size in bytes of one wavetable.
func (l Layout) WavetableLength() int {
	return l.WaveformCount * l.WaveformLength()
}

// ImageSize returns the minimum length of an image holding the whole
// wavetable table.
func (l Layout) ImageSize() int64 {
	return l.WavetableBase + int64(l.WavetableCount)*int64(l.WavetableLength())
}

// Validate reports whether the layout can be used by a Codec.
func (l Layout) Validate() error {
	switch {
	case l.NameBase < 0 || l.WavetableBase < 0:
		return fmt.Errorf("%w: negative base address", ErrInvalidLayout)
	case l.NameLength <= 0:
		return fmt.Errorf("%w: name length %d", ErrInvalidLayout, l.NameLength)
	case l.WavetableCount <= 0 || l.WaveformCount <= 0 || l.WaveformSamples <= 0:
		return fmt.Errorf("%w: counts must be positive", ErrInvalidLayout)
	case l.BytesPerSample != BytesPerSample:
		return fmt.Errorf("%w: %d bytes per sample, only 16-bit samples are stored", ErrInvalidLayout, l.BytesPerSample)
	}

	nameEnd := l.NameBase + int64(l.WavetableCount*l.NameLength)
	if l.NameBase < l.ImageSize() && l.WavetableBase < nameEnd {
		return fmt.Errorf("%w: name table overlaps wavetable table", ErrInvalidLayout)
	}

	return nil
}

// NameRange returns the byte range of name i.
func (l Layout) NameRange(i int) (Range, error) {
	if i < 0 || i >= l.WavetableCount {
		return Range{}, fmt.Errorf("%w: wavetable %d (want 0-%d)", ErrIndexOutOfRange, i, l.WavetableCount-1)
	}

	return Range{
		Offset: l.NameBase + int64(i*l.NameLength),
		Length: l.NameLength,
	}, nil
}

// WaveformRange returns the byte range of waveform j of wavetable i.
func (l Layout) WaveformRange(i, j int) (Range, error) {
	if i < 0 || i >= l.WavetableCount {
		return Range{}, fmt.Errorf("%w: wavetable %d (want 0-%d)", ErrIndexOutOfRange, i, l.WavetableCount-1)
	}

	if j < 0 || j >= l.WaveformCount {
		return Range{}, fmt.Errorf("%w: waveform %d (want 0-%d)", ErrIndexOutOfRange, j, l.WaveformCount-1)
	}

	return Range{
		Offset: l.WavetableBase + int64(i)*int64(l.WavetableLength()) + int64(j*l.WaveformLength()),
		Length: l.WaveformLength(),
	}, nil
}
