// Package audiofile moves sswave buffers in and out of WAV and AIFF files.
package audiofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"

	"github.com/cwbudde/sswave"
	"github.com/cwbudde/sswave/wav"
)

// Software is written to the INFO chunk of exported WAV files.
const Software = "sswave"

var (
	// ErrUnsupportedContainer is returned for file extensions other than
	// .wav, .aif and .aiff.
	ErrUnsupportedContainer = errors.New("unsupported audio container")
	// ErrInvalidFile is returned when a file can't be parsed as its
	// container.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Container is an audio file format.
type Container int

const (
	WAV Container = iota + 1
	AIFF
)

func (c Container) String() string {
	switch c {
	case WAV:
		return "wav"
	case AIFF:
		return "aiff"
	default:
		return "unknown"
	}
}

// Ext returns the file extension used for the container, with the dot.
func (c Container) Ext() string {
	switch c {
	case AIFF:
		return ".aif"
	default:
		return ".wav"
	}
}

// ParseContainer maps a format name such as "wav" or "aiff" to a Container.
func ParseContainer(name string) (Container, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "wav", "wave":
		return WAV, nil
	case "aif", "aiff":
		return AIFF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedContainer, name)
	}
}

// ContainerOf returns the container of path from its extension.
func ContainerOf(path string) (Container, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnsupportedContainer, path)
	}

	return ParseContainer(ext)
}

// Load reads an audio file into a SampleBuffer. Integer content is kept at
// its stored bit depth, float content is normalized. WAV files in any other
// encoding load without samples as SubtypeUnknown.
func Load(path string) (sswave.SampleBuffer, error) {
	container, err := ContainerOf(path)
	if err != nil {
		return sswave.SampleBuffer{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return sswave.SampleBuffer{}, err
	}
	defer f.Close()

	switch container {
	case AIFF:
		return loadAIFF(path, f)
	default:
		return loadWAV(path, f)
	}
}

func loadWAV(path string, f *os.File) (sswave.SampleBuffer, error) {
	dec := wav.NewDecoder(f)

	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return sswave.SampleBuffer{}, fmt.Errorf("%w: %s: %w", ErrInvalidFile, path, err)
	}

	format := dec.FormatChunk()
	if format == nil {
		return sswave.SampleBuffer{}, fmt.Errorf("%w: %s: no fmt chunk", ErrInvalidFile, path)
	}

	switch format.EffectiveFormatTag() {
	case wav.FormatPCM, wav.FormatIEEEFloat:
	default:
		// compressed encodings are tagged unknown so an import can reject
		// them per file
		return sswave.SampleBuffer{
			Source:  path,
			Subtype: sswave.SubtypeUnknown,
			Audio: &audio.IntBuffer{
				Format:         &audio.Format{NumChannels: int(format.NumChannels), SampleRate: int(format.SampleRate)},
				SourceBitDepth: int(format.BitsPerSample),
			},
		}, nil
	}

	if !dec.IsValidFile() {
		return sswave.SampleBuffer{}, fmt.Errorf("%w: %s: %d channels at %d bits, no playable samples",
			ErrInvalidFile, path, dec.NumChans, dec.BitDepth)
	}

	out := sswave.SampleBuffer{
		Source:  path,
		Subtype: wavSubtype(dec),
	}

	if dec.IsFloat() {
		buf, err := dec.FullPCMBuffer()
		if err != nil {
			return sswave.SampleBuffer{}, fmt.Errorf("%s: %w", path, err)
		}

		out.Audio = buf

		return out, nil
	}

	buf, err := dec.FullIntBuffer()
	if err != nil {
		return sswave.SampleBuffer{}, fmt.Errorf("%s: %w", path, err)
	}

	out.Audio = buf

	return out, nil
}

func wavSubtype(dec *wav.Decoder) sswave.Subtype {
	if dec.IsFloat() {
		if dec.BitDepth == 32 {
			return sswave.SubtypeFloat
		}

		return sswave.SubtypeUnknown
	}

	return intSubtype(int(dec.BitDepth))
}

func intSubtype(bitDepth int) sswave.Subtype {
	switch bitDepth {
	case 16:
		return sswave.SubtypePCM16
	case 24:
		return sswave.SubtypePCM24
	default:
		return sswave.SubtypeUnknown
	}
}

func loadAIFF(path string, f *os.File) (sswave.SampleBuffer, error) {
	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return sswave.SampleBuffer{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return sswave.SampleBuffer{}, fmt.Errorf("%s: %w", path, err)
	}

	buf.SourceBitDepth = int(dec.BitDepth)
	if buf.Format == nil {
		buf.Format = &audio.Format{NumChannels: int(dec.NumChans), SampleRate: int(dec.SampleRate)}
	}

	return sswave.SampleBuffer{
		Source:  path,
		Subtype: intSubtype(int(dec.BitDepth)),
		Audio:   buf,
	}, nil
}

// Save writes an artifact as 16-bit PCM in the container picked by the
// extension of path. WAV files carry the wavetable name as their INFO
// title, and a forward loop over the whole buffer when the artifact is a
// single cycle.
func Save(path string, a sswave.Artifact) error {
	container, err := ContainerOf(path)
	if err != nil {
		return err
	}

	if a.Buffer == nil {
		return fmt.Errorf("%s: no audio to save", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch container {
	case AIFF:
		err = saveAIFF(f, a)
	default:
		err = saveWAV(f, a)
	}

	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}

func saveWAV(f *os.File, a sswave.Artifact) error {
	enc := wav.NewEncoder(f, a.SampleRate(), 16, 1, wav.FormatPCM)
	enc.Metadata = &wav.Metadata{
		Title:    a.Wavetable,
		Software: Software,
	}

	if a.Loop {
		enc.Metadata.SamplerInfo = wav.ForwardLoop(a.Buffer.NumFrames(), a.SampleRate())
	}

	if err := enc.WriteInt(a.Buffer); err != nil {
		return err
	}

	return enc.Close()
}

func saveAIFF(f *os.File, a sswave.Artifact) error {
	enc := aiff.NewEncoder(f, a.SampleRate(), 16, 1)

	if err := enc.Write(a.Buffer); err != nil {
		return err
	}

	return enc.Close()
}
