package audiofile

import (
	"fmt"

	"github.com/cwbudde/sswave"
)

// Info describes an audio file and whether it can be imported as one
// waveform.
type Info struct {
	Path       string
	Container  Container
	Channels   int
	SampleRate int
	Subtype    sswave.Subtype
	Frames     int
	// DataBytes estimates the sample data size, 0 for unknown subtypes.
	DataBytes int
	// Importable is set when the file converts to exactly one waveform.
	Importable bool
	// Reason explains why the file is not importable.
	Reason string
}

// Inspect loads path and checks it against the import rules.
func Inspect(path string) (Info, error) {
	container, err := ContainerOf(path)
	if err != nil {
		return Info{}, err
	}

	buf, err := Load(path)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Path:      path,
		Container: container,
		Channels:  buf.NumChannels(),
		Subtype:   buf.Subtype,
	}

	if format := buf.Audio.PCMFormat(); format != nil {
		info.SampleRate = format.SampleRate
	}

	info.Frames = buf.Audio.NumFrames()
	info.DataBytes = int(float64(2*info.Frames*info.Channels) * buf.Subtype.ByteFactor())

	w, err := sswave.ToNative(buf)
	switch {
	case err != nil:
		info.Reason = err.Error()
	case len(w) != sswave.WaveformSamples:
		info.Reason = fmt.Sprintf("%d samples, want %d", len(w), sswave.WaveformSamples)
	default:
		info.Importable = true
	}

	return info, nil
}
