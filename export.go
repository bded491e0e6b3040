package sswave

import (
	"fmt"

	"github.com/go-audio/audio"
)

// Artifact is one exported audio buffer.
type Artifact struct {
	// Wavetable is the trimmed name of the source wavetable.
	Wavetable string
	// Index is the position of the source wavetable in the bank.
	Index int
	// Waveform is the waveform index for single-cycle exports, -1 for a
	// whole wavetable.
	Waveform int
	// Loop marks the buffer as a single cycle meant to be looped.
	Loop   bool
	Buffer *audio.IntBuffer
}

// FileStem returns the base file name of the artifact, without extension.
// A wavetable with a blank name is called wavetable-<index>.
func (a Artifact) FileStem() string {
	return a.stem(a.baseName())
}

func (a Artifact) baseName() string {
	if a.Wavetable == "" {
		return fmt.Sprintf("wavetable-%d", a.Index)
	}

	return a.Wavetable
}

func (a Artifact) stem(base string) string {
	if a.Waveform < 0 {
		return base
	}

	return fmt.Sprintf("%s_%d", base, a.Waveform)
}

// FileStems returns the stem of every artifact. When artifacts of different
// wavetables share a name, their stems carry the wavetable index as
// <name>-<index> so that no two files collide.
func FileStems(artifacts []Artifact) []string {
	tables := make(map[string]map[int]bool)
	for _, a := range artifacts {
		base := a.baseName()
		if tables[base] == nil {
			tables[base] = make(map[int]bool)
		}

		tables[base][a.Index] = true
	}

	stems := make([]string, len(artifacts))
	for i, a := range artifacts {
		base := a.baseName()
		if len(tables[base]) > 1 {
			base = fmt.Sprintf("%s-%d", base, a.Index)
		}

		stems[i] = a.stem(base)
	}

	return stems
}

// SampleRate returns the rate attached to the buffer.
func (a Artifact) SampleRate() int {
	if a.Buffer == nil || a.Buffer.Format == nil {
		return 0
	}

	return a.Buffer.Format.SampleRate
}

// ExportWavetable converts a wavetable into audio buffers. With singles
// unset the waveforms are concatenated in index order into one buffer;
// otherwise every waveform becomes its own buffer.
func (c *Codec) ExportWavetable(wt *Wavetable, singles bool) []Artifact {
	name := wt.Name.Key()

	if singles {
		out := make([]Artifact, len(wt.Waveforms))
		for j, w := range wt.Waveforms {
			out[j] = Artifact{
				Wavetable: name,
				Index:     wt.Index,
				Waveform:  j,
				Loop:      true,
				Buffer:    FromNative(w, c.cfg.SampleRate),
			}
		}

		return out
	}

	var total int
	for _, w := range wt.Waveforms {
		total += len(w)
	}

	samples := make([]int16, 0, total)
	for _, w := range wt.Waveforms {
		samples = append(samples, w...)
	}

	return []Artifact{{
		Wavetable: name,
		Index:     wt.Index,
		Waveform:  -1,
		Buffer:    FromNative(samples, c.cfg.SampleRate),
	}}
}

// ExportBank exports the named wavetables, or every wavetable when all is
// set. Names that can't be found are reported and skipped.
func (c *Codec) ExportBank(bank *Bank, names []string, all, singles bool) ([]Artifact, []error) {
	var (
		tables []*Wavetable
		errs   []error
	)

	if all {
		for i := range bank.Wavetables {
			tables = append(tables, &bank.Wavetables[i])
		}
	} else {
		tables, errs = bank.LookupAll(names...)
	}

	for _, err := range errs {
		c.cfg.Logger.Error("skipping wavetable", "err", err)
	}

	var out []Artifact
	for _, wt := range tables {
		out = append(out, c.ExportWavetable(wt, singles)...)
	}

	return out, errs
}
