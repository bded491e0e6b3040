package sswave

import (
	"errors"
	"fmt"
)

// ImportTarget selects the wavetable and slots an import writes to.
type ImportTarget struct {
	// Index of the target wavetable, used when Name is empty.
	Index int
	// Name selects the target wavetable by trimmed name.
	Name string
	// StartSlot is the waveform slot the first file is written to.
	StartSlot int
	// Rename, when set, replaces the name of the target wavetable.
	Rename string
}

// Rejection is a file that was skipped by an import.
type Rejection struct {
	Source string
	Err    error
}

func (r Rejection) Error() string {
	return r.Err.Error()
}

func (r Rejection) Unwrap() error {
	return r.Err
}

// ImportReport describes what an import wrote.
type ImportReport struct {
	// Wavetable is the index of the target wavetable.
	Wavetable int
	// Slots lists the waveform slots that were written.
	Slots []int
	// Renamed is set when the name slot was rewritten.
	Renamed bool
	// Rejected lists files skipped because of their channel layout or
	// sample subtype.
	Rejected []Rejection
}

type stagedWaveform struct {
	slot     int
	waveform Waveform
}

// ImportWaveforms writes one to WaveformCount mono buffers into consecutive
// waveform slots of the target wavetable: file k goes to slot
// target.StartSlot+k. Files with an unsupported channel layout or subtype
// are reported and their slot is left untouched. A buffer that does not
// hold exactly one waveform aborts the import before anything is written.
//
// Only the selected waveform blocks, and the name slot when renaming, are
// modified, and nothing is written unless all of them lie inside img.
// When bank is not nil it is used to resolve target.Name and is updated
// with the written data; otherwise names are read from img.
//
// Concurrent imports into the same image must be serialized by the caller.
func (c *Codec) ImportWaveforms(img Image, bank *Bank, target ImportTarget, files []SampleBuffer) (*ImportReport, error) {
	layout := c.cfg.Layout

	if len(files) == 0 || len(files) > layout.WaveformCount {
		return nil, fmt.Errorf("%w: %d files, want 1-%d", ErrInvalidImportCount, len(files), layout.WaveformCount)
	}

	if target.StartSlot < 0 || target.StartSlot+len(files) > layout.WaveformCount {
		return nil, fmt.Errorf("%w: %d files from slot %d exceed %d slots", ErrIndexOutOfRange, len(files), target.StartSlot, layout.WaveformCount)
	}

	index, err := c.resolveTarget(img, bank, target)
	if err != nil {
		return nil, err
	}

	var rename Name
	if target.Rename != "" {
		rename, err = ParseName(target.Rename, layout.NameLength)
		if err != nil {
			return nil, err
		}
	}

	report := &ImportReport{Wavetable: index}

	staged := make([]stagedWaveform, 0, len(files))
	for k, file := range files {
		w, err := ToNative(file)
		if err != nil {
			if errors.Is(err, ErrUnsupportedChannelLayout) || errors.Is(err, ErrUnsupportedSampleSubtype) {
				c.cfg.Logger.Error("skipping import file", "source", file.Source, "err", err)
				report.Rejected = append(report.Rejected, Rejection{Source: file.Source, Err: err})

				continue
			}

			return nil, err
		}

		if len(w) != layout.WaveformSamples {
			return nil, fmt.Errorf("%w: %s has %d samples, want %d", ErrInvalidSampleCount, file.Source, len(w), layout.WaveformSamples)
		}

		staged = append(staged, stagedWaveform{slot: target.StartSlot + k, waveform: w})
	}

	if len(staged) == 0 {
		errs := make([]error, len(report.Rejected))
		for i := range report.Rejected {
			errs[i] = report.Rejected[i]
		}

		return report, errors.Join(errs...)
	}

	if err := c.checkImportRanges(img, index, staged, rename != nil); err != nil {
		return report, err
	}

	for _, s := range staged {
		if err := c.EncodeWaveform(img, index, s.slot, s.waveform); err != nil {
			return report, err
		}

		report.Slots = append(report.Slots, s.slot)
		c.cfg.Logger.Debug("waveform written", "wavetable", index, "slot", s.slot)
	}

	if rename != nil {
		if err := c.EncodeName(img, index, rename); err != nil {
			return report, err
		}

		report.Renamed = true
		c.cfg.Logger.Info("wavetable renamed", "wavetable", index, "name", rename.Key())
	}

	if bank != nil && index < len(bank.Wavetables) {
		wt := &bank.Wavetables[index]
		for _, s := range staged {
			if s.slot < len(wt.Waveforms) {
				wt.Waveforms[s.slot] = s.waveform.Clone()
			}
		}

		if rename != nil {
			wt.Name = rename
		}
	}

	return report, nil
}

// checkImportRanges fails unless every block the import writes lies inside
// img, so a short image is never left half-imported.
func (c *Codec) checkImportRanges(img Image, index int, staged []stagedWaveform, rename bool) error {
	size := img.Size()

	for _, s := range staged {
		r, err := c.cfg.Layout.WaveformRange(index, s.slot)
		if err != nil {
			return err
		}

		if err := checkRange(r, size); err != nil {
			return fmt.Errorf("wavetable %d waveform %d: %w", index, s.slot, err)
		}
	}

	if rename {
		r, err := c.cfg.Layout.NameRange(index)
		if err != nil {
			return err
		}

		if err := checkRange(r, size); err != nil {
			return fmt.Errorf("name %d: %w", index, err)
		}
	}

	return nil
}

func (c *Codec) resolveTarget(img Image, bank *Bank, target ImportTarget) (int, error) {
	if target.Name == "" {
		if _, err := c.cfg.Layout.NameRange(target.Index); err != nil {
			return 0, err
		}

		return target.Index, nil
	}

	if bank != nil {
		wt, err := bank.Lookup(target.Name)
		if err != nil {
			return 0, err
		}

		return wt.Index, nil
	}

	names, err := c.DecodeNames(img)
	if err != nil {
		return 0, err
	}

	key := trimName(target.Name)
	for i, name := range names {
		if name.Key() == key {
			return i, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrNameNotFound, key)
}
