package sswave

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
)

// Wavetable is a named set of waveforms.
type Wavetable struct {
	// Index is the position of the wavetable in the firmware.
	Index     int
	Name      Name
	Waveforms []Waveform
}

// Bank holds every wavetable of a firmware image in firmware order.
type Bank struct {
	Wavetables []Wavetable
}

// DecodeBank decodes all names and waveforms of the image. Wavetables are
// decoded concurrently; the first error aborts the call.
func (c *Codec) DecodeBank(img io.ReaderAt) (*Bank, error) {
	layout := c.cfg.Layout
	start := time.Now()

	// A short image would fail on the last wavetable anyway, check the end
	// first to fail before spawning any work.
	last, err := layout.WaveformRange(layout.WavetableCount-1, layout.WaveformCount-1)
	if err != nil {
		return nil, err
	}

	if _, err := readRange(img, Range{Offset: last.End() - 1, Length: 1}); err != nil {
		return nil, fmt.Errorf("wavetable table ends at 0x%06x: %w", last.End(), err)
	}

	bank := &Bank{Wavetables: make([]Wavetable, layout.WavetableCount)}

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)

	for i := range bank.Wavetables {
		g.Go(func() error {
			wt, err := c.DecodeWavetable(img, i)
			if err != nil {
				return err
			}

			bank.Wavetables[i] = *wt

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		c.cfg.Logger.Error("bank decode failed", "err", err)
		return nil, err
	}

	c.cfg.Logger.Debug("bank decoded", "wavetables", len(bank.Wavetables), "elapsed", time.Since(start))

	return bank, nil
}

// DecodeWavetable decodes the name and the waveforms of wavetable i.
func (c *Codec) DecodeWavetable(img io.ReaderAt, i int) (*Wavetable, error) {
	name, err := c.DecodeName(img, i)
	if err != nil {
		return nil, err
	}

	wt := &Wavetable{
		Index:     i,
		Name:      name,
		Waveforms: make([]Waveform, c.cfg.Layout.WaveformCount),
	}

	for j := range wt.Waveforms {
		wt.Waveforms[j], err = c.DecodeWaveform(img, i, j)
		if err != nil {
			return nil, err
		}
	}

	return wt, nil
}

// Names returns the trimmed names in firmware order.
func (b *Bank) Names() []string {
	names := make([]string, len(b.Wavetables))
	for i := range b.Wavetables {
		names[i] = b.Wavetables[i].Name.Key()
	}

	return names
}

// Lookup returns the first wavetable whose trimmed name matches the trimmed
// name argument.
func (b *Bank) Lookup(name string) (*Wavetable, error) {
	key := trimName(name)

	for i := range b.Wavetables {
		if b.Wavetables[i].Name.Key() == key {
			return &b.Wavetables[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrNameNotFound, key)
}

// LookupAll looks up every name independently. Misses are returned as
// errors and skipped; they never prevent the other lookups.
func (b *Bank) LookupAll(names ...string) ([]*Wavetable, []error) {
	var (
		found []*Wavetable
		errs  []error
	)

	for _, name := range names {
		wt, err := b.Lookup(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		found = append(found, wt)
	}

	return found, errs
}
