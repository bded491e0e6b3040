// gen-cycle writes a single-cycle test waveform as a mono WAV file ready to
// be imported into a wavetable slot.
package main

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/cwbudde/sswave"
	"github.com/cwbudde/sswave/wav"
)

var (
	errUnknownShape = errors.New("unknown shape")
	errBitDepth     = errors.New("unsupported bit depth")
)

func main() {
	err := run(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	flagSet := flag.NewFlagSet("gen-cycle", flag.ContinueOnError)

	output := flagSet.StringP("output", "o", "cycle.wav", "filename to write to")
	shape := flagSet.StringP("shape", "s", "sine", "waveform shape: sine, saw, square or triangle")
	bits := flagSet.IntP("bits", "b", 16, "sample format: 16 or 24 bit PCM, 32 bit float")
	harmonics := flagSet.IntP("harmonics", "n", 0, "band-limit saw, square and triangle to this many harmonics (0 = naive)")

	err := flagSet.Parse(args)
	if err != nil {
		return err
	}

	format := wav.FormatPCM

	switch *bits {
	case 16, 24:
	case 32:
		format = wav.FormatIEEEFloat
	default:
		return fmt.Errorf("%w: %d", errBitDepth, *bits)
	}

	samples, err := cycle(*shape, sswave.WaveformSamples, *harmonics)
	if err != nil {
		return err
	}

	log.Printf("generating a %d sample %s cycle at %d bits", len(samples), *shape, *bits)

	file, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", *output, err)
	}
	defer file.Close()

	wavOut := wav.NewEncoder(file, sswave.ExportSampleRate, *bits, 1, format)
	wavOut.Metadata = &wav.Metadata{
		Title:       *shape,
		Software:    "gen-cycle",
		SamplerInfo: wav.ForwardLoop(len(samples), sswave.ExportSampleRate),
	}

	for _, v := range samples {
		err := wavOut.WriteFrame(v)
		if err != nil {
			return err
		}
	}

	return wavOut.Close()
}

// cycle returns n samples of one period of shape in [-1, 1].
func cycle(shape string, n, harmonics int) ([]float64, error) {
	out := make([]float64, n)

	for i := range out {
		phase := float64(i) / float64(n)

		switch shape {
		case "sine":
			out[i] = math.Sin(2 * math.Pi * phase)
		case "saw":
			if harmonics > 0 {
				out[i] = additive(phase, harmonics, sawPartial)
			} else {
				out[i] = 2*phase - 1
			}
		case "square":
			if harmonics > 0 {
				out[i] = additive(phase, harmonics, squarePartial)
			} else if phase < 0.5 {
				out[i] = 1
			} else {
				out[i] = -1
			}
		case "triangle":
			if harmonics > 0 {
				out[i] = additive(phase, harmonics, trianglePartial)
			} else {
				out[i] = 1 - 4*math.Abs(phase-0.5)
			}
		default:
			return nil, fmt.Errorf("%w: %q", errUnknownShape, shape)
		}
	}

	if harmonics > 0 && shape != "sine" {
		normalize(out)
	}

	return out, nil
}

// partial returns the amplitude of harmonic k and whether it is a cosine.
type partial func(k int) (amp float64, cosine bool)

func sawPartial(k int) (float64, bool) {
	return -2 / (math.Pi * float64(k)) * math.Pow(-1, float64(k)), false
}

func squarePartial(k int) (float64, bool) {
	if k%2 == 0 {
		return 0, false
	}

	return 4 / (math.Pi * float64(k)), false
}

func trianglePartial(k int) (float64, bool) {
	if k%2 == 0 {
		return 0, true
	}

	return 8 / (math.Pi * math.Pi * float64(k*k)), true
}

func additive(phase float64, harmonics int, p partial) float64 {
	var sum float64

	for k := 1; k <= harmonics; k++ {
		amp, cosine := p(k)
		if cosine {
			sum -= amp * math.Cos(2*math.Pi*float64(k)*phase)
		} else {
			sum += amp * math.Sin(2*math.Pi*float64(k)*phase)
		}
	}

	return sum
}

// normalize scales samples so the peak magnitude is 1.
func normalize(samples []float64) {
	var peak float64
	for _, v := range samples {
		peak = max(peak, math.Abs(v))
	}

	if peak == 0 {
		return
	}

	for i := range samples {
		samples[i] /= peak
	}
}
