package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/cwbudde/sswave"
	"github.com/cwbudde/sswave/audiofile"
)

var (
	errNothingSelected = errors.New("no wavetable names given and --all not set")
	errNothingExported = errors.New("no wavetable exported")
)

func runList(args []string, out io.Writer) error {
	var common commonFlags

	flagSet := newFlagSet("list", &common)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() != 1 {
		return fmt.Errorf("%w: list FIRMWARE", errMissingArgs)
	}

	codec, err := common.codec()
	if err != nil {
		return err
	}

	img, err := sswave.LoadImage(flagSet.Arg(0))
	if err != nil {
		return err
	}

	names, err := codec.DecodeNames(img)
	if err != nil {
		return err
	}

	for i, name := range names {
		fmt.Fprintf(out, "%3d  %s\n", i, name.Key())
	}

	return nil
}

type exportOptions struct {
	all     bool
	singles bool
	dir     string
	format  string
}

func runExport(args []string, out io.Writer) error {
	var (
		common commonFlags
		opts   exportOptions
	)

	flagSet := newFlagSet("export", &common)
	flagSet.BoolVarP(&opts.all, "all", "a", false, "export every wavetable")
	flagSet.BoolVarP(&opts.singles, "singles", "s", false, "one file per waveform")
	flagSet.StringVarP(&opts.dir, "path", "p", ".", "output directory")
	flagSet.StringVarP(&opts.format, "format", "f", "wav", "wav or aiff")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return fmt.Errorf("%w: export FIRMWARE [NAME]...", errMissingArgs)
	}

	codec, err := common.codec()
	if err != nil {
		return err
	}

	paths, misses, err := exportWavetables(codec, flagSet.Arg(0), flagSet.Args()[1:], opts)
	for _, miss := range misses {
		warn("%v", miss)
	}

	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Fprintln(out, path)
	}

	return nil
}

// exportWavetables decodes firmware and saves the selected wavetables into
// opts.dir. It returns the written paths and the names that were skipped.
func exportWavetables(codec *sswave.Codec, firmware string, names []string, opts exportOptions) ([]string, []error, error) {
	if len(names) == 0 && !opts.all {
		return nil, nil, errNothingSelected
	}

	container, err := audiofile.ParseContainer(opts.format)
	if err != nil {
		return nil, nil, err
	}

	img, err := sswave.LoadImage(firmware)
	if err != nil {
		return nil, nil, err
	}

	bank, err := codec.DecodeBank(img)
	if err != nil {
		return nil, nil, err
	}

	artifacts, misses := codec.ExportBank(bank, names, opts.all, opts.singles)
	if len(artifacts) == 0 {
		return nil, misses, errNothingExported
	}

	if err := os.MkdirAll(opts.dir, 0o755); err != nil {
		return nil, misses, err
	}

	stems := sswave.FileStems(artifacts)

	paths := make([]string, 0, len(artifacts))
	for i, a := range artifacts {
		if stems[i] != a.FileStem() {
			warn("wavetable %d shares the name %q, writing %s", a.Index, a.Wavetable, stems[i])
		}

		path := filepath.Join(opts.dir, stems[i]+container.Ext())
		if err := audiofile.Save(path, a); err != nil {
			return paths, misses, err
		}

		paths = append(paths, path)
	}

	return paths, misses, nil
}

func runImport(args []string, out io.Writer) error {
	var (
		common commonFlags
		target sswave.ImportTarget
		output string
	)

	flagSet := newFlagSet("import", &common)
	flagSet.IntVarP(&target.Index, "index", "i", 0, "target wavetable index")
	flagSet.StringVarP(&target.Name, "name", "n", "", "target wavetable name")
	flagSet.IntVar(&target.StartSlot, "start", 0, "first waveform slot")
	flagSet.StringVarP(&target.Rename, "rename", "r", "", "new wavetable name")
	flagSet.StringVarP(&output, "output", "o", "", "write into a copy of the firmware")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 2 {
		return fmt.Errorf("%w: import FIRMWARE FILE...", errMissingArgs)
	}

	codec, err := common.codec()
	if err != nil {
		return err
	}

	firmware := flagSet.Arg(0)

	files := make([]sswave.SampleBuffer, 0, flagSet.NArg()-1)
	for _, path := range flagSet.Args()[1:] {
		buf, err := audiofile.Load(path)
		if err != nil {
			return err
		}

		files = append(files, buf)
	}

	if output != "" {
		if err := copyFile(firmware, output); err != nil {
			return err
		}

		firmware = output
	}

	report, err := importFiles(codec, firmware, target, files)
	if report != nil {
		for _, r := range report.Rejected {
			warn("%s: %v", r.Source, r.Err)
		}
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(out, "wavetable %d: wrote slots %v\n", report.Wavetable, report.Slots)
	if report.Renamed {
		fmt.Fprintf(out, "wavetable %d: renamed to %s\n", report.Wavetable, target.Rename)
	}

	return nil
}

// importFiles writes files into the firmware file in place.
func importFiles(codec *sswave.Codec, firmware string, target sswave.ImportTarget, files []sswave.SampleBuffer) (*sswave.ImportReport, error) {
	img, err := sswave.OpenImage(firmware, true)
	if err != nil {
		return nil, err
	}

	report, err := codec.ImportWaveforms(img, nil, target, files)
	if err != nil {
		img.Close()
		return report, err
	}

	if err := img.Sync(); err != nil {
		img.Close()
		return report, err
	}

	return report, img.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}

func runInspect(args []string, out io.Writer) error {
	flagSet := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	if flagSet.NArg() < 1 {
		return fmt.Errorf("%w: inspect FILE...", errMissingArgs)
	}

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgYellow)

	var failed int
	for _, path := range flagSet.Args() {
		info, err := audiofile.Inspect(path)
		if err != nil {
			log.Printf("%s: %v", path, err)
			failed++

			continue
		}

		fmt.Fprintf(out, "%s: %s, %d ch, %d Hz, %s, %d frames, %d bytes: ",
			info.Path, info.Container, info.Channels, info.SampleRate, info.Subtype, info.Frames, info.DataBytes)

		if info.Importable {
			ok.Fprintln(out, "importable")
		} else {
			bad.Fprintln(out, info.Reason)
		}
	}

	if failed == len(flagSet.Args()) {
		return fmt.Errorf("none of %d files could be read", failed)
	}

	return nil
}
