package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/sswave"
)

func fixtureSample(i, j, k int) int16 {
	return int16((i*sswave.WaveformCount+j)*211 + k*89 - 28000)
}

// writeFirmware synthesizes a default-layout image with tables named
// TBL<i> and returns its path and contents.
func writeFirmware(t *testing.T) (string, []byte) {
	t.Helper()

	layout := sswave.DefaultLayout()
	img := make([]byte, layout.ImageSize())
	for i := range img {
		img[i] = 0xa5
	}

	for i := 0; i < layout.WavetableCount; i++ {
		r, err := layout.NameRange(i)
		if err != nil {
			t.Fatalf("name range %d: %v", i, err)
		}

		name := fmt.Sprintf("%-8s", fmt.Sprintf("TBL%d", i))
		for k := 0; k < layout.NameLength; k++ {
			img[r.Offset+int64(k)] = sswave.ReverseBits(name[k])
		}

		for j := 0; j < layout.WaveformCount; j++ {
			r, err := layout.WaveformRange(i, j)
			if err != nil {
				t.Fatalf("waveform range %d/%d: %v", i, j, err)
			}

			for k := 0; k < layout.WaveformSamples; k++ {
				s := uint16(fixtureSample(i, j, k))
				img[r.Offset+int64(2*k)] = sswave.ReverseBits(byte(s))
				img[r.Offset+int64(2*k+1)] = sswave.ReverseBits(byte(s >> 8))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "firmware.bin")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatalf("write firmware: %v", err)
	}

	return path, img
}

func TestRunDispatch(t *testing.T) {
	if err := run(nil, &bytes.Buffer{}); !errors.Is(err, errMissingCommand) {
		t.Fatalf("run(nil) error=%v, want %v", err, errMissingCommand)
	}

	if err := run([]string{"frobnicate"}, &bytes.Buffer{}); !errors.Is(err, errUnknownCommand) {
		t.Fatalf("unknown command error=%v, want %v", err, errUnknownCommand)
	}

	var out bytes.Buffer
	if err := run([]string{"help"}, &out); err != nil {
		t.Fatalf("help: %v", err)
	}

	if !strings.Contains(out.String(), "Usage: sswave COMMAND") {
		t.Fatalf("help output missing usage line:\n%s", out.String())
	}

	out.Reset()
	if err := run([]string{"version"}, &out); err != nil {
		t.Fatalf("version: %v", err)
	}

	if got := out.String(); got != "sswave dev\n" {
		t.Fatalf("version output=%q", got)
	}
}

func TestRunMissingArguments(t *testing.T) {
	for _, cmd := range []string{"list", "export", "import", "inspect"} {
		t.Run(cmd, func(t *testing.T) {
			err := run([]string{cmd}, &bytes.Buffer{})
			if !errors.Is(err, errMissingArgs) {
				t.Fatalf("error=%v, want %v", err, errMissingArgs)
			}
		})
	}
}

func TestRunList(t *testing.T) {
	firmware, _ := writeFirmware(t)

	var out bytes.Buffer
	if err := run([]string{"list", firmware}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != sswave.WavetableCount {
		t.Fatalf("got %d lines, want %d", len(lines), sswave.WavetableCount)
	}

	if lines[3] != "  3  TBL3" {
		t.Fatalf("line 3=%q", lines[3])
	}

	if lines[127] != "127  TBL127" {
		t.Fatalf("line 127=%q", lines[127])
	}
}

func TestRunListTruncatedImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	if err := os.WriteFile(path, make([]byte, 0x100), 0o644); err != nil {
		t.Fatal(err)
	}

	err := run([]string{"list", path}, &bytes.Buffer{})
	if !errors.Is(err, sswave.ErrTruncatedImage) {
		t.Fatalf("error=%v, want %v", err, sswave.ErrTruncatedImage)
	}
}

func TestRunExportSelection(t *testing.T) {
	firmware, _ := writeFirmware(t)
	dir := t.TempDir()

	err := run([]string{"export", firmware, "-p", dir}, &bytes.Buffer{})
	if !errors.Is(err, errNothingSelected) {
		t.Fatalf("error=%v, want %v", err, errNothingSelected)
	}

	err = run([]string{"export", firmware, "NOPE", "-p", dir}, &bytes.Buffer{})
	if !errors.Is(err, errNothingExported) {
		t.Fatalf("error=%v, want %v", err, errNothingExported)
	}

	var out bytes.Buffer
	err = run([]string{"export", firmware, "NOPE", "TBL7", "--path", dir, "--format", "aiff"}, &out)
	if err != nil {
		t.Fatalf("export with one miss: %v", err)
	}

	want := filepath.Join(dir, "TBL7.aif")
	if strings.TrimSpace(out.String()) != want {
		t.Fatalf("export output=%q, want %q", out.String(), want)
	}

	if _, err := os.Stat(want); err != nil {
		t.Fatalf("exported file: %v", err)
	}
}

func TestRunExportAll(t *testing.T) {
	firmware, _ := writeFirmware(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run([]string{"export", firmware, "--all", "-p", dir, "-w", "4"}, &out); err != nil {
		t.Fatalf("export --all: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != sswave.WavetableCount {
		t.Fatalf("got %d files, want %d", len(entries), sswave.WavetableCount)
	}
}

func TestRunExportImportRoundTrip(t *testing.T) {
	firmware, orig := writeFirmware(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run([]string{"export", firmware, "TBL2", "--singles", "-p", dir}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}

	files := strings.Fields(out.String())
	if len(files) != sswave.WaveformCount {
		t.Fatalf("exported %d files, want %d", len(files), sswave.WaveformCount)
	}

	if files[0] != filepath.Join(dir, "TBL2_0.wav") {
		t.Fatalf("first file=%q", files[0])
	}

	copyPath := filepath.Join(t.TempDir(), "copy.bin")
	args := append([]string{"import", firmware, "-n", "TBL5", "-r", "IMPORTED", "-o", copyPath}, files...)

	out.Reset()
	if err := run(args, &out); err != nil {
		t.Fatalf("import: %v", err)
	}

	if !strings.Contains(out.String(), "wavetable 5: wrote slots [0 1 2 3 4 5 6 7]") {
		t.Fatalf("import output=%q", out.String())
	}

	onDisk, err := os.ReadFile(firmware)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(onDisk, orig) {
		t.Fatalf("original firmware changed by an import with --output")
	}

	got, err := os.ReadFile(copyPath)
	if err != nil {
		t.Fatal(err)
	}

	layout := sswave.DefaultLayout()

	name, err := layout.NameRange(5)
	if err != nil {
		t.Fatal(err)
	}

	first, err := layout.WaveformRange(5, 0)
	if err != nil {
		t.Fatal(err)
	}

	last, err := layout.WaveformRange(5, sswave.WaveformCount-1)
	if err != nil {
		t.Fatal(err)
	}

	src, err := layout.WaveformRange(2, 0)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got[:name.Offset], orig[:name.Offset]) ||
		!bytes.Equal(got[name.End():first.Offset], orig[name.End():first.Offset]) ||
		!bytes.Equal(got[last.End():], orig[last.End():]) {
		t.Fatalf("bytes outside the target wavetable changed")
	}

	if !bytes.Equal(got[first.Offset:last.End()], orig[src.Offset:src.Offset+int64(layout.WavetableLength())]) {
		t.Fatalf("imported wavetable does not match the exported one")
	}

	out.Reset()
	if err := run([]string{"list", copyPath}, &out); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "  5  IMPORTED\n") {
		t.Fatalf("renamed wavetable not listed:\n%s", out.String())
	}
}

func TestRunImportInPlace(t *testing.T) {
	firmware, orig := writeFirmware(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run([]string{"export", firmware, "TBL0", "-s", "-p", dir}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}

	cycle := filepath.Join(dir, "TBL0_3.wav")
	if err := run([]string{"import", firmware, cycle, "-i", "9", "--start", "6"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("import: %v", err)
	}

	got, err := os.ReadFile(firmware)
	if err != nil {
		t.Fatal(err)
	}

	layout := sswave.DefaultLayout()
	dst, _ := layout.WaveformRange(9, 6)
	src, _ := layout.WaveformRange(0, 3)

	if !bytes.Equal(got[dst.Offset:dst.End()], orig[src.Offset:src.End()]) {
		t.Fatalf("slot 6 of wavetable 9 does not hold the imported cycle")
	}

	if !bytes.Equal(got[:dst.Offset], orig[:dst.Offset]) || !bytes.Equal(got[dst.End():], orig[dst.End():]) {
		t.Fatalf("bytes outside the written slot changed")
	}
}

func TestRunImportErrors(t *testing.T) {
	firmware, orig := writeFirmware(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run([]string{"export", firmware, "TBL1", "-p", dir}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}

	// a whole wavetable is eight cycles long
	table := filepath.Join(dir, "TBL1.wav")
	err := run([]string{"import", firmware, table}, &bytes.Buffer{})
	if !errors.Is(err, sswave.ErrInvalidSampleCount) {
		t.Fatalf("error=%v, want %v", err, sswave.ErrInvalidSampleCount)
	}

	err = run([]string{"import", firmware, table, "-n", "MISSING"}, &bytes.Buffer{})
	if !errors.Is(err, sswave.ErrNameNotFound) {
		t.Fatalf("error=%v, want %v", err, sswave.ErrNameNotFound)
	}

	got, err := os.ReadFile(firmware)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(got, orig) {
		t.Fatalf("firmware changed by a failed import")
	}
}

func TestRunInspect(t *testing.T) {
	firmware, _ := writeFirmware(t)
	dir := t.TempDir()

	var out bytes.Buffer
	if err := run([]string{"export", firmware, "TBL4", "-p", dir}, &out); err != nil {
		t.Fatal(err)
	}

	if err := run([]string{"export", firmware, "TBL4", "-s", "-p", dir}, &out); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	err := run([]string{"inspect", filepath.Join(dir, "TBL4.wav"), filepath.Join(dir, "TBL4_1.wav")}, &out)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}

	if !strings.Contains(lines[0], "4096 samples, want 512") {
		t.Fatalf("whole table line=%q", lines[0])
	}

	if !strings.HasSuffix(lines[1], "importable") {
		t.Fatalf("single cycle line=%q", lines[1])
	}

	err = run([]string{"inspect", filepath.Join(dir, "missing.wav")}, &bytes.Buffer{})
	if err == nil {
		t.Fatalf("expected an error when no file can be read")
	}
}

// writeALaw writes a mono A-law WAV of one waveform length.
func writeALaw(t *testing.T, dir string) string {
	t.Helper()

	n := sswave.WaveformSamples

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(4+8+18+8+n))
	b.WriteString("WAVEfmt ")

	for _, v := range []any{uint32(18), uint16(6), uint16(1), uint32(8000), uint32(8000), uint16(1), uint16(8), uint16(0)} {
		binary.Write(&b, binary.LittleEndian, v)
	}

	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(n))
	b.Write(bytes.Repeat([]byte{0xd5}, n))

	path := filepath.Join(dir, "alaw.wav")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRunImportSkipsCompressedWAV(t *testing.T) {
	firmware, orig := writeFirmware(t)
	dir := t.TempDir()

	if err := run([]string{"export", firmware, "TBL0", "-s", "-p", dir}, &bytes.Buffer{}); err != nil {
		t.Fatalf("export: %v", err)
	}

	alaw := writeALaw(t, dir)
	good := filepath.Join(dir, "TBL0_2.wav")

	var out bytes.Buffer
	if err := run([]string{"import", firmware, alaw, good, "-i", "9"}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}

	if !strings.Contains(out.String(), "wavetable 9: wrote slots [1]") {
		t.Fatalf("import output=%q", out.String())
	}

	got, err := os.ReadFile(firmware)
	if err != nil {
		t.Fatal(err)
	}

	layout := sswave.DefaultLayout()
	skipped, _ := layout.WaveformRange(9, 0)
	written, _ := layout.WaveformRange(9, 1)
	src, _ := layout.WaveformRange(0, 2)

	if !bytes.Equal(got[skipped.Offset:skipped.End()], orig[skipped.Offset:skipped.End()]) {
		t.Fatalf("slot of the A-law file changed")
	}

	if !bytes.Equal(got[written.Offset:written.End()], orig[src.Offset:src.End()]) {
		t.Fatalf("slot 1 does not hold the good cycle")
	}

	err = run([]string{"import", firmware, alaw, "-i", "9"}, &bytes.Buffer{})
	if !errors.Is(err, sswave.ErrUnsupportedSampleSubtype) {
		t.Fatalf("error=%v, want %v", err, sswave.ErrUnsupportedSampleSubtype)
	}
}

func TestRunExportAllSharedNames(t *testing.T) {
	firmware, img := writeFirmware(t)

	layout := sswave.DefaultLayout()
	r, err := layout.NameRange(7)
	if err != nil {
		t.Fatal(err)
	}

	for k, c := range []byte("TBL3    ") {
		img[r.Offset+int64(k)] = sswave.ReverseBits(c)
	}

	if err := os.WriteFile(firmware, img, 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := run([]string{"export", firmware, "-a", "-p", dir}, &bytes.Buffer{}); err != nil {
		t.Fatalf("export --all: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != sswave.WavetableCount {
		t.Fatalf("got %d files, want %d", len(entries), sswave.WavetableCount)
	}

	for _, name := range []string{"TBL3-3.wav", "TBL3-7.wav", "TBL4.wav"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
