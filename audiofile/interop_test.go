package audiofile

import (
	"os"
	"path/filepath"
	"testing"

	gowav "github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/sswave"
)

// Exported samples must read back with the upstream go-audio decoder.
func TestSavedWAVReadsWithGoAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "SAW1_3.wav")
	require.NoError(t, Save(path, artifact(true)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := gowav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(sswave.ExportSampleRate), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, uint16(1), dec.NumChans)

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, sswave.WaveformSamples)

	for i, s := range cycle() {
		if buf.Data[i] != int(s) {
			t.Fatalf("sample %d = %d, want %d", i, buf.Data[i], s)
		}
	}
}

// Files written by the upstream encoder load as importable cycles.
func TestLoadGoAudioWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upstream.wav")

	f, err := os.Create(path)
	require.NoError(t, err)

	enc := gowav.NewEncoder(f, sswave.ExportSampleRate, 16, 1, 1)
	require.NoError(t, enc.Write(sswave.FromNative(cycle(), sswave.ExportSampleRate)))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.True(t, info.Importable, info.Reason)

	buf, err := Load(path)
	require.NoError(t, err)

	w, err := sswave.ToNative(buf)
	require.NoError(t, err)
	assert.Equal(t, cycle(), w)
}
