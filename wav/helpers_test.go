package wav

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
)

// encodeFile writes buf through a new encoder into a temp file and returns
// its path.
func encodeFile(t *testing.T, name string, sampleRate, bitDepth, numChans, format int, meta *Metadata, write func(*Encoder) error) string {
	t.Helper()

	outPath := filepath.Join(t.TempDir(), name)

	out, err := os.Create(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()

	enc := NewEncoder(out, sampleRate, bitDepth, numChans, format)
	enc.Metadata = meta

	if err := write(enc); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	return outPath
}

func openDecoder(t *testing.T, path string) *Decoder {
	t.Helper()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	return NewDecoder(bytes.NewReader(raw))
}

func intBuffer(numChans, sampleRate int, data ...int) *audio.IntBuffer {
	return &audio.IntBuffer{
		Format: &audio.Format{NumChannels: numChans, SampleRate: sampleRate},
		Data:   data,
	}
}

// rawChunk returns a serialized RIFF sub chunk, padded to an even size.
func rawChunk(id string, body []byte) []byte {
	out := append([]byte(id), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	out = append(out, body...)

	if len(body)%2 == 1 {
		out = append(out, 0)
	}

	return out
}

// riffFile wraps chunks in a RIFF/WAVE header.
func riffFile(chunks ...[]byte) []byte {
	var body []byte
	for _, ch := range chunks {
		body = append(body, ch...)
	}

	out := []byte("RIFF\x00\x00\x00\x00WAVE")
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)+4))

	return append(out, body...)
}

func pcm16FmtChunk(numChans, sampleRate int) []byte {
	body := make([]byte, 16)
	binary.LittleEndian.PutUint16(body[0:], wavFormatPCM)
	binary.LittleEndian.PutUint16(body[2:], uint16(numChans))
	binary.LittleEndian.PutUint32(body[4:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(body[8:], uint32(sampleRate*numChans*2))
	binary.LittleEndian.PutUint16(body[12:], uint16(numChans*2))
	binary.LittleEndian.PutUint16(body[14:], 16)

	return rawChunk("fmt ", body)
}

func pcm16Data(samples ...int16) []byte {
	body := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(body[2*i:], uint16(s))
	}

	return rawChunk("data", body)
}
