package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var (
	// See http://bwfmetaedit.sourceforge.net/listinfo.html
	markerINAM = [4]byte{'I', 'N', 'A', 'M'}
	markerISFT = [4]byte{'I', 'S', 'F', 'T'}
	markerICMT = [4]byte{'I', 'C', 'M', 'T'}
	markerIPRD = [4]byte{'I', 'P', 'R', 'D'}

	errNilChunk        = errors.New("can't decode a nil chunk")
	errTruncatedInfo   = errors.New("truncated INFO entry")
	errTruncatedSmpl   = errors.New("truncated smpl chunk")
	errInvalidLoopSpan = errors.New("invalid sample loop")
)

// decodeListChunk reads a LIST chunk into d.Metadata. Lists other than
// INFO are skipped.
func (d *Decoder) decodeListChunk(ch *riff.Chunk) error {
	if ch == nil {
		return errNilChunk
	}

	defer ch.Drain()

	buf, err := readChunk(ch)
	if err != nil {
		return fmt.Errorf("failed to read the LIST chunk: %w", err)
	}

	if len(buf) < 4 || !bytes.Equal(buf[:4], CIDInfo) {
		return nil
	}

	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}

	entries := buf[4:]
	// a single trailing byte is word alignment padding
	for len(entries) > 1 {
		if len(entries) < 8 {
			return errTruncatedInfo
		}

		var id [4]byte
		copy(id[:], entries[:4])
		size := int(binary.LittleEndian.Uint32(entries[4:8]))
		entries = entries[8:]

		if size > len(entries) {
			return fmt.Errorf("%w: %s wants %d bytes, %d left", errTruncatedInfo, id, size, len(entries))
		}

		value := nullTermStr(entries[:size])

		switch id {
		case markerINAM:
			d.Metadata.Title = value
		case markerISFT:
			d.Metadata.Software = value
		case markerICMT:
			d.Metadata.Comments = value
		case markerIPRD:
			d.Metadata.Product = value
		}

		entries = entries[min(len(entries), size+size%2):]
	}

	return nil
}

// encodeInfoChunk returns the body of a LIST/INFO chunk, or nil when m
// carries no INFO entry.
func encodeInfoChunk(m *Metadata) []byte {
	if !m.hasInfo() {
		return nil
	}

	buf := bytes.NewBuffer(append([]byte(nil), CIDInfo...))

	for _, field := range []struct {
		marker [4]byte
		value  string
	}{
		{markerINAM, m.Title},
		{markerIPRD, m.Product},
		{markerICMT, m.Comments},
		{markerISFT, m.Software},
	} {
		if field.value == "" {
			continue
		}

		size := len(field.value) + 1

		buf.Write(field.marker[:])
		binary.Write(buf, binary.LittleEndian, uint32(size))
		buf.WriteString(field.value)
		buf.WriteByte(0)

		if size%2 == 1 {
			buf.WriteByte(0)
		}
	}

	return buf.Bytes()
}

func readChunk(ch *riff.Chunk) ([]byte, error) {
	buf := make([]byte, ch.Size)

	n, err := io.ReadFull(ch, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	return buf[:n], nil
}
