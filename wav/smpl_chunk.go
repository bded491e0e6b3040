package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-audio/riff"
)

// smpl chunk is documented here:
// https://sites.google.com/site/musicgapi/technical-documents/wav-file-format#smpl

const (
	smplHeaderSize = 36
	smplLoopSize   = 24
)

type smplHeader struct {
	Manufacturer      [4]byte
	Product           [4]byte
	SamplePeriod      uint32
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	SamplerDataSize   uint32
}

// decodeSamplerChunk reads a smpl chunk into d.Metadata.SamplerInfo.
func (d *Decoder) decodeSamplerChunk(ch *riff.Chunk) error {
	if ch == nil {
		return errNilChunk
	}

	defer ch.Drain()

	buf, err := readChunk(ch)
	if err != nil {
		return fmt.Errorf("failed to read the smpl chunk: %w", err)
	}

	if len(buf) < smplHeaderSize {
		return fmt.Errorf("%w: %d bytes", errTruncatedSmpl, len(buf))
	}

	r := bytes.NewReader(buf)

	var hdr smplHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("failed to read smpl header: %w", err)
	}

	if want := smplHeaderSize + int(hdr.NumSampleLoops)*smplLoopSize; len(buf) < want {
		return fmt.Errorf("%w: %d loops need %d bytes, got %d", errTruncatedSmpl, hdr.NumSampleLoops, want, len(buf))
	}

	info := &SamplerInfo{
		Manufacturer:      hdr.Manufacturer,
		Product:           hdr.Product,
		SamplePeriod:      hdr.SamplePeriod,
		MIDIUnityNote:     hdr.MIDIUnityNote,
		MIDIPitchFraction: hdr.MIDIPitchFraction,
		SMPTEFormat:       hdr.SMPTEFormat,
		SMPTEOffset:       hdr.SMPTEOffset,
		NumSampleLoops:    hdr.NumSampleLoops,
	}

	for range hdr.NumSampleLoops {
		loop := &SampleLoop{}
		if err := binary.Read(r, binary.LittleEndian, loop); err != nil {
			return fmt.Errorf("failed to read sample loop: %w", err)
		}

		info.Loops = append(info.Loops, loop)
	}

	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}

	d.Metadata.SamplerInfo = info

	return nil
}

// encodeSamplerChunk returns the body of a smpl chunk. NumSampleLoops is
// taken from the loop list.
func encodeSamplerChunk(info *SamplerInfo) ([]byte, error) {
	if info == nil {
		return nil, nil
	}

	hdr := smplHeader{
		Manufacturer:      info.Manufacturer,
		Product:           info.Product,
		SamplePeriod:      info.SamplePeriod,
		MIDIUnityNote:     info.MIDIUnityNote,
		MIDIPitchFraction: info.MIDIPitchFraction,
		SMPTEFormat:       info.SMPTEFormat,
		SMPTEOffset:       info.SMPTEOffset,
		NumSampleLoops:    uint32(len(info.Loops)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, smplHeaderSize+len(info.Loops)*smplLoopSize))
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		return nil, fmt.Errorf("failed to write smpl header: %w", err)
	}

	for i, loop := range info.Loops {
		if loop == nil || loop.End < loop.Start {
			return nil, fmt.Errorf("%w: loop %d", errInvalidLoopSpan, i)
		}

		if err := binary.Write(buf, binary.LittleEndian, loop); err != nil {
			return nil, fmt.Errorf("failed to write sample loop %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}
