package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

// Encoder encodes LPCM data into a wav containter.
type Encoder struct {
	w   io.WriteSeeker
	buf *bytes.Buffer

	SampleRate int
	BitDepth   int
	NumChans   int

	// WavAudioFormat is the WAVE format category of the file: PCM = 1,
	// IEEE float = 3, extensible = 0xFFFE.
	WavAudioFormat int
	// FmtChunk optionally controls fmt chunk serialization, including
	// WAVE_FORMAT_EXTENSIBLE fields.
	FmtChunk *FmtChunk

	// Metadata is written after the data chunk on Close.
	Metadata *Metadata

	WrittenBytes    int
	frames          int
	pcmBytes        int
	pcmChunkStarted bool
	pcmChunkSizePos int
	wroteHeader     bool // true if we've written the header out
}

// NewEncoder creates a new encoder to create a new wav file.
func NewEncoder(w io.WriteSeeker, sampleRate, bitDepth, numChans, audioFormat int) *Encoder {
	return &Encoder{
		w:              w,
		buf:            bytes.NewBuffer(make([]byte, 0, bytesNumFromDuration(time.Second, sampleRate, bitDepth)*numChans)),
		SampleRate:     sampleRate,
		BitDepth:       bitDepth,
		NumChans:       numChans,
		WavAudioFormat: audioFormat,
	}
}

// AddLE serializes and adds the passed value using little endian.
func (e *Encoder) AddLE(src any) error {
	e.WrittenBytes += binary.Size(src)

	if err := binary.Write(e.w, binary.LittleEndian, src); err != nil {
		return fmt.Errorf("failed to write little endian: %w", err)
	}

	return nil
}

// AddBE serializes and adds the passed value using big endian.
func (e *Encoder) AddBE(src any) error {
	e.WrittenBytes += binary.Size(src)

	if err := binary.Write(e.w, binary.BigEndian, src); err != nil {
		return fmt.Errorf("failed to write big endian: %w", err)
	}

	return nil
}

var (
	errNilBuffer                   = errors.New("can't add a nil buffer")
	errAlreadyWroteHdr             = errors.New("already wrote header")
	errNilEncoder                  = errors.New("can't write a nil encoder")
	errNilWriter                   = errors.New("can't write to a nil writer")
	errEncUnsupportedFloatBitDepth = errors.New("unsupported float bit depth")
	errUnsupportedFrameBitSize     = errors.New("can't add frames of bit size")
	errChannelMismatch             = errors.New("buffer channel count doesn't match the encoder")
)

// Write encodes and writes the passed buffer to the underlying writer.
// Don't forget to Close() the encoder or the file won't be valid.
func (e *Encoder) Write(buf *audio.Float32Buffer) error {
	if buf == nil {
		return errNilBuffer
	}

	if err := e.checkChannels(buf.Format); err != nil {
		return err
	}

	if err := e.startPCM(); err != nil {
		return err
	}

	for _, val := range buf.Data {
		if err := e.encodeFloat(float64(val)); err != nil {
			return err
		}
	}

	e.frames += buf.NumFrames()

	return e.flush()
}

// WriteInt encodes integer samples. For PCM files the values are taken to
// be at the encoder bit depth; for float files they are normalized from the
// buffer's SourceBitDepth, 16 when unset.
func (e *Encoder) WriteInt(buf *audio.IntBuffer) error {
	if buf == nil {
		return errNilBuffer
	}

	if err := e.checkChannels(buf.Format); err != nil {
		return err
	}

	if err := e.startPCM(); err != nil {
		return err
	}

	if e.effectiveAudioFormat() == wavFormatIEEEFloat {
		depth := buf.SourceBitDepth
		if depth == 0 {
			depth = 16
		}

		for _, val := range buf.Data {
			if err := e.encodeFloat(float64(normalizePCMInt(val, depth))); err != nil {
				return err
			}
		}
	} else {
		for _, val := range buf.Data {
			if err := e.encodeInt(val); err != nil {
				return err
			}
		}
	}

	e.frames += buf.NumFrames()

	return e.flush()
}

// WriteFrame writes a single sample to the underlying writer. float32 and
// float64 values are normalized samples, anything else is written as is.
func (e *Encoder) WriteFrame(value any) error {
	if err := e.startPCM(); err != nil {
		return err
	}

	e.frames++

	switch val := value.(type) {
	case float32:
		if err := e.encodeFloat(float64(val)); err != nil {
			return err
		}
	case float64:
		if err := e.encodeFloat(val); err != nil {
			return err
		}
	default:
		if err := binary.Write(e.buf, binary.LittleEndian, value); err != nil {
			return fmt.Errorf("failed to write frame: %w", err)
		}
	}

	return e.flush()
}

func (e *Encoder) checkChannels(format *audio.Format) error {
	if format != nil && format.NumChannels != 0 && format.NumChannels != e.NumChans {
		return fmt.Errorf("%w: %d != %d", errChannelMismatch, format.NumChannels, e.NumChans)
	}

	return nil
}

func (e *Encoder) encodeFloat(val float64) error {
	switch e.effectiveAudioFormat() {
	case wavFormatIEEEFloat:
		switch e.BitDepth {
		case 32:
			return binary.Write(e.buf, binary.LittleEndian, float32(clampFloat64(val, -1, 1)))
		case 64:
			return binary.Write(e.buf, binary.LittleEndian, clampFloat64(val, -1, 1))
		default:
			return fmt.Errorf("%w: %d", errEncUnsupportedFloatBitDepth, e.BitDepth)
		}
	case wavFormatPCM:
		if e.BitDepth == 8 {
			return e.buf.WriteByte(float32ToPCMUint8(float32(val)))
		}

		return e.encodeInt(int(float32ToPCMInt32(float32(val), e.BitDepth)))
	default:
		return fmt.Errorf("%w: %d", errUnsupportedWavFormat, e.effectiveAudioFormat())
	}
}

func (e *Encoder) encodeInt(val int) error {
	switch e.BitDepth {
	case 8:
		return e.buf.WriteByte(uint8(clampInt(val, 0, maxPCMInt8Unsigned)))
	case 16:
		return binary.Write(e.buf, binary.LittleEndian, int16(clampInt(val, -maxPCMInt16-1, maxPCMInt16)))
	case 24:
		_, err := e.buf.Write(audio.Int32toInt24LEBytes(int32(clampInt(val, -maxPCMInt24-1, maxPCMInt24))))
		return err
	case 32:
		return binary.Write(e.buf, binary.LittleEndian, int32(clampInt(val, -maxPCMInt32-1, maxPCMInt32)))
	default:
		return fmt.Errorf("%w: %d", errUnsupportedFrameBitSize, e.BitDepth)
	}
}

func clampInt(value, lo, hi int) int {
	return max(lo, min(value, hi))
}

func (e *Encoder) flush() error {
	n, err := e.w.Write(e.buf.Bytes())
	e.WrittenBytes += n
	e.pcmBytes += n
	e.buf.Reset()

	if err != nil {
		return fmt.Errorf("failed to write buffer: %w", err)
	}

	return nil
}

func (e *Encoder) startPCM() error {
	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	if e.pcmChunkStarted {
		return nil
	}

	if err := e.AddLE(riff.DataFormatID); err != nil {
		return fmt.Errorf("error encoding sound header %w", err)
	}

	e.pcmChunkStarted = true

	// temporary chunk size, patched on Close
	e.pcmChunkSizePos = e.WrittenBytes

	if err := e.AddLE(uint32(4294967295)); err != nil {
		return fmt.Errorf("%w when writing wav data chunk size header", err)
	}

	return nil
}

func (e *Encoder) writeHeader() error {
	if e == nil {
		return errNilEncoder
	}

	if e.wroteHeader {
		return errAlreadyWroteHdr
	}

	e.wroteHeader = true

	if e.w == nil {
		return errNilWriter
	}

	if e.WrittenBytes > 0 {
		return nil
	}

	for _, v := range []any{riff.RiffID, uint32(4294967295), riff.WavFormatID, riff.FmtID} {
		if err := e.AddLE(v); err != nil {
			return err
		}
	}

	return e.writeFmtChunk()
}

func (e *Encoder) effectiveAudioFormat() int {
	if e.FmtChunk != nil {
		return int(e.FmtChunk.EffectiveFormatTag())
	}

	if e.WavAudioFormat == wavFormatExtensible {
		return wavFormatPCM
	}

	return e.WavAudioFormat
}

func (e *Encoder) buildFmtChunkForWrite() *FmtChunk {
	blockAlign := e.NumChans * bytesPerSample(e.BitDepth)

	chunk := &FmtChunk{FormatTag: uint16(e.WavAudioFormat)}
	if e.FmtChunk != nil {
		chunk = e.FmtChunk.Clone()
	}

	chunk.NumChannels = uint16(e.NumChans)
	chunk.SampleRate = uint32(e.SampleRate)
	chunk.BlockAlign = uint16(blockAlign)
	chunk.BitsPerSample = uint16(e.BitDepth)
	chunk.AvgBytesPerSec = uint32(e.SampleRate * blockAlign)

	if chunk.FormatTag == wavFormatExtensible && chunk.Extensible == nil {
		chunk.Extensible = &FmtExtensible{
			ValidBitsPerSample: uint16(e.BitDepth),
			SubFormat:          makeSubFormatGUID(uint16(e.effectiveAudioFormat())),
		}
	}

	return chunk
}

func (e *Encoder) writeFmtChunk() error {
	chunk := e.buildFmtChunkForWrite()
	extensible := chunk.FormatTag == wavFormatExtensible && chunk.Extensible != nil

	size := uint32(16)
	if extensible {
		size += 2 + 22 + uint32(len(chunk.Extensible.ExtraData))
	}

	fields := []any{
		size,
		chunk.FormatTag,
		chunk.NumChannels,
		chunk.SampleRate,
		chunk.AvgBytesPerSec,
		chunk.BlockAlign,
		chunk.BitsPerSample,
	}

	if extensible {
		fields = append(fields,
			uint16(22+len(chunk.Extensible.ExtraData)),
			chunk.Extensible.ValidBitsPerSample,
			chunk.Extensible.ChannelMask,
			chunk.Extensible.SubFormat,
		)
	}

	for _, v := range fields {
		if err := e.AddLE(v); err != nil {
			return fmt.Errorf("error encoding the fmt chunk - %w", err)
		}
	}

	if extensible && len(chunk.Extensible.ExtraData) > 0 {
		n, err := e.w.Write(chunk.Extensible.ExtraData)
		e.WrittenBytes += n

		if err != nil {
			return fmt.Errorf("error encoding extensible extra data - %w", err)
		}
	}

	return nil
}

func (e *Encoder) writeMetadata() error {
	if e.Metadata == nil {
		return nil
	}

	if info := encodeInfoChunk(e.Metadata); len(info) > 0 {
		if err := e.writeChunk(CIDList, info); err != nil {
			return err
		}
	}

	smpl, err := encodeSamplerChunk(e.Metadata.SamplerInfo)
	if err != nil {
		return err
	}

	if len(smpl) > 0 {
		return e.writeChunk(CIDSmpl, smpl)
	}

	return nil
}

func (e *Encoder) writeChunk(id [4]byte, data []byte) error {
	if err := e.AddBE(id); err != nil {
		return fmt.Errorf("failed to write %s chunk id: %w", id, err)
	}

	if err := e.AddLE(uint32(len(data))); err != nil {
		return fmt.Errorf("failed to write %s chunk size: %w", id, err)
	}

	if len(data)%2 == 1 {
		data = append(data, 0)
	}

	n, err := e.w.Write(data)
	e.WrittenBytes += n

	if err != nil {
		return fmt.Errorf("failed to write %s chunk: %w", id, err)
	}

	return nil
}

// Close flushes the content to disk, make sure the headers are up to date
// Note that the underlying writer is NOT being closed.
func (e *Encoder) Close() error {
	if e == nil || e.w == nil {
		return nil
	}

	if !e.wroteHeader {
		if err := e.writeHeader(); err != nil {
			return err
		}
	}

	if e.pcmBytes%2 == 1 {
		n, err := e.w.Write([]byte{0})
		e.WrittenBytes += n

		if err != nil {
			return fmt.Errorf("failed to pad the data chunk: %w", err)
		}
	}

	// metadata goes after the data to not trip readers that stop at the
	// first unknown chunk
	if err := e.writeMetadata(); err != nil {
		return fmt.Errorf("failed to write metadata - %w", err)
	}

	total := uint32(e.WrittenBytes) - 8

	if _, err := e.w.Seek(4, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to file size position: %w", err)
	}

	if err := binary.Write(e.w, binary.LittleEndian, total); err != nil {
		return fmt.Errorf("%w when writing the total written bytes", err)
	}

	if e.pcmChunkStarted {
		if _, err := e.w.Seek(int64(e.pcmChunkSizePos), io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to PCM chunk size position: %w", err)
		}

		if err := binary.Write(e.w, binary.LittleEndian, uint32(e.pcmBytes)); err != nil {
			return fmt.Errorf("%w when writing wav data chunk size header", err)
		}
	}

	if _, err := e.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of file: %w", err)
	}

	if f, ok := e.w.(*os.File); ok {
		return f.Sync()
	}

	return nil
}
