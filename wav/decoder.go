package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/riff"
)

var (
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDSmpl is the chunk ID for a smpl chunk.
	CIDSmpl = [4]byte{'s', 'm', 'p', 'l'}
	// CIDInfo is the list type of an INFO list.
	CIDInfo = []byte{'I', 'N', 'F', 'O'}

	// ErrPCMDataNotFound is returned when PCM data chunk is not found.
	ErrPCMDataNotFound = errors.New("PCM data not found")
	// ErrDurationNilPointer is returned when calculating duration on a nil decoder.
	ErrDurationNilPointer = errors.New("can't calculate the duration of a nil pointer")
	// ErrNotIntegerPCM is returned by FullIntBuffer for float content.
	ErrNotIntegerPCM = errors.New("not integer PCM")

	errNilChunkOrParser       = errors.New("nil chunk/parser pointer")
	errUnhandledByteDepth     = errors.New("unhandled byte depth")
	errUnhandledFloatBitDepth = errors.New("unhandled float bit depth")
	errUnsupportedWavFormat   = errors.New("unsupported wav format")
)

// Decoder handles the decoding of wav files.
type Decoder struct {
	r      io.ReadSeeker
	parser *riff.Parser

	NumChans   uint16
	BitDepth   uint16
	SampleRate uint32

	AvgBytesPerSec uint32
	// WavAudioFormat is the format tag with WAVE_FORMAT_EXTENSIBLE resolved.
	WavAudioFormat uint16
	FmtChunk       *FmtChunk

	err             error
	PCMSize         int
	pcmDataAccessed bool
	// PCMChunk is available so we can use the LimitReader
	PCMChunk *riff.Chunk
	// Metadata for the current file
	Metadata *Metadata
}

// NewDecoder creates a decoder for the passed wav reader.
// Note that the reader doesn't get rewinded as the container is processed.
func NewDecoder(r io.ReadSeeker) *Decoder {
	return &Decoder{
		r:      r,
		parser: riff.New(r),
	}
}

// PCMLen returns the total number of bytes in the PCM data chunk.
func (d *Decoder) PCMLen() int64 {
	if d == nil {
		return 0
	}

	return int64(d.PCMSize)
}

// Err returns the first non-EOF error that was encountered by the Decoder.
func (d *Decoder) Err() error {
	if errors.Is(d.err, io.EOF) {
		return nil
	}

	return d.err
}

// EOF returns positively if the underlying reader reached the end of file.
func (d *Decoder) EOF() bool {
	return d == nil || errors.Is(d.err, io.EOF)
}

// IsValidFile verifies that the file is valid/readable.
func (d *Decoder) IsValidFile() bool {
	d.err = d.readHeaders()
	if d.err != nil {
		return false
	}

	if d.NumChans < 1 || d.BitDepth < 8 {
		return false
	}

	dur, err := d.Duration()
	if err != nil || dur <= 0 {
		return false
	}

	return true
}

// ReadInfo reads the underlying reader until the fmt chunk is parsed.
// This method is safe to call multiple times.
func (d *Decoder) ReadInfo() {
	d.err = d.readHeaders()
}

// FormatChunk returns a copy of the parsed fmt chunk.
func (d *Decoder) FormatChunk() *FmtChunk {
	if d == nil {
		return nil
	}

	return d.FmtChunk.Clone()
}

// EffectiveFormat returns the format tag of the samples, resolving
// WAVE_FORMAT_EXTENSIBLE to its sub format.
func (d *Decoder) EffectiveFormat() uint16 {
	if d == nil {
		return 0
	}

	if d.FmtChunk != nil {
		return d.FmtChunk.EffectiveFormatTag()
	}

	return d.WavAudioFormat
}

// IsFloat reports whether the samples are IEEE floats.
func (d *Decoder) IsFloat() bool {
	return d.EffectiveFormat() == wavFormatIEEEFloat
}

// ReadMetadata parses the LIST/INFO and smpl chunks into d.Metadata.
// The entire file will be read and should be rewinded if more data must be
// accessed.
func (d *Decoder) ReadMetadata() {
	if d.Metadata != nil {
		return
	}

	d.ReadInfo()

	if d.Err() != nil {
		return
	}

	for {
		chunk, err := d.NextChunk()
		if err != nil {
			break
		}

		switch chunk.ID {
		case riff.DataFormatID:
			chunk.Drain()

			if chunk.Size%2 == 1 {
				_, err = io.CopyN(io.Discard, d.r, 1)
			}
		case CIDList:
			err = d.decodeListChunk(chunk)
		case CIDSmpl:
			err = d.decodeSamplerChunk(chunk)
		default:
			chunk.Drain()
		}

		if err != nil {
			d.err = err

			return
		}
	}

	// NextChunk stores the io.EOF that ends the walk
	if d.Metadata == nil {
		d.Metadata = &Metadata{}
	}
}

// FwdToPCM forwards the underlying reader until the start of the PCM chunk.
// If the PCM chunk was already read, no data will be found (you need to rewind).
func (d *Decoder) FwdToPCM() error {
	if d == nil {
		return ErrPCMDataNotFound
	}

	d.err = d.readHeaders()
	if d.err != nil {
		return d.err
	}

	var chunk *riff.Chunk
	for d.err == nil {
		chunk, d.err = d.NextChunk()
		if d.err != nil {
			if errors.Is(d.err, io.EOF) {
				return ErrPCMDataNotFound
			}

			return d.err
		}

		if chunk.ID == riff.DataFormatID {
			d.PCMSize = chunk.Size
			d.PCMChunk = chunk

			break
		}

		chunk.Drain()
	}

	d.pcmDataAccessed = true

	return nil
}

// WasPCMAccessed returns positively if the PCM data was previously accessed.
func (d *Decoder) WasPCMAccessed() bool {
	if d == nil {
		return false
	}

	return d.pcmDataAccessed
}

// FullPCMBuffer is an inefficient way to access all the PCM data contained in the
// audio container. The entire PCM data is held in memory, normalized to
// [-1, 1].
func (d *Decoder) FullPCMBuffer() (*audio.Float32Buffer, error) {
	if err := d.fwdOnce(); err != nil {
		return nil, err
	}

	decodeF, err := sampleDecodeFloat32Func(int(d.BitDepth), d.EffectiveFormat())
	if err != nil {
		return nil, fmt.Errorf("could not get sample decode func %w", err)
	}

	buf := &audio.Float32Buffer{
		Data:           make([]float32, 0, d.capacityHint()),
		Format:         d.Format(),
		SourceBitDepth: int(d.BitDepth),
	}

	sample := make([]byte, d.storageBytes())
	for {
		v, err := decodeF(d.PCMChunk, sample)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, err
		}

		buf.Data = append(buf.Data, v)
	}

	return buf, nil
}

// FullIntBuffer returns the integer PCM data at its stored bit depth.
// 8-bit samples are unsigned as stored. Float content returns
// ErrNotIntegerPCM.
func (d *Decoder) FullIntBuffer() (*audio.IntBuffer, error) {
	if err := d.fwdOnce(); err != nil {
		return nil, err
	}

	if format := d.EffectiveFormat(); format != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrNotIntegerPCM, format)
	}

	decodeF, err := sampleDecodeFunc(int(d.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("could not get sample decode func %w", err)
	}

	buf := &audio.IntBuffer{
		Data:           make([]int, 0, d.capacityHint()),
		Format:         d.Format(),
		SourceBitDepth: int(d.BitDepth),
	}

	sample := make([]byte, d.storageBytes())
	for {
		v, err := decodeF(d.PCMChunk, sample)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}

			return nil, err
		}

		buf.Data = append(buf.Data, v)
	}

	return buf, nil
}

// Format returns the audio format of the decoded content.
func (d *Decoder) Format() *audio.Format {
	if d == nil {
		return nil
	}

	return &audio.Format{
		NumChannels: int(d.NumChans),
		SampleRate:  int(d.SampleRate),
	}
}

// NextChunk returns the next available chunk.
func (d *Decoder) NextChunk() (*riff.Chunk, error) {
	if d.err = d.readHeaders(); d.err != nil {
		d.err = fmt.Errorf("failed to read header - %w", d.err)
		return nil, d.err
	}

	var (
		id   [4]byte
		size uint32
	)

	id, size, d.err = d.parser.IDnSize()
	if d.err != nil {
		d.err = fmt.Errorf("error reading chunk header - %w", d.err)
		return nil, d.err
	}

	// all RIFF chunks must be word aligned; the pad byte of an odd sized
	// chunk is not part of its declared size. The data chunk keeps its
	// declared size so the pad is never read as a sample.
	if size%2 == 1 && id != riff.DataFormatID {
		size++
	}

	chnk := &riff.Chunk{
		ID:   id,
		Size: int(size),
		R:    io.LimitReader(d.r, int64(size)),
	}

	return chnk, d.err
}

// Duration returns the time duration for the current audio container.
func (d *Decoder) Duration() (time.Duration, error) {
	if d == nil || d.parser == nil {
		return 0, ErrDurationNilPointer
	}

	dur, err := d.parser.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to get duration: %w", err)
	}

	return dur, nil
}

func (d *Decoder) fwdOnce() error {
	if !d.WasPCMAccessed() {
		if err := d.FwdToPCM(); err != nil {
			return err
		}
	}

	if d.PCMChunk == nil {
		return ErrPCMChunkNotFound
	}

	return nil
}

func (d *Decoder) storageBytes() int {
	return bytesPerSample(int(d.BitDepth))
}

func (d *Decoder) capacityHint() int {
	if d.BitDepth == 0 {
		return 0
	}

	return d.PCMSize / d.storageBytes()
}

// readHeaders is safe to call multiple times.
func (d *Decoder) readHeaders() error {
	if d == nil || d.NumChans > 0 {
		return nil
	}

	id, size, err := d.parser.IDnSize()
	if err != nil {
		return fmt.Errorf("failed to read chunk ID and size: %w", err)
	}

	d.parser.ID = id
	if d.parser.ID != riff.RiffID {
		return fmt.Errorf("%s - %w", d.parser.ID, riff.ErrFmtNotSupported)
	}

	d.parser.Size = size

	if err := binary.Read(d.r, binary.BigEndian, &d.parser.Format); err != nil {
		return fmt.Errorf("failed to read format: %w", err)
	}

	// chunks found before fmt are skipped here and walked again once the
	// reader is rewound past them
	var (
		chunk       *riff.Chunk
		rewindBytes int64
	)

	for {
		chunk, err = d.parser.NextChunk()
		if err != nil {
			return fmt.Errorf("fmt chunk not found: %w", err)
		}

		if chunk.ID == riff.FmtID {
			return d.processFmtChunk(chunk, rewindBytes)
		}

		rewindBytes += int64(chunk.Size) + 8
		if _, err := io.CopyN(io.Discard, d.r, int64(chunk.Size)); err != nil {
			return fmt.Errorf("failed to skip %s chunk: %w", chunk.ID, err)
		}
	}
}

func (d *Decoder) processFmtChunk(chunk *riff.Chunk, rewindBytes int64) error {
	fmtChunk, err := decodeWavHeaderChunk(chunk, d.parser)
	if err != nil {
		return fmt.Errorf("failed to decode fmt chunk: %w", err)
	}

	d.FmtChunk = fmtChunk
	d.NumChans = d.parser.NumChannels
	d.BitDepth = d.parser.BitsPerSample
	d.SampleRate = d.parser.SampleRate
	d.WavAudioFormat = d.parser.WavAudioFormat
	d.AvgBytesPerSec = d.parser.AvgBytesPerSec

	if rewindBytes > 0 {
		if _, err := d.r.Seek(-(rewindBytes + int64(chunk.Size) + 8), io.SeekCurrent); err != nil {
			return fmt.Errorf("failed to rewind to the first chunk: %w", err)
		}
	}

	return nil
}

func decodeWavHeaderChunk(chunk *riff.Chunk, parser *riff.Parser) (*FmtChunk, error) {
	if chunk == nil || parser == nil {
		return nil, errNilChunkOrParser
	}

	fmtChunk := &FmtChunk{}

	for _, field := range []struct {
		name string
		dst  any
	}{
		{"wav format", &fmtChunk.FormatTag},
		{"channels", &fmtChunk.NumChannels},
		{"sample rate", &fmtChunk.SampleRate},
		{"avg bytes/sec", &fmtChunk.AvgBytesPerSec},
		{"block align", &fmtChunk.BlockAlign},
		{"bit depth", &fmtChunk.BitsPerSample},
	} {
		if err := chunk.ReadLE(field.dst); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", field.name, err)
		}
	}

	parser.NumChannels = fmtChunk.NumChannels
	parser.SampleRate = fmtChunk.SampleRate
	parser.AvgBytesPerSec = fmtChunk.AvgBytesPerSec
	parser.BlockAlign = fmtChunk.BlockAlign
	parser.BitsPerSample = fmtChunk.BitsPerSample
	parser.WavAudioFormat = fmtChunk.FormatTag

	if chunk.Size <= 16 {
		return fmtChunk, nil
	}

	var extraSize uint16
	if err := chunk.ReadLE(&extraSize); err != nil {
		return nil, fmt.Errorf("failed to read fmt extension size: %w", err)
	}

	fmtChunk.ExtraData = make([]byte, extraSize)
	if extraSize > 0 {
		if err := chunk.ReadLE(&fmtChunk.ExtraData); err != nil {
			return nil, fmt.Errorf("failed to read fmt extension data: %w", err)
		}
	}

	chunk.Drain()

	if fmtChunk.FormatTag != wavFormatExtensible || extraSize < 22 {
		return fmtChunk, nil
	}

	ext := &FmtExtensible{
		ValidBitsPerSample: binary.LittleEndian.Uint16(fmtChunk.ExtraData[0:2]),
		ChannelMask:        binary.LittleEndian.Uint32(fmtChunk.ExtraData[2:6]),
	}
	copy(ext.SubFormat[:], fmtChunk.ExtraData[6:22])

	if len(fmtChunk.ExtraData) > 22 {
		ext.ExtraData = append(ext.ExtraData, fmtChunk.ExtraData[22:]...)
	}

	fmtChunk.Extensible = ext
	parser.WavAudioFormat = fmtChunk.EffectiveFormatTag()

	return fmtChunk, nil
}

func bytesPerSample(bitDepth int) int {
	return (bitDepth-1)/8 + 1
}

// sampleDecodeFunc returns a function that can be used to convert
// a byte range into an int value based on the amount of bits used per sample.
// Note that 8bit samples are unsigned, all other values are signed.
func sampleDecodeFunc(bitsPerSample int) (func(io.Reader, []byte) (int, error), error) {
	// NOTE: WAV PCM data is stored using little-endian
	switch {
	case bitsPerSample == 8:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := io.ReadFull(r, buf[:1])
			return int(buf[0]), err
		}, nil
	case bitsPerSample > 8 && bitsPerSample <= 16:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := io.ReadFull(r, buf[:2])
			return int(int16(binary.LittleEndian.Uint16(buf[:2]))), err
		}, nil
	case bitsPerSample > 16 && bitsPerSample <= 24:
		return func(r io.Reader, buf []byte) (int, error) {
			if _, err := io.ReadFull(r, buf[:3]); err != nil {
				return 0, err
			}

			return int(audio.Int24LETo32(buf[:3])), nil
		}, nil
	case bitsPerSample > 24 && bitsPerSample <= 32:
		return func(r io.Reader, buf []byte) (int, error) {
			_, err := io.ReadFull(r, buf[:4])
			return int(int32(binary.LittleEndian.Uint32(buf[:4]))), err
		}, nil
	default:
		return nil, fmt.Errorf("%w: %d", errUnhandledByteDepth, bitsPerSample)
	}
}

// sampleDecodeFloat32Func returns a function that can be used to convert
// a byte range into a normalized float32 value.
func sampleDecodeFloat32Func(bitsPerSample int, wavFormat uint16) (func(io.Reader, []byte) (float32, error), error) {
	switch wavFormat {
	case wavFormatIEEEFloat:
		switch bitsPerSample {
		case 32:
			return func(r io.Reader, buf []byte) (float32, error) {
				if _, err := io.ReadFull(r, buf[:4]); err != nil {
					return 0, err
				}

				return clampFloat32(math.Float32frombits(binary.LittleEndian.Uint32(buf[:4])), -1, 1), nil
			}, nil
		case 64:
			return func(r io.Reader, buf []byte) (float32, error) {
				if _, err := io.ReadFull(r, buf[:8]); err != nil {
					return 0, err
				}

				return float32(clampFloat64(math.Float64frombits(binary.LittleEndian.Uint64(buf[:8])), -1, 1)), nil
			}, nil
		default:
			return nil, fmt.Errorf("%w: %d", errUnhandledFloatBitDepth, bitsPerSample)
		}
	case wavFormatPCM:
	default:
		return nil, fmt.Errorf("%w: %d", errUnsupportedWavFormat, wavFormat)
	}

	decodeInt, err := sampleDecodeFunc(bitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("failed to create int decoder: %w", err)
	}

	storageBitsPerSample := bytesPerSample(bitsPerSample) * 8

	return func(r io.Reader, buf []byte) (float32, error) {
		value, err := decodeInt(r, buf)
		if err != nil {
			return 0, err
		}

		return normalizePCMInt(value, storageBitsPerSample), nil
	}, nil
}
