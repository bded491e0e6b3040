package wav

import "encoding/binary"

const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE

	// FormatPCM is the integer PCM format tag.
	FormatPCM = wavFormatPCM
	// FormatIEEEFloat is the IEEE floating point format tag.
	FormatIEEEFloat = wavFormatIEEEFloat
	// FormatExtensible is the WAVE_FORMAT_EXTENSIBLE tag.
	FormatExtensible = wavFormatExtensible
)

// ksSubFormatGUIDTail is shared by every KSDATAFORMAT_SUBTYPE GUID after
// the leading format tag.
var ksSubFormatGUIDTail = [12]byte{0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// FmtChunk stores the parsed WAV fmt chunk, including extensible metadata.
type FmtChunk struct {
	FormatTag      uint16
	NumChannels    uint16
	SampleRate     uint32
	AvgBytesPerSec uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ExtraData      []byte
	Extensible     *FmtExtensible
}

// FmtExtensible stores WAVE_FORMAT_EXTENSIBLE extra fields.
type FmtExtensible struct {
	ValidBitsPerSample uint16
	ChannelMask        uint32
	SubFormat          [16]byte
	ExtraData          []byte
}

// Clone returns a deep copy of the chunk.
func (f *FmtChunk) Clone() *FmtChunk {
	if f == nil {
		return nil
	}

	out := *f

	out.ExtraData = append([]byte(nil), f.ExtraData...)
	if f.Extensible != nil {
		ext := *f.Extensible
		ext.ExtraData = append([]byte(nil), f.Extensible.ExtraData...)
		out.Extensible = &ext
	}

	return &out
}

// EffectiveFormatTag resolves WAVE_FORMAT_EXTENSIBLE to the format tag of
// its sub format.
func (f *FmtChunk) EffectiveFormatTag() uint16 {
	if f == nil {
		return 0
	}

	if f.FormatTag == wavFormatExtensible && f.Extensible != nil {
		return binary.LittleEndian.Uint16(f.Extensible.SubFormat[:2])
	}

	return f.FormatTag
}

func makeSubFormatGUID(formatTag uint16) [16]byte {
	var guid [16]byte
	binary.LittleEndian.PutUint32(guid[:4], uint32(formatTag))
	copy(guid[4:], ksSubFormatGUIDTail[:])

	return guid
}
