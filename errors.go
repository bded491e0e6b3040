package sswave

import "errors"

var (
	// ErrTruncatedImage is returned when fewer bytes are available at a
	// computed offset than the layout requires.
	ErrTruncatedImage = errors.New("truncated firmware image")
	// ErrIndexOutOfRange is returned for a wavetable, waveform or slot index
	// outside the layout.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNameNotFound is returned when no wavetable carries the requested name.
	ErrNameNotFound = errors.New("wavetable not found")
	// ErrUnsupportedChannelLayout is returned for audio that is not mono.
	ErrUnsupportedChannelLayout = errors.New("unsupported channel layout")
	// ErrUnsupportedSampleSubtype is returned for audio that is neither 16-bit
	// PCM, 24-bit PCM nor 32-bit float.
	ErrUnsupportedSampleSubtype = errors.New("unsupported sample subtype")
	// ErrInvalidSampleCount is returned when a waveform does not hold exactly
	// one cycle worth of samples.
	ErrInvalidSampleCount = errors.New("invalid sample count")
	// ErrInvalidImportCount is returned when an import is given no files or
	// more files than a wavetable has waveforms.
	ErrInvalidImportCount = errors.New("invalid import count")
	// ErrInvalidName is returned for names that can't be stored in a name slot.
	ErrInvalidName = errors.New("invalid wavetable name")
	// ErrInvalidLayout is returned by Layout.Validate.
	ErrInvalidLayout = errors.New("invalid firmware layout")
)
