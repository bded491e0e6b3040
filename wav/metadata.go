package wav

// Metadata holds the chunks decoded by ReadMetadata and written by
// Encoder.Close.
type Metadata struct {
	// Title is the INFO INAM entry.
	Title string
	// Software is the INFO ISFT entry.
	Software string
	// Comments is the INFO ICMT entry.
	Comments string
	// Product is the INFO IPRD entry.
	Product string

	SamplerInfo *SamplerInfo
}

func (m *Metadata) hasInfo() bool {
	return m != nil && (m.Title != "" || m.Software != "" || m.Comments != "" || m.Product != "")
}

// SamplerInfo is the content of a smpl chunk.
type SamplerInfo struct {
	Manufacturer [4]byte
	Product      [4]byte
	// SamplePeriod is the duration of one sample in nanoseconds.
	SamplePeriod uint32
	// MIDIUnityNote is the MIDI note that plays the sample at its
	// original pitch.
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	Loops             []*SampleLoop
}

// SampleLoop is one loop of a smpl chunk. Start and End are sample frame
// offsets, End is inclusive.
type SampleLoop struct {
	CuePointID [4]byte
	// Type is 0 for a forward loop, 1 for ping-pong and 2 for reverse.
	Type      uint32
	Start     uint32
	End       uint32
	Fraction  uint32
	PlayCount uint32
}

// ForwardLoop returns sampler info with a single forward loop over frames
// frames played at sampleRate. The unity note is middle C.
func ForwardLoop(frames, sampleRate int) *SamplerInfo {
	info := &SamplerInfo{
		MIDIUnityNote:  60,
		NumSampleLoops: 1,
		Loops:          []*SampleLoop{{End: uint32(max(frames-1, 0))}},
	}

	if sampleRate > 0 {
		info.SamplePeriod = uint32(1e9 / sampleRate)
	}

	return info
}
