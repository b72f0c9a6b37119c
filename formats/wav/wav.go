package wav

import (
	"encoding/binary"
	"fmt"
)

// headerSize is the canonical header length written by the encoder:
// RIFF descriptor, 16-byte fmt chunk, data chunk header.
const headerSize = 44

// maxDataChunkBytes caps payload allocation against corrupt size fields.
const maxDataChunkBytes = 1 << 30

// Encoding selects the sample format written by the encoder.
type Encoding int

const (
	// EncodingPCM16 stores samples as 16-bit signed PCM.
	EncodingPCM16 Encoding = iota
	// EncodingFloat32 stores samples as 32-bit IEEE floats.
	EncodingFloat32
)

// String returns the encoding name used on the command line.
func (e Encoding) String() string {
	switch e {
	case EncodingPCM16:
		return "pcm16"
	case EncodingFloat32:
		return "float32"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding maps an encoding name to its value.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "pcm16":
		return EncodingPCM16, nil
	case "float32":
		return EncodingFloat32, nil
	default:
		return 0, fmt.Errorf("wav: encoding must be pcm16 or float32: %q", s)
	}
}

func (e Encoding) valid() bool {
	return e == EncodingPCM16 || e == EncodingFloat32
}

func (e Encoding) formatTag() uint16 {
	if e == EncodingFloat32 {
		return formatIEEEFloat
	}
	return formatPCM
}

func (e Encoding) bytesPerSample() int {
	if e == EncodingFloat32 {
		return 4
	}
	return 2
}

const (
	formatPCM       = 1
	formatIEEEFloat = 3
)

// Header is the parsed fmt and data description of a WAV stream.
type Header struct {
	Format        int
	Channels      int
	SampleRate    int
	ByteRate      int
	BlockAlign    int
	BitsPerSample int
	DataBytes     int
}

// Frames returns the number of sample frames described by the header.
func (h Header) Frames() int {
	frame := h.Channels * h.BitsPerSample / 8
	if frame <= 0 {
		return 0
	}
	return h.DataBytes / frame
}

// Encoding reports the sample encoding, false for any format/bit-depth
// combination the codec does not handle.
func (h Header) Encoding() (Encoding, bool) {
	switch {
	case h.Format == formatPCM && h.BitsPerSample == 16:
		return EncodingPCM16, true
	case h.Format == formatIEEEFloat && h.BitsPerSample == 32:
		return EncodingFloat32, true
	default:
		return 0, false
	}
}

// encodeHeader fills hdr with the canonical 44-byte mono header.
func encodeHeader(hdr []byte, sampleRate, frames int, enc Encoding) {
	bps := enc.bytesPerSample()
	dataSize := frames * bps

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(36+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], enc.formatTag())
	binary.LittleEndian.PutUint16(hdr[22:24], 1)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(sampleRate*bps))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(bps))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(8*bps))
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))
}
