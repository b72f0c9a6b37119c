package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-tuner/audio"
)

// ReadHeader parses the RIFF descriptor and walks chunks until the data
// chunk header has been consumed. On success the reader is positioned at
// the first payload byte, so decoding can continue from it directly.
//
// Non-data chunks are skipped by their declared size. An oversized or
// absent data chunk is an error; a fmt chunk must precede data.
func ReadHeader(r io.Reader) (Header, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Header{}, fmt.Errorf("wav: read RIFF header: %w", err)
	}

	if !bytes.HasPrefix(riff[0:4], []byte("RIFF")) || !bytes.HasPrefix(riff[8:12], []byte("WAVE")) {
		return Header{}, ErrNotWavFile
	}

	var (
		hdr     Header
		fmtSeen bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Header{}, ErrMissingDataChunk
			}
			return Header{}, fmt.Errorf("wav: read chunk header: %w", err)
		}

		size := int(binary.LittleEndian.Uint32(chunk[4:8]))

		switch {
		case bytes.Equal(chunk[0:4], []byte("fmt ")):
			if size < 16 {
				return Header{}, ErrNotWavFile
			}

			var fields [16]byte
			if _, err := io.ReadFull(r, fields[:]); err != nil {
				return Header{}, fmt.Errorf("wav: read fmt chunk: %w", err)
			}

			hdr.Format = int(binary.LittleEndian.Uint16(fields[0:2]))
			hdr.Channels = int(binary.LittleEndian.Uint16(fields[2:4]))
			hdr.SampleRate = int(binary.LittleEndian.Uint32(fields[4:8]))
			hdr.ByteRate = int(binary.LittleEndian.Uint32(fields[8:12]))
			hdr.BlockAlign = int(binary.LittleEndian.Uint16(fields[12:14]))
			hdr.BitsPerSample = int(binary.LittleEndian.Uint16(fields[14:16]))
			fmtSeen = true

			// Extension bytes carry nothing the codec needs.
			if size > 16 {
				if err := skipBytes(r, size-16); err != nil {
					return Header{}, err
				}
			}

		case bytes.Equal(chunk[0:4], []byte("data")):
			if !fmtSeen {
				return Header{}, ErrMissingFmtChunk
			}
			if size > maxDataChunkBytes {
				return Header{}, ErrOversizedData
			}

			hdr.DataBytes = size

			return hdr, nil

		default:
			if size > maxDataChunkBytes {
				return Header{}, ErrOversizedData
			}
			if err := skipBytes(r, size); err != nil {
				return Header{}, err
			}
		}
	}
}

// Decode reads a WAV stream into a mono clip. 16-bit PCM is normalized by
// 1/32768 and 32-bit float is taken verbatim; stereo input is downmixed by
// averaging. Any other format, bit depth, or channel count is rejected.
func Decode(r io.Reader) (*audio.Clip, error) {
	hdr, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	enc, ok := hdr.Encoding()
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	if hdr.Channels != 1 && hdr.Channels != 2 {
		return nil, ErrUnsupportedLayout
	}

	frameBytes := hdr.Channels * enc.bytesPerSample()
	frames := hdr.DataBytes / frameBytes

	payload := make([]byte, frames*frameBytes)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wav: truncated data chunk: %w", err)
	}

	samples := make([]float64, frames)
	decodeFrames(samples, payload, enc, hdr.Channels)

	return &audio.Clip{Samples: samples, SampleRate: hdr.SampleRate}, nil
}

// DecodeFile reads path into a mono clip.
func DecodeFile(path string) (*audio.Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

func decodeFrames(dst []float64, payload []byte, enc Encoding, channels int) {
	switch {
	case enc == EncodingPCM16 && channels == 1:
		for i := range dst {
			v := int16(binary.LittleEndian.Uint16(payload[2*i:]))
			dst[i] = audio.Int16ToFloat(v)
		}
	case enc == EncodingPCM16 && channels == 2:
		for i := range dst {
			l := int16(binary.LittleEndian.Uint16(payload[4*i:]))
			r := int16(binary.LittleEndian.Uint16(payload[4*i+2:]))
			dst[i] = audio.DownmixInt16(l, r)
		}
	case enc == EncodingFloat32 && channels == 1:
		for i := range dst {
			bits := binary.LittleEndian.Uint32(payload[4*i:])
			dst[i] = float64(math.Float32frombits(bits))
		}
	case enc == EncodingFloat32 && channels == 2:
		for i := range dst {
			l := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*i:]))
			r := math.Float32frombits(binary.LittleEndian.Uint32(payload[8*i+4:]))
			dst[i] = audio.DownmixFloat(float64(l), float64(r))
		}
	}
}

func skipBytes(r io.Reader, n int) error {
	if n <= 0 {
		return nil
	}

	if _, err := io.CopyN(io.Discard, r, int64(n)); err != nil {
		return fmt.Errorf("wav: skip chunk: %w", err)
	}

	return nil
}
