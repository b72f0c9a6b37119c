package wav

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-tuner/audio"
)

// payloadChunkFrames sizes the conversion buffer so large clips stream
// through a fixed allocation.
const payloadChunkFrames = 8192

// Encode writes clip as a mono WAV stream with the canonical 44-byte
// header. PCM16 samples are clamped to [-1, 1] and rounded at the 32768
// scale with +1.0 capped at 32767; float32 samples keep their bit
// pattern.
func Encode(w io.Writer, clip *audio.Clip, enc Encoding) error {
	if clip == nil {
		return fmt.Errorf("wav: clip must not be nil")
	}
	if clip.SampleRate <= 0 {
		return fmt.Errorf("wav: sample rate must be > 0: %d", clip.SampleRate)
	}
	if !enc.valid() {
		return fmt.Errorf("wav: encoding must be pcm16 or float32: %d", int(enc))
	}

	var hdr [headerSize]byte
	encodeHeader(hdr[:], clip.SampleRate, len(clip.Samples), enc)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: write header: %w", err)
	}

	return writeSamples(w, clip.Samples, enc)
}

// EncodeFile writes clip to path, replacing any existing file.
func EncodeFile(path string, clip *audio.Clip, enc Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Encode(f, clip, enc); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// FixHeader rewrites the 44 header bytes in place once the true frame
// count is known, then restores the stream position.
func FixHeader(ws io.WriteSeeker, sampleRate, frames int, enc Encoding) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wav: sample rate must be > 0: %d", sampleRate)
	}
	if frames < 0 {
		return fmt.Errorf("wav: frame count must be >= 0: %d", frames)
	}
	if !enc.valid() {
		return fmt.Errorf("wav: encoding must be pcm16 or float32: %d", int(enc))
	}

	pos, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wav: fix header: %w", err)
	}

	if _, err := ws.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wav: fix header: %w", err)
	}

	var hdr [headerSize]byte
	encodeHeader(hdr[:], sampleRate, frames, enc)

	if _, err := ws.Write(hdr[:]); err != nil {
		return fmt.Errorf("wav: fix header: %w", err)
	}

	if _, err := ws.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("wav: fix header: %w", err)
	}

	return nil
}

func writeSamples(w io.Writer, samples []float64, enc Encoding) error {
	buf := make([]byte, payloadChunkFrames*enc.bytesPerSample())

	for start := 0; start < len(samples); start += payloadChunkFrames {
		end := min(start+payloadChunkFrames, len(samples))

		n := encodeInto(buf, samples[start:end], enc)
		if _, err := w.Write(buf[:n]); err != nil {
			return fmt.Errorf("wav: write samples: %w", err)
		}
	}

	return nil
}

func encodeInto(dst []byte, samples []float64, enc Encoding) int {
	switch enc {
	case EncodingPCM16:
		for i, s := range samples {
			binary.LittleEndian.PutUint16(dst[2*i:], uint16(audio.FloatToInt16(s)))
		}
		return 2 * len(samples)
	case EncodingFloat32:
		for i, s := range samples {
			binary.LittleEndian.PutUint32(dst[4*i:], math.Float32bits(float32(s)))
		}
		return 4 * len(samples)
	default:
		return 0
	}
}
