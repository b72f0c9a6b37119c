package wav

import (
	"fmt"
	"io"
)

// CaptureWriter records an unknown-length stream: it writes a zero-frame
// header up front, appends converted sample bursts, and patches the header
// with the true frame count on Finalize.
type CaptureWriter struct {
	ws         io.WriteSeeker
	sampleRate int
	enc        Encoding
	buf        []byte
	frames     int
	finalized  bool
}

// NewCaptureWriter writes the placeholder header and returns a writer
// ready to accept samples.
func NewCaptureWriter(ws io.WriteSeeker, sampleRate int, enc Encoding) (*CaptureWriter, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav: sample rate must be > 0: %d", sampleRate)
	}
	if !enc.valid() {
		return nil, fmt.Errorf("wav: encoding must be pcm16 or float32: %d", int(enc))
	}

	var hdr [headerSize]byte
	encodeHeader(hdr[:], sampleRate, 0, enc)

	if _, err := ws.Write(hdr[:]); err != nil {
		return nil, fmt.Errorf("wav: write capture header: %w", err)
	}

	return &CaptureWriter{
		ws:         ws,
		sampleRate: sampleRate,
		enc:        enc,
		buf:        make([]byte, payloadChunkFrames*enc.bytesPerSample()),
	}, nil
}

// WriteSamples appends a burst of samples to the stream.
func (c *CaptureWriter) WriteSamples(samples []float64) error {
	if c.finalized {
		return ErrCaptureFinalized
	}

	for start := 0; start < len(samples); start += payloadChunkFrames {
		end := min(start+payloadChunkFrames, len(samples))

		n := encodeInto(c.buf, samples[start:end], c.enc)
		if _, err := c.ws.Write(c.buf[:n]); err != nil {
			return fmt.Errorf("wav: write samples: %w", err)
		}
	}

	c.frames += len(samples)

	return nil
}

// Frames returns the number of frames written so far.
func (c *CaptureWriter) Frames() int {
	return c.frames
}

// Finalize patches the header with the true frame count and leaves the
// stream positioned at the end of the payload. The writer accepts no
// further samples.
func (c *CaptureWriter) Finalize() error {
	if c.finalized {
		return ErrCaptureFinalized
	}

	if err := FixHeader(c.ws, c.sampleRate, c.frames, c.enc); err != nil {
		return err
	}

	c.finalized = true

	return nil
}
