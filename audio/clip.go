// Package audio provides the mono sample buffer shared by the codec, the
// pitch estimator, and the shift engines.
package audio

import "time"

// Clip is a mono audio buffer with normalized float samples in [-1, 1].
//
// Every producer returns a freshly allocated Clip and keeps no reference
// to it afterwards, so callers own what they receive.
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples.
func (c *Clip) Len() int {
	return len(c.Samples)
}

// Duration returns the clip length as wall time.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}

	seconds := float64(len(c.Samples)) / float64(c.SampleRate)

	return time.Duration(seconds * float64(time.Second))
}

// Clone returns a deep copy sharing no storage with the receiver.
func (c *Clip) Clone() *Clip {
	out := &Clip{
		Samples:    make([]float64, len(c.Samples)),
		SampleRate: c.SampleRate,
	}
	copy(out.Samples, c.Samples)

	return out
}
