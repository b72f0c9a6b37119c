package audio

import (
	"testing"
	"time"
)

func TestClipLenAndDuration(t *testing.T) {
	c := &Clip{Samples: make([]float64, 24000), SampleRate: 48000}

	if c.Len() != 24000 {
		t.Fatalf("Len() = %d, want 24000", c.Len())
	}

	if got := c.Duration(); got != 500*time.Millisecond {
		t.Fatalf("Duration() = %v, want 500ms", got)
	}
}

func TestClipDurationZeroRate(t *testing.T) {
	c := &Clip{Samples: make([]float64, 100)}
	if got := c.Duration(); got != 0 {
		t.Fatalf("Duration() = %v, want 0 for missing sample rate", got)
	}
}

func TestClipClone(t *testing.T) {
	c := &Clip{Samples: []float64{0.1, -0.2, 0.3}, SampleRate: 44100}

	d := c.Clone()
	if d.SampleRate != c.SampleRate || d.Len() != c.Len() {
		t.Fatalf("clone mismatch: %+v vs %+v", d, c)
	}

	d.Samples[0] = 0.9
	if c.Samples[0] != 0.1 {
		t.Fatal("clone shares storage with original")
	}
}
