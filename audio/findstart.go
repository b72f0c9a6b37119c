package audio

import "math"

// DefaultSilenceThreshold is the capture silence floor, five counts of
// 16-bit full scale.
const DefaultSilenceThreshold = 5.0 / 32768.0

// DefaultStartSearchWindow bounds the leading-silence scan in samples.
const DefaultStartSearchWindow = 100000

// FindStart returns the index of the first sample whose magnitude exceeds
// threshold, scanning at most maxSearch samples. Returns -1 when the
// scanned region stays at or below threshold.
func FindStart(samples []float64, threshold float64, maxSearch int) int {
	limit := len(samples)
	if maxSearch < limit {
		limit = maxSearch
	}

	for i := 0; i < limit; i++ {
		if math.Abs(samples[i]) > threshold {
			return i
		}
	}

	return -1
}
