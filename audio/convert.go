package audio

import (
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
)

const (
	pcm16Unit = 32768.0
	pcm16Peak = 32767.0
)

// Int16ToFloat converts a 16-bit PCM sample to a normalized float.
func Int16ToFloat(v int16) float64 {
	return float64(v) / pcm16Unit
}

// FloatToInt16 converts a normalized float to a 16-bit PCM sample.
// Input is clamped to [-1, 1] and rounded at the same 32768 scale the
// decode path divides by, capped at 32767 so full scale stays
// representable. Rounding keeps the round-trip error within half a
// quantization step.
func FloatToInt16(v float64) int16 {
	scaled := math.Round(core.Clamp(v, -1, 1) * pcm16Unit)

	return int16(math.Min(scaled, pcm16Peak))
}

// DownmixInt16 averages a stereo 16-bit frame into one normalized sample.
func DownmixInt16(left, right int16) float64 {
	return float64(int32(left)+int32(right)) / (2 * pcm16Unit)
}

// DownmixFloat averages a stereo float frame.
func DownmixFloat(left, right float64) float64 {
	return (left + right) / 2
}
