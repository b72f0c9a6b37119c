// Package testutil provides deterministic signal generators and
// comparison helpers for tests. Everything here is reproducible from
// its arguments so failures replay exactly.
package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine returns length samples of a sine at freqHz,
// starting at phase zero.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	buf := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range buf {
		buf[i] = amplitude * math.Sin(step*float64(i))
	}

	return buf
}

// DeterministicNoise returns uniform white noise in
// [-amplitude, amplitude] from a fixed seed.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	buf := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range buf {
		buf[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return buf
}

// Impulse returns a buffer that is zero everywhere except for a unit
// sample at pos. Out-of-range positions yield pure silence.
func Impulse(length, pos int) []float64 {
	buf := make([]float64, length)
	if pos >= 0 && pos < length {
		buf[pos] = 1
	}

	return buf
}

// DC returns length copies of value.
func DC(value float64, length int) []float64 {
	buf := make([]float64, length)
	for i := range buf {
		buf[i] = value
	}

	return buf
}

// Ones returns n samples at full positive scale.
func Ones(n int) []float64 {
	return DC(1, n)
}
