package shift

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrTooFewPitchMarks reports that pitch-mark detection produced fewer
	// than two marks, leaving no periods to resynthesize from.
	ErrTooFewPitchMarks = errors.New("shift: too few pitch marks detected")
)

const (
	// MinRatio and MaxRatio bound the usable pitch-shift range. Finite
	// positive ratios outside the range are clamped, not rejected.
	MinRatio = 0.5
	MaxRatio = 2.0

	// Output peaks are scaled to normTarget when the pre-normalization
	// peak exceeds normFloor; quieter results are left untouched.
	normTarget = 0.9
	normFloor  = 0.001
)

// Engine selects a pitch-shifting implementation.
type Engine int

const (
	// EnginePhaseVocoder shifts pitch in the frequency domain using an
	// STFT with per-bin phase propagation.
	EnginePhaseVocoder Engine = iota

	// EnginePsola shifts pitch in the time domain by repositioning
	// pitch-synchronous grains.
	EnginePsola
)

// String returns the lowercase engine name.
func (e Engine) String() string {
	switch e {
	case EnginePhaseVocoder:
		return "vocoder"
	case EnginePsola:
		return "psola"
	default:
		return fmt.Sprintf("engine(%d)", int(e))
	}
}

// ParseEngine maps a name to an Engine. It accepts "vocoder" and
// "psola" (case-insensitive).
func ParseEngine(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vocoder":
		return EnginePhaseVocoder, nil
	case "psola":
		return EnginePsola, nil
	default:
		return 0, fmt.Errorf("shift: unknown engine %q", name)
	}
}

// Processor is the contract shared by every pitch-shifting engine.
//
// Process accepts a mono buffer and returns a shifted buffer of exactly
// the same length, or nil when processing fails; a failed call never
// yields a partially filled result. Implementations clamp the pitch
// ratio to [MinRatio, MaxRatio].
type Processor interface {
	SampleRate() float64
	SetSampleRate(sampleRate float64) error

	PitchRatio() float64
	SetPitchRatio(ratio float64) error

	PitchSemitones() float64
	SetPitchSemitones(semitones float64) error

	Reset()

	Process(input []float64) []float64
	ProcessWithError(input []float64) ([]float64, error)
	ProcessInPlace(buf []float64) error
}

var (
	_ Processor = (*PhaseVocoder)(nil)
	_ Processor = (*Psola)(nil)
)

// New constructs the requested engine at the given sample rate with an
// identity pitch ratio.
func New(engine Engine, sampleRate float64) (Processor, error) {
	switch engine {
	case EnginePhaseVocoder:
		return NewPhaseVocoder(sampleRate)
	case EnginePsola:
		return NewPsola(sampleRate)
	default:
		return nil, fmt.Errorf("shift: unknown engine %q", engine)
	}
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
