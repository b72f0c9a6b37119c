package shift

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/interp"
	"github.com/cwbudde/algo-tuner/dsp/signal"
	"github.com/cwbudde/algo-tuner/dsp/spectrum"
	"github.com/cwbudde/algo-tuner/dsp/window"
)

const (
	defaultVocoderFrameSize = 2048
	defaultVocoderHop       = 512
	minVocoderFrameSize     = 64

	// The stretched scratch buffer carries 20% headroom over the ideal
	// length so late synthesis frames never run off the end.
	stretchHeadroom = 1.2

	// Samples whose accumulated window-overlap weight falls below this
	// floor stay unscaled; they only occur at the very edges where the
	// synthesis is near silent anyway.
	envelopeFloor = 1e-3
)

// PhaseVocoder shifts pitch in the frequency domain. Each call windows
// the input into overlapping frames, propagates per-bin phase at a
// synthesis hop scaled by the pitch ratio, overlap-adds the stretched
// result, and linearly resamples it back to the input length so the
// output duration always matches the input.
//
// Offline processor: Process analyzes one complete buffer and resets
// phase state on entry. Not safe for concurrent use.
type PhaseVocoder struct {
	sampleRate  float64
	pitchRatio  float64
	frameSize   int
	analysisHop int

	plan *algofft.Plan[complex128]

	windowCoeffs []float64
	omega        []float64
	prevPhase    []float64
	sumPhase     []float64
	magnitudes   []float64
	phases       []float64
	freqFrame    []complex128
	timeFrame    []complex128
}

// NewPhaseVocoder creates a phase vocoder with a 2048-sample frame, a
// 512-sample analysis hop, and an identity pitch ratio.
func NewPhaseVocoder(sampleRate float64) (*PhaseVocoder, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("phase vocoder sample rate must be positive and finite: %f", sampleRate)
	}

	v := &PhaseVocoder{
		sampleRate:  sampleRate,
		pitchRatio:  1.0,
		frameSize:   defaultVocoderFrameSize,
		analysisHop: defaultVocoderHop,
	}

	if err := v.rebuildState(); err != nil {
		return nil, err
	}

	return v, nil
}

// SampleRate returns the configured sample rate in Hz.
func (v *PhaseVocoder) SampleRate() float64 { return v.sampleRate }

// SetSampleRate updates the sample rate. The rate is metadata only; it
// does not change frame or hop geometry.
func (v *PhaseVocoder) SetSampleRate(sampleRate float64) error {
	if !isFinitePositive(sampleRate) {
		return fmt.Errorf("phase vocoder sample rate must be positive and finite: %f", sampleRate)
	}

	v.sampleRate = sampleRate

	return nil
}

// PitchRatio returns the current pitch ratio.
func (v *PhaseVocoder) PitchRatio() float64 { return v.pitchRatio }

// SetPitchRatio updates the pitch ratio. Non-finite or non-positive
// ratios are rejected; finite ratios outside [MinRatio, MaxRatio] are
// clamped to the range.
func (v *PhaseVocoder) SetPitchRatio(ratio float64) error {
	if !isFinitePositive(ratio) {
		return fmt.Errorf("phase vocoder pitch ratio must be positive and finite: %f", ratio)
	}

	v.pitchRatio = core.Clamp(ratio, MinRatio, MaxRatio)

	return nil
}

// PitchSemitones returns the current shift expressed in semitones.
func (v *PhaseVocoder) PitchSemitones() float64 {
	return 12 * math.Log2(v.pitchRatio)
}

// SetPitchSemitones updates the pitch shift in semitones. The derived
// ratio is clamped to [MinRatio, MaxRatio].
func (v *PhaseVocoder) SetPitchSemitones(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("phase vocoder semitones must be finite: %f", semitones)
	}

	return v.SetPitchRatio(math.Exp2(semitones / 12))
}

// FrameSize returns the STFT frame size in samples.
func (v *PhaseVocoder) FrameSize() int { return v.frameSize }

// SetFrameSize updates the STFT frame size. size must be a power of two
// and at least 64. The analysis hop is pulled back to size/4 when it no
// longer fits.
func (v *PhaseVocoder) SetFrameSize(size int) error {
	if size < minVocoderFrameSize || !isPowerOfTwo(size) {
		return fmt.Errorf("phase vocoder frame size must be power-of-two and >= %d: %d", minVocoderFrameSize, size)
	}

	v.frameSize = size
	if v.analysisHop >= size {
		v.analysisHop = size / 4
	}

	return v.rebuildState()
}

// AnalysisHop returns the analysis hop in samples.
func (v *PhaseVocoder) AnalysisHop() int { return v.analysisHop }

// SetAnalysisHop updates the analysis hop. hop must lie in
// [1, FrameSize).
func (v *PhaseVocoder) SetAnalysisHop(hop int) error {
	if hop <= 0 || hop >= v.frameSize {
		return fmt.Errorf("phase vocoder analysis hop must be in [1, %d): %d", v.frameSize, hop)
	}

	v.analysisHop = hop

	return nil
}

// SynthesisHop returns the synthesis hop derived from the analysis hop
// and the current pitch ratio, never less than one sample.
func (v *PhaseVocoder) SynthesisHop() int {
	return v.synthesisHop()
}

// Reset clears accumulated phase state.
func (v *PhaseVocoder) Reset() {
	core.Zero(v.prevPhase)
	core.Zero(v.sumPhase)
}

// Process applies the pitch shift and returns a new buffer of exactly
// the input length. It returns nil when processing fails; a failed call
// never yields a partial result.
func (v *PhaseVocoder) Process(input []float64) []float64 {
	out, err := v.ProcessWithError(input)
	if err != nil {
		return nil
	}

	return out
}

// ProcessWithError applies the pitch shift and returns a new buffer of
// exactly the input length. Inputs shorter than one frame produce a
// silent buffer of the input length.
func (v *PhaseVocoder) ProcessWithError(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, nil
	}

	if err := v.validate(); err != nil {
		return nil, err
	}

	v.Reset()

	frame := v.frameSize
	hop := v.analysisHop
	half := frame / 2
	hopF := float64(hop)
	synthHop := v.synthesisHop()
	synthHopF := float64(synthHop)

	stretched := make([]float64, int(float64(len(input))*v.pitchRatio*stretchHeadroom))
	envelope := make([]float64, len(stretched))

	numFrames := (len(input) - frame) / hop
	outPos := 0

	for f := 0; f < numFrames; f++ {
		inPos := f * hop
		if inPos+frame > len(input) || outPos+frame > len(stretched) {
			break
		}

		for i := range frame {
			v.freqFrame[i] = complex(input[inPos+i]*v.windowCoeffs[i], 0)
		}

		if err := v.plan.Forward(v.freqFrame, v.freqFrame); err != nil {
			return nil, fmt.Errorf("phase vocoder: forward FFT failed: %w", err)
		}

		spectrum.MagnitudeInto(v.magnitudes, v.freqFrame[:half])
		spectrum.PhaseInto(v.phases, v.freqFrame[:half])

		for k := range half {
			phase := v.phases[k]

			delta := wrapPhase(phase - v.prevPhase[k])
			v.prevPhase[k] = phase

			// True bin frequency from the deviation between the
			// measured and the expected phase advance per hop.
			deviation := wrapPhase(delta - v.omega[k]*hopF)
			trueFreq := v.omega[k] + deviation/hopF

			v.sumPhase[k] += trueFreq * synthHopF
			mag := v.magnitudes[k]
			v.freqFrame[k] = complex(mag*math.Cos(v.sumPhase[k]), mag*math.Sin(v.sumPhase[k]))
		}

		// Real output: zero the Nyquist bin, conjugate-mirror the rest.
		v.freqFrame[half] = 0
		for k := 1; k < half; k++ {
			c := v.freqFrame[k]
			v.freqFrame[frame-k] = complex(real(c), -imag(c))
		}

		if err := v.plan.Inverse(v.timeFrame, v.freqFrame); err != nil {
			return nil, fmt.Errorf("phase vocoder: inverse FFT failed: %w", err)
		}

		for i := range frame {
			w := v.windowCoeffs[i]
			stretched[outPos+i] += real(v.timeFrame[i]) * w
			envelope[outPos+i] += w * w
		}

		outPos += synthHop
	}

	// The squared-window overlap sum is constant only at the default
	// four-fold overlap; dividing by the accumulated envelope keeps
	// unit gain at every synthesis hop.
	for i := range outPos {
		if envelope[i] > envelopeFloor {
			stretched[i] /= envelope[i]
		}
	}

	out := interp.ResampleLinear(stretched[:outPos], len(input))
	signal.NormalizePeakInPlace(out, normTarget, normFloor)

	return out, nil
}

// ProcessInPlace shifts buf in place.
func (v *PhaseVocoder) ProcessInPlace(buf []float64) error {
	out, err := v.ProcessWithError(buf)
	if err != nil {
		return err
	}

	copy(buf, out)

	return nil
}

func (v *PhaseVocoder) validate() error {
	if !isFinitePositive(v.sampleRate) {
		return fmt.Errorf("phase vocoder sample rate must be positive and finite: %f", v.sampleRate)
	}

	if !isFinitePositive(v.pitchRatio) || v.pitchRatio < MinRatio || v.pitchRatio > MaxRatio {
		return fmt.Errorf("phase vocoder pitch ratio must be in [%f, %f]: %f",
			MinRatio, MaxRatio, v.pitchRatio)
	}

	if v.frameSize < minVocoderFrameSize || !isPowerOfTwo(v.frameSize) {
		return fmt.Errorf("phase vocoder frame size must be power-of-two and >= %d: %d", minVocoderFrameSize, v.frameSize)
	}

	if v.analysisHop <= 0 || v.analysisHop >= v.frameSize {
		return fmt.Errorf("phase vocoder analysis hop must be in [1, %d): %d", v.frameSize, v.analysisHop)
	}

	return nil
}

func (v *PhaseVocoder) rebuildState() error {
	if err := v.validate(); err != nil {
		return err
	}

	plan, err := algofft.NewPlan64(v.frameSize)
	if err != nil {
		return fmt.Errorf("phase vocoder: failed to create FFT plan: %w", err)
	}

	v.plan = plan

	coeffs := window.Generate(window.TypeHann, v.frameSize)
	if len(coeffs) != v.frameSize {
		return fmt.Errorf("phase vocoder: window generation failed for size %d", v.frameSize)
	}

	v.windowCoeffs = coeffs

	half := v.frameSize / 2
	v.omega = core.EnsureLen(v.omega, half)
	for k := range half {
		v.omega[k] = 2 * math.Pi * float64(k) / float64(v.frameSize)
	}

	v.prevPhase = core.EnsureLen(v.prevPhase, half)
	v.sumPhase = core.EnsureLen(v.sumPhase, half)
	core.Zero(v.prevPhase)
	core.Zero(v.sumPhase)

	v.magnitudes = core.EnsureLen(v.magnitudes, half)
	v.phases = core.EnsureLen(v.phases, half)
	v.freqFrame = make([]complex128, v.frameSize)
	v.timeFrame = make([]complex128, v.frameSize)

	return nil
}

func (v *PhaseVocoder) synthesisHop() int {
	return max(int(float64(v.analysisHop)*v.pitchRatio), 1)
}

// wrapPhase maps x into (-pi, pi].
func wrapPhase(x float64) float64 {
	y := math.Mod(x+math.Pi, 2*math.Pi)
	if y <= 0 {
		y += 2 * math.Pi
	}

	return y - math.Pi
}

func isPowerOfTwo(v int) bool {
	return v > 0 && (v&(v-1)) == 0
}
