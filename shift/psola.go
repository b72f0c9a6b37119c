package shift

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tuner/dsp/core"
	"github.com/cwbudde/algo-tuner/dsp/signal"
)

const (
	defaultMinPeriod            = 32
	defaultMaxPeriod            = 2048
	defaultCorrelationThreshold = 0.3
	defaultFallbackAdvance      = 200
	defaultMinOutputPeriod      = 20
	defaultMinGrainSize         = 64
	defaultMaxGrainSize         = 4096
)

// Psola shifts pitch in the time domain. Each call places pitch marks
// on the input with a normalized-autocorrelation period tracker,
// rescales the mark spacing by the pitch ratio, and overlap-adds
// Hann-windowed grains from the nearest input mark at each output
// mark. Output length always equals input length.
//
// The engine needs a periodic input: when the tracker cannot place at
// least two marks, processing fails with ErrTooFewPitchMarks.
//
// Offline processor: each call analyzes one complete buffer. Not safe
// for concurrent use.
type Psola struct {
	sampleRate float64
	pitchRatio float64

	minPeriod       int
	maxPeriod       int
	corrThreshold   float64
	fallbackAdvance int
	minOutputPeriod int
	minGrainSize    int
	maxGrainSize    int
}

// NewPsola creates a PSOLA shifter with an identity pitch ratio and a
// period search range of [32, 2048] samples.
func NewPsola(sampleRate float64) (*Psola, error) {
	if !isFinitePositive(sampleRate) {
		return nil, fmt.Errorf("psola sample rate must be positive and finite: %f", sampleRate)
	}

	p := &Psola{
		sampleRate:      sampleRate,
		pitchRatio:      1.0,
		minPeriod:       defaultMinPeriod,
		maxPeriod:       defaultMaxPeriod,
		corrThreshold:   defaultCorrelationThreshold,
		fallbackAdvance: defaultFallbackAdvance,
		minOutputPeriod: defaultMinOutputPeriod,
		minGrainSize:    defaultMinGrainSize,
		maxGrainSize:    defaultMaxGrainSize,
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// SampleRate returns the configured sample rate in Hz.
func (p *Psola) SampleRate() float64 { return p.sampleRate }

// SetSampleRate updates the sample rate. The rate is metadata only; the
// period tracker works in samples.
func (p *Psola) SetSampleRate(sampleRate float64) error {
	if !isFinitePositive(sampleRate) {
		return fmt.Errorf("psola sample rate must be positive and finite: %f", sampleRate)
	}

	p.sampleRate = sampleRate

	return nil
}

// PitchRatio returns the current pitch ratio.
func (p *Psola) PitchRatio() float64 { return p.pitchRatio }

// SetPitchRatio updates the pitch ratio. Non-finite or non-positive
// ratios are rejected; finite ratios outside [MinRatio, MaxRatio] are
// clamped to the range.
func (p *Psola) SetPitchRatio(ratio float64) error {
	if !isFinitePositive(ratio) {
		return fmt.Errorf("psola pitch ratio must be positive and finite: %f", ratio)
	}

	p.pitchRatio = core.Clamp(ratio, MinRatio, MaxRatio)

	return nil
}

// PitchSemitones returns the current shift expressed in semitones.
func (p *Psola) PitchSemitones() float64 {
	return 12 * math.Log2(p.pitchRatio)
}

// SetPitchSemitones updates the pitch shift in semitones. The derived
// ratio is clamped to [MinRatio, MaxRatio].
func (p *Psola) SetPitchSemitones(semitones float64) error {
	if math.IsNaN(semitones) || math.IsInf(semitones, 0) {
		return fmt.Errorf("psola semitones must be finite: %f", semitones)
	}

	return p.SetPitchRatio(math.Exp2(semitones / 12))
}

// PeriodRange returns the period search bounds in samples.
func (p *Psola) PeriodRange() (int, int) {
	return p.minPeriod, p.maxPeriod
}

// SetPeriodRange updates the period search bounds in samples. The
// bounds must satisfy 2 <= min < max.
func (p *Psola) SetPeriodRange(minPeriod, maxPeriod int) error {
	if minPeriod < 2 || minPeriod >= maxPeriod {
		return fmt.Errorf("psola period range must satisfy 2 <= min < max: [%d, %d]", minPeriod, maxPeriod)
	}

	p.minPeriod = minPeriod
	p.maxPeriod = maxPeriod

	return nil
}

// CorrelationThreshold returns the minimum normalized autocorrelation
// for a period candidate to be accepted.
func (p *Psola) CorrelationThreshold() float64 {
	return p.corrThreshold
}

// SetCorrelationThreshold updates the period acceptance threshold.
// threshold must lie in (0, 1).
func (p *Psola) SetCorrelationThreshold(threshold float64) error {
	if !(threshold > 0 && threshold < 1) {
		return fmt.Errorf("psola correlation threshold must be in (0, 1): %f", threshold)
	}

	p.corrThreshold = threshold

	return nil
}

// FallbackAdvance returns the mark advance in samples used when no
// period is detected.
func (p *Psola) FallbackAdvance() int {
	return p.fallbackAdvance
}

// SetFallbackAdvance updates the mark advance used when no period is
// detected. advance must be positive.
func (p *Psola) SetFallbackAdvance(advance int) error {
	if advance <= 0 {
		return fmt.Errorf("psola fallback advance must be positive: %d", advance)
	}

	p.fallbackAdvance = advance

	return nil
}

// MinOutputPeriod returns the floor for rescaled output periods in
// samples.
func (p *Psola) MinOutputPeriod() int {
	return p.minOutputPeriod
}

// SetMinOutputPeriod updates the floor for rescaled output periods.
// period must be positive.
func (p *Psola) SetMinOutputPeriod(period int) error {
	if period <= 0 {
		return fmt.Errorf("psola minimum output period must be positive: %d", period)
	}

	p.minOutputPeriod = period

	return nil
}

// GrainBounds returns the grain size bounds in samples.
func (p *Psola) GrainBounds() (int, int) {
	return p.minGrainSize, p.maxGrainSize
}

// SetGrainBounds updates the grain size bounds in samples. The bounds
// must satisfy 0 < min <= max.
func (p *Psola) SetGrainBounds(minSize, maxSize int) error {
	if minSize <= 0 || minSize > maxSize {
		return fmt.Errorf("psola grain bounds must satisfy 0 < min <= max: [%d, %d]", minSize, maxSize)
	}

	p.minGrainSize = minSize
	p.maxGrainSize = maxSize

	return nil
}

// Reset is a no-op; the engine keeps no state between calls.
func (p *Psola) Reset() {}

// Process applies the pitch shift and returns a new buffer of exactly
// the input length. It returns nil when processing fails; a failed call
// never yields a partial result.
func (p *Psola) Process(input []float64) []float64 {
	out, err := p.ProcessWithError(input)
	if err != nil {
		return nil
	}

	return out
}

// ProcessWithError applies the pitch shift and returns a new buffer of
// exactly the input length.
func (p *Psola) ProcessWithError(input []float64) ([]float64, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	inMarks := p.detectMarks(input)
	if len(inMarks) < 2 {
		return nil, ErrTooFewPitchMarks
	}

	periods := make([]int, len(inMarks)-1)
	total := 0
	for i := range periods {
		periods[i] = inMarks[i+1] - inMarks[i]
		total += periods[i]
	}
	avgPeriod := total / len(periods)

	outMarks := p.outputMarks(periods, len(input))

	output := make([]float64, len(input))

	baseGrain := min(max(2*avgPeriod, p.minGrainSize), p.maxGrainSize)
	grain := make([]float64, baseGrain)

	for _, outMark := range outMarks {
		nearest := nearestMark(inMarks, outMark)

		// Match the grain to the local period where the tracker found
		// one, capped at the base grain so the shared buffer fits.
		size := baseGrain
		if nearest+1 < len(inMarks) {
			localPeriod := inMarks[nearest+1] - inMarks[nearest]
			if localPeriod > p.minOutputPeriod && localPeriod < p.maxPeriod {
				size = min(2*localPeriod, baseGrain)
			}
		}

		extractGrain(input, inMarks[nearest], grain[:size])
		overlapAdd(output, grain[:size], outMark)
	}

	signal.NormalizePeakInPlace(output, normTarget, normFloor)

	return output, nil
}

// ProcessInPlace shifts buf in place.
func (p *Psola) ProcessInPlace(buf []float64) error {
	out, err := p.ProcessWithError(buf)
	if err != nil {
		return err
	}

	copy(buf, out)

	return nil
}

func (p *Psola) validate() error {
	if !isFinitePositive(p.sampleRate) {
		return fmt.Errorf("psola sample rate must be positive and finite: %f", p.sampleRate)
	}

	if !isFinitePositive(p.pitchRatio) || p.pitchRatio < MinRatio || p.pitchRatio > MaxRatio {
		return fmt.Errorf("psola pitch ratio must be in [%f, %f]: %f",
			MinRatio, MaxRatio, p.pitchRatio)
	}

	if p.minPeriod < 2 || p.minPeriod >= p.maxPeriod {
		return fmt.Errorf("psola period range must satisfy 2 <= min < max: [%d, %d]", p.minPeriod, p.maxPeriod)
	}

	if !(p.corrThreshold > 0 && p.corrThreshold < 1) {
		return fmt.Errorf("psola correlation threshold must be in (0, 1): %f", p.corrThreshold)
	}

	if p.fallbackAdvance <= 0 {
		return fmt.Errorf("psola fallback advance must be positive: %d", p.fallbackAdvance)
	}

	if p.minOutputPeriod <= 0 {
		return fmt.Errorf("psola minimum output period must be positive: %d", p.minOutputPeriod)
	}

	if p.minGrainSize <= 0 || p.minGrainSize > p.maxGrainSize {
		return fmt.Errorf("psola grain bounds must satisfy 0 < min <= max: [%d, %d]", p.minGrainSize, p.maxGrainSize)
	}

	return nil
}

// detectPeriod estimates the pitch period at start using normalized
// autocorrelation over at most maxPeriod samples. It returns 0 when
// fewer than maxPeriod samples remain or no lag clears the threshold.
func (p *Psola) detectPeriod(samples []float64, start int) int {
	if start+p.maxPeriod >= len(samples) {
		return 0
	}

	searchLen := min(len(samples)-start, p.maxPeriod)

	maxCorr := 0.0
	bestLag := p.minPeriod

	for lag := p.minPeriod; lag < searchLen; lag++ {
		corr := 0.0
		energy := 0.0

		for i := 0; i < searchLen-lag; i++ {
			corr += samples[start+i] * samples[start+i+lag]
			energy += samples[start+i] * samples[start+i]
		}

		if energy > 0 {
			corr /= energy
			if corr > maxCorr {
				maxCorr = corr
				bestLag = lag
			}
		}
	}

	if maxCorr > p.corrThreshold {
		return bestLag
	}

	return 0
}

// detectMarks walks the input placing a mark per detected period,
// advancing by fallbackAdvance through untracked regions. The first
// mark always sits at sample zero.
func (p *Psola) detectMarks(samples []float64) []int {
	marks := []int{0}

	pos := 0
	for pos < len(samples) {
		period := p.detectPeriod(samples, pos)
		if period > 0 {
			pos += period
		} else {
			pos += p.fallbackAdvance
		}

		if pos < len(samples) {
			marks = append(marks, pos)
		}
	}

	return marks
}

// outputMarks spaces marks across the output at input periods divided
// by the pitch ratio. When input periods run out before the output is
// covered, the last period repeats.
func (p *Psola) outputMarks(periods []int, length int) []int {
	marks := []int{0}

	pos := 0
	for idx := 0; pos < length; {
		period := int(float64(periods[idx]) / p.pitchRatio)
		if period < p.minOutputPeriod {
			period = p.minOutputPeriod
		}

		pos += period
		if pos < length {
			marks = append(marks, pos)
		}

		if idx+1 < len(periods) {
			idx++
		}
	}

	return marks
}

func nearestMark(marks []int, target int) int {
	nearest := 0
	minDist := absInt(marks[0] - target)

	for j := 1; j < len(marks); j++ {
		dist := absInt(marks[j] - target)
		if dist < minDist {
			minDist = dist
			nearest = j
		}
	}

	return nearest
}

// extractGrain copies a Hann-windowed grain centered on the input
// position, zero-padding where the grain overhangs the buffer.
func extractGrain(input []float64, center int, grain []float64) {
	half := len(grain) / 2

	for i := range grain {
		pos := center - half + i
		if pos >= 0 && pos < len(input) {
			grain[i] = input[pos] * hannCoeff(i, len(grain))
		} else {
			grain[i] = 0
		}
	}
}

// overlapAdd mixes the grain into the output centered on the output
// position, dropping samples that fall outside the buffer.
func overlapAdd(output, grain []float64, center int) {
	half := len(grain) / 2

	for i := range grain {
		pos := center - half + i
		if pos >= 0 && pos < len(output) {
			output[pos] += grain[i]
		}
	}
}

// hannCoeff evaluates a symmetric Hann window of the given size at
// index n.
func hannCoeff(n, size int) float64 {
	if size <= 1 {
		return 1
	}

	return 0.5 * (1 - math.Cos(2*math.Pi*float64(n)/float64(size-1)))
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
