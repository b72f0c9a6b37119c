// Package pitch estimates the fundamental frequency of monophonic
// sample blocks using the YIN cumulative mean normalized difference
// method with an absolute-threshold lag search.
package pitch

const (
	// DefaultBufferSize is the analysis window callers use when they have
	// no reason to pick another size.
	DefaultBufferSize = 2048

	// DefaultThreshold balances false positives against misses. Lower is
	// stricter, higher is more lenient.
	DefaultThreshold = 0.15
)

// Config holds pitch detection parameters.
type Config struct {
	SampleRate float64
	Threshold  float64
}

// Result holds the outcome of one detection pass. Pitch is -1 when no
// lag satisfied the threshold; Confidence then carries the lowest
// normalized difference seen instead of 1 minus it.
type Result struct {
	Pitch      float64
	Confidence float64
}

// Detected reports whether the pass found a fundamental.
func (r Result) Detected() bool {
	return r.Pitch > 0
}

// Detector runs YIN detection over sample blocks, reusing its
// difference buffer across calls.
type Detector struct {
	cfg  Config
	diff []float64
}

// NewDetector creates a detector. Zero config fields fall back to
// 44100 Hz and DefaultThreshold.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: normalizeConfig(cfg)}
}

// Detect is a one-shot detection pass over samples.
func Detect(samples []float64, cfg Config) Result {
	return NewDetector(cfg).Detect(samples)
}

// Detect analyzes samples and returns the estimated fundamental. Lags
// up to half the block length are candidates, so the block bounds the
// lowest detectable frequency.
func (d *Detector) Detect(samples []float64) Result {
	half := len(samples) / 2
	if half <= 2 {
		return Result{Pitch: -1, Confidence: 1}
	}

	if cap(d.diff) < half {
		d.diff = make([]float64, half)
	}
	buf := d.diff[:half]

	difference(buf, samples)
	cumulativeMeanNormalize(buf)

	tau, best := absoluteThreshold(buf, d.cfg.Threshold)
	if tau < 0 {
		return Result{Pitch: -1, Confidence: best}
	}

	return Result{
		Pitch:      d.cfg.SampleRate / parabolicInterpolation(buf, tau),
		Confidence: 1 - buf[tau],
	}
}

// difference fills buf with the squared difference function over lags
// [0, len(buf)), comparing the first half of samples against its
// lag-shifted copy.
func difference(buf, samples []float64) {
	for tau := range buf {
		sum := 0.0
		for i := range buf {
			delta := samples[i] - samples[i+tau]
			sum += delta * delta
		}
		buf[tau] = sum
	}
}

// cumulativeMeanNormalize rewrites buf in place as the cumulative mean
// normalized difference. Lag 0 is pinned to 1, as is any lag whose
// running sum is still zero, so silence never reads as periodic.
func cumulativeMeanNormalize(buf []float64) {
	buf[0] = 1

	runningSum := 0.0
	for tau := 1; tau < len(buf); tau++ {
		runningSum += buf[tau]
		if runningSum == 0 {
			buf[tau] = 1
			continue
		}
		buf[tau] *= float64(tau) / runningSum
	}
}

// absoluteThreshold returns the first lag whose normalized difference
// drops below threshold, advanced to the local minimum that follows it.
// A negative lag means no candidate qualified; the second value then
// carries the lowest difference observed across the search.
func absoluteThreshold(buf []float64, threshold float64) (int, float64) {
	best := 1.0

	for tau := 2; tau < len(buf); tau++ {
		if buf[tau] < best {
			best = buf[tau]
		}

		if buf[tau] < threshold {
			for tau+1 < len(buf) && buf[tau+1] < buf[tau] {
				tau++
			}
			return tau, buf[tau]
		}
	}

	return -1, best
}

// parabolicInterpolation refines an integer lag with the parabola
// through its neighbors. At the buffer edges it falls back to whichever
// of the two available points has the smaller difference.
func parabolicInterpolation(buf []float64, tau int) float64 {
	x0 := tau - 1
	if tau < 1 {
		x0 = tau
	}

	x2 := tau + 1
	if x2 >= len(buf) {
		x2 = tau
	}

	if x0 == tau {
		if buf[tau] <= buf[x2] {
			return float64(tau)
		}
		return float64(x2)
	}

	if x2 == tau {
		if buf[tau] <= buf[x0] {
			return float64(tau)
		}
		return float64(x0)
	}

	s0 := buf[x0]
	s1 := buf[tau]
	s2 := buf[x2]

	denom := 2 * (2*s1 - s2 - s0)
	if denom == 0 {
		return float64(tau)
	}

	return float64(tau) + (s2-s0)/denom
}

func normalizeConfig(cfg Config) Config {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}

	return cfg
}
