// Package tuner ties the codec, estimator, mapper, and shifting
// engines into the complete tuning workflow: load a recording, measure
// its fundamental, derive the ratio to the nearest recurrence of a
// reference note, and resynthesize at the corrected pitch.
package tuner

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/formats/wav"
	"github.com/cwbudde/algo-tuner/measure/pitch"
	"github.com/cwbudde/algo-tuner/shift"
	"github.com/cwbudde/algo-tuner/tune"
)

var (
	// ErrEmptyClip reports a pitch-shift call on a nil or empty clip.
	ErrEmptyClip = errors.New("tuner: empty clip")
)

// retryThresholdFloor is the strictness below which a missed detection
// is not retried.
const retryThresholdFloor = 0.05

// retryStartSample is where a missed scan-started detection tries
// again, one second into a 44.1 kHz take.
const retryStartSample = 44100

// PitchResult carries one pitch measurement together with the analysis
// window it was taken from.
type PitchResult struct {
	Pitch             float64
	Confidence        float64
	SampleRate        int
	NumSamples        int
	BufferSize        int
	ActualStartSample int
}

// Detected reports whether the measurement found a fundamental.
func (r PitchResult) Detected() bool { return r.Pitch > 0 }

// LoadAudio reads a WAV file into a mono clip.
func LoadAudio(path string) (*audio.Clip, error) {
	return wav.DecodeFile(path)
}

// SaveAudio writes the clip to a WAV file in the chosen encoding.
func SaveAudio(path string, clip *audio.Clip, enc wav.Encoding) error {
	return wav.EncodeFile(path, clip, enc)
}

// DetectPitch measures the fundamental frequency of one analysis
// window of the clip. A startSample of -1 scans past leading silence;
// window sizes at or below zero fall back to the detector default, and
// the window shrinks to whatever remains near the end of the clip. A
// miss at thresholds above 0.05 is retried once at half strictness,
// keeping the retry result only when it succeeds, and a missed
// scan-started detection gets one more pass from sample 44100 when the
// clip reaches that far.
func DetectPitch(clip *audio.Clip, startSample, windowSize int, threshold float64) PitchResult {
	if clip == nil || len(clip.Samples) == 0 {
		return PitchResult{Pitch: -1, Confidence: 1}
	}

	if threshold <= 0 {
		threshold = pitch.DefaultThreshold
	}
	if windowSize <= 0 {
		windowSize = pitch.DefaultBufferSize
	}

	start := startSample
	if start < 0 {
		start = audio.FindStart(clip.Samples, audio.DefaultSilenceThreshold, audio.DefaultStartSearchWindow)
		if start < 0 {
			start = 0
		}
	}

	result := detectWindow(clip, start, windowSize, threshold)

	// The silence scan can land on a transient with no stable period;
	// such takes get a second pass from a fixed position further in.
	if !result.Detected() && startSample < 0 && retryStartSample < len(clip.Samples) {
		result = detectWindow(clip, retryStartSample, windowSize, threshold)
	}

	return result
}

// detectWindow runs one detection attempt on the window at start,
// including the half-threshold retry, and packages the measurement.
func detectWindow(clip *audio.Clip, start, windowSize int, threshold float64) PitchResult {
	if start > len(clip.Samples) {
		start = len(clip.Samples)
	}

	window := clip.Samples[start:]
	if len(window) > windowSize {
		window = window[:windowSize]
	}

	cfg := pitch.Config{SampleRate: float64(clip.SampleRate), Threshold: threshold}
	result := pitch.Detect(window, cfg)

	if result.Pitch <= 0 && threshold > retryThresholdFloor {
		cfg.Threshold = threshold / 2
		if retry := pitch.Detect(window, cfg); retry.Pitch > 0 {
			result = retry
		}
	}

	return PitchResult{
		Pitch:             result.Pitch,
		Confidence:        result.Confidence,
		SampleRate:        clip.SampleRate,
		NumSamples:        len(clip.Samples),
		BufferSize:        len(window),
		ActualStartSample: start,
	}
}

// DetectPitchAtTime is DetectPitch with millisecond addressing.
// Negative start times scan past leading silence.
func DetectPitchAtTime(clip *audio.Clip, startMs, durationMs int, threshold float64) PitchResult {
	if clip == nil {
		return PitchResult{Pitch: -1, Confidence: 1}
	}

	start := -1
	if startMs >= 0 {
		start = startMs * clip.SampleRate / 1000
	}

	windowSize := 0
	if durationMs > 0 {
		windowSize = durationMs * clip.SampleRate / 1000
	}

	return DetectPitch(clip, start, windowSize, threshold)
}

// ComputeShiftRatio maps a recorded frequency onto the nearest octave
// recurrence of the reference pitch class and returns target/recorded.
// Degenerate inputs yield an explicit 1.0.
func ComputeShiftRatio(recordedHz, referenceHz float64) float64 {
	return tune.ShiftRatio(recordedHz, referenceHz)
}

// PitchShift runs the clip through the chosen engine at the given
// ratio. Failures yield a nil clip and an error, never partial output.
func PitchShift(clip *audio.Clip, ratio float64, engine shift.Engine) (*audio.Clip, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, ErrEmptyClip
	}

	proc, err := shift.New(engine, float64(clip.SampleRate))
	if err != nil {
		return nil, err
	}

	if err := proc.SetPitchRatio(ratio); err != nil {
		return nil, err
	}

	out, err := proc.ProcessWithError(clip.Samples)
	if err != nil {
		return nil, fmt.Errorf("pitch shift failed: %w", err)
	}

	return &audio.Clip{Samples: out, SampleRate: clip.SampleRate}, nil
}
