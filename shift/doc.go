// Package shift provides duration-preserving monophonic pitch shifting.
//
// Two engines implement the shared Processor contract:
//   - PhaseVocoder: STFT analysis with per-bin phase propagation,
//     time-domain stretch, and linear resampling back to input length.
//   - Psola: pitch-synchronous grain extraction and overlap-add at
//     rescaled period spacing.
//
// Both engines return output of exactly the input length, clamp the
// pitch ratio to [MinRatio, MaxRatio], and peak-normalize the result.
// Processing is offline: each call analyzes one complete buffer.
package shift
