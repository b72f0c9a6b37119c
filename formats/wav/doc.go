// Package wav reads and writes the WAV container used by the tuner
// pipeline.
//
// Reading accepts mono or stereo streams in 16-bit PCM or 32-bit IEEE
// float, downmixing stereo by averaging. Writing always produces a mono
// stream behind the fixed 44-byte canonical header; the header layout is
// a byte-for-byte contract so capture hardware and host tools agree on
// offsets. CaptureWriter supports the record-then-patch flow where the
// frame count is unknown until recording stops.
package wav
