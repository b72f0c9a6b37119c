// Package spectrum provides FFT-adjacent spectrum-domain utilities.
//
// The package intentionally does not implement FFT itself. It operates on
// complex spectrum bins produced by external FFT backends and provides
// magnitude/phase extraction plus a Goertzel single-bin analyzer for tone
// probing.
package spectrum
