// Package interp provides interpolation primitives used by time-domain
// resampling stages.
//
//   - [Linear2]:         2-point linear interpolation
//   - [ResampleLinear]:  whole-buffer length mapping via linear interpolation
package interp
