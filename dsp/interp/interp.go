package interp

// Linear2 computes 2-point linear interpolation between x0 and x1
// at fractional position frac in [0,1].
func Linear2(frac, x0, x1 float64) float64 {
	return x0 + frac*(x1-x0)
}

// ResampleLinear maps src onto a new slice of targetLen samples using
// linear interpolation. Positions past the last source pair repeat the
// final sample; positions past the source end produce zero. Returns nil
// for non-positive target lengths.
func ResampleLinear(src []float64, targetLen int) []float64 {
	if targetLen <= 0 {
		return nil
	}

	out := make([]float64, targetLen)

	ratio := float64(len(src)) / float64(targetLen)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		switch {
		case idx+1 < len(src):
			out[i] = Linear2(frac, src[idx], src[idx+1])
		case idx < len(src):
			out[i] = src[idx]
		default:
			out[i] = 0
		}
	}

	return out
}
