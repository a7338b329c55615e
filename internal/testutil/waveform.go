package testutil

// Impulse returns n samples that are zero except amp at index at.
func Impulse(n, at int, amp float32) []float32 {
	out := make([]float32, n)
	if at >= 0 && at < n {
		out[at] = amp
	}
	return out
}

// Step returns n samples that are zero before index at and amp from it on.
func Step(n, at int, amp float32) []float32 {
	out := make([]float32, n)
	for i := max(at, 0); i < n; i++ {
		out[i] = amp
	}
	return out
}

// Ramp returns n samples with out[i] = slope·i.
func Ramp(n int, slope float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = slope * float32(i)
	}
	return out
}

// Ticks returns count consecutive tick values starting at start. The
// sequence wraps at the top of the uint32 range like the engine clock does.
func Ticks(start uint32, count int) []uint32 {
	out := make([]uint32, count)
	for i := range out {
		out[i] = start + uint32(i)
	}
	return out
}
