package audio

import "math"

// Downmix averages interleaved channels into one.
func Downmix(samples []float32, channels int) []float32 {
	if channels <= 1 {
		return samples
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	inv := 1 / float32(channels)
	for i := range frames {
		var sum float32
		for c := range channels {
			sum += samples[i*channels+c]
		}
		out[i] = sum * inv
	}
	return out
}

// Resample converts mono samples from srcRate to dstRate by linear
// interpolation, low-pass filtering before decimation and after
// interpolation. Equal rates return the input.
func Resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || len(samples) == 0 || srcRate <= 0 || dstRate <= 0 {
		return samples
	}

	cutoff := float64(min(srcRate, dstRate)) / 2
	if srcRate > dstRate {
		samples = lowPass(samples, cutoff, float64(srcRate), filterTaps)
	}

	ratio := float64(srcRate) / float64(dstRate)
	n := int(math.Round(float64(len(samples)) / ratio))
	out := make([]float32, n)
	for i := range n {
		pos := float64(i) * ratio
		idx := int(pos)
		out[i] = lerp(samples, idx, float32(pos-float64(idx)))
	}

	if dstRate > srcRate {
		out = lowPass(out, cutoff, float64(dstRate), filterTaps)
	}
	return out
}

const filterTaps = 31

// lowPass convolves with a Blackman-windowed sinc kernel. Taps that fall
// outside the signal are skipped.
func lowPass(samples []float32, cutoff, rate float64, taps int) []float32 {
	kernel := sincKernel(cutoff, rate, taps)
	half := taps / 2
	out := make([]float32, len(samples))
	for i := range samples {
		lo := max(0, half-i)
		hi := min(taps, len(samples)-i+half)
		var acc float32
		for j := lo; j < hi; j++ {
			acc += samples[i+j-half] * kernel[j]
		}
		out[i] = acc
	}
	return out
}

// sincKernel is normalised to unity gain at DC.
func sincKernel(cutoff, rate float64, taps int) []float32 {
	fc := cutoff / rate
	half := taps / 2
	kernel := make([]float32, taps)

	var sum float64
	for i := range taps {
		n := float64(i - half)
		sinc := 1.0
		if n != 0 {
			x := 2 * math.Pi * fc * n
			sinc = math.Sin(x) / x
		}
		pos := float64(i) / float64(taps-1)
		window := 0.42 - 0.5*math.Cos(2*math.Pi*pos) + 0.08*math.Cos(4*math.Pi*pos)
		v := sinc * window
		kernel[i] = float32(v)
		sum += v
	}
	scale := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= scale
	}
	return kernel
}

func lerp(samples []float32, idx int, frac float32) float32 {
	if idx+1 >= len(samples) {
		return samples[len(samples)-1]
	}
	return samples[idx]*(1-frac) + samples[idx+1]*frac
}

// ApplyGain scales samples in place by db decibels. Samples are not
// clipped; the WAV encoder clamps at full scale.
func ApplyGain(samples []float32, db float64) {
	if db == 0 || math.IsInf(db, 0) || math.IsNaN(db) {
		return
	}
	factor := float32(math.Pow(10, db/20))
	for i := range samples {
		samples[i] *= factor
	}
}
