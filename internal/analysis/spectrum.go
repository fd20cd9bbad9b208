package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns |X[k]|^2 for the first half of the FFT of series
// after removing its mean and zero-padding to a power of two. Non-finite
// samples count as the mean.
func PowerSpectrum(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}

	mean, n := 0.0, 0
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		mean += v
		n++
	}
	if n > 0 {
		mean /= float64(n)
	}

	padded := make([]float64, nextPow2(len(series)))
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		padded[i] = v - mean
	}

	spectrum := fft.FFTReal(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		a := cmplx.Abs(spectrum[i])
		ps[i] = a * a
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of series sampled every dt seconds, or 0 when there is none.
func DominantFrequency(series []float64, dt float64) float64 {
	ps := PowerSpectrum(series)
	if len(ps) < 2 || dt <= 0 {
		return 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	if ps[best] == 0 {
		return 0
	}

	n := 2 * len(ps)
	return float64(best) / (float64(n) * dt)
}
