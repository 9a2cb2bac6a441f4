package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns the magnitude of the first half of the discrete
// Fourier transform of data. Any length is accepted.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	spectrum := fft.FFTReal(data)
	ps := make([]float64, len(spectrum)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// bin of data sampled every dt seconds. The mean is removed first.
func DominantFrequency(data []float64, dt float64) float64 {
	if len(data) < 4 || dt <= 0 {
		return 0
	}
	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return float64(best) / (float64(len(data)) * dt)
}
