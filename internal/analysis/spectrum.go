// Package analysis derives the frequency-domain spectrum of a correlation
// series.
package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum returns the discrete Fourier transform of the correlation
// series. Output grids are arbitrary length, so the transform is not
// restricted to powers of two.
func Spectrum(corr []complex128) []complex128 {
	return fft.FFT(corr)
}

// Freqs returns the DFT sample frequencies for n samples spaced dt apart,
// in standard FFT order (non-negative frequencies first).
func Freqs(n int, dt float64) []float64 {
	fs := make([]float64, n)
	step := 1.0 / (float64(n) * dt)
	half := (n - 1) / 2
	for i := 0; i <= half; i++ {
		fs[i] = float64(i) * step
	}
	for i := half + 1; i < n; i++ {
		fs[i] = float64(i-n) * step
	}
	return fs
}

// Magnitudes returns |s| per bin.
func Magnitudes(spec []complex128) []float64 {
	out := make([]float64, len(spec))
	for i, v := range spec {
		out[i] = cmplx.Abs(v)
	}
	return out
}
