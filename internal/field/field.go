// Package field reduces the gathered dipole expectation values to the
// far-field time-domain correlation function.
package field

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/lindblad/internal/cloud"
	"github.com/san-kum/lindblad/internal/dynamo"
)

// Correlations computes, for one field wavevector, the phase-weighted
// autocorrelation of the emitted field against the field at the first
// output time. sdata[i][t] holds the three dipole components of atom i at
// output time t, already summed over the phase-point ensemble.
//
// The atom-axis reduction is the sum over a full linear convolution of the
// reference and delayed field operators (not an inner product; the two are
// not interchangeable as the atom count changes), normalized by the size of
// the discrete ensemble, 8·2^(N-1).
func Correlations(atoms []cloud.Atom, kvec [3]float64, sdata [][][3]float64) ([]complex128, error) {
	n := len(atoms)
	if n == 0 || len(sdata) != n {
		return nil, fmt.Errorf("%w: aggregate has %d atom rows for %d atoms",
			dynamo.ErrInvalidConfiguration, len(sdata), n)
	}
	steps := len(sdata[0])
	for i := range sdata {
		if len(sdata[i]) != steps {
			return nil, fmt.Errorf("%w: ragged aggregate at atom %d",
				dynamo.ErrInvalidConfiguration, i)
		}
	}

	phases := make([]complex128, n)
	for i, a := range atoms {
		kr := kvec[0]*a.Coords[0] + kvec[1]*a.Coords[1] + kvec[2]*a.Coords[2]
		phases[i] = cmplx.Exp(complex(0, -kr))
	}

	ek0dag := make([]complex128, n)
	for i := range ek0dag {
		ek0dag[i] = phases[i] * complex(sdata[i][0][0], sdata[i][0][1])
	}

	norm := complex(8.0*math.Exp2(float64(n-1)), 0)
	ekt := make([]complex128, n)
	corrs := make([]complex128, steps)
	for t := 0; t < steps; t++ {
		for i := range ekt {
			ekt[i] = cmplx.Conj(phases[i]) * complex(sdata[i][t][0], -sdata[i][t][1])
		}
		corrs[t] = convolveSum(ek0dag, ekt) / norm
	}
	return corrs, nil
}

// convolveSum returns the sum over the full linear convolution of a and b.
// Both are zero-padded to length 2n-1 so the FFT product is the linear
// (not circular) convolution.
func convolveSum(a, b []complex128) complex128 {
	n := len(a)
	if n == 1 {
		return a[0] * b[0]
	}
	full := 2*n - 1
	pa := make([]complex128, full)
	pb := make([]complex128, full)
	copy(pa, a)
	copy(pb, b)

	var sum complex128
	for _, v := range fft.Convolve(pa, pb) {
		sum += v
	}
	return sum
}
