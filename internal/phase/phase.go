// Package phase holds the discrete Wigner phase-point table and builds the
// per-(atom, phase point) initial conditions of the evolution.
package phase

import "github.com/san-kum/lindblad/internal/dynamo"

// NAlphas is the size of the discrete phase-point enumeration. The points
// are a fixed deterministic table, not a stochastic sample; the ensemble
// normalization downstream (8·2^(N-1)) counts this enumeration.
const NAlphas = 8

// Points are the canonical phase points: a unit transverse component along
// ±x or ±y paired with a longitudinal component ±1.
var Points = [NAlphas][3]float64{
	{1, 0, 1},
	{0, 1, 1},
	{-1, 0, 1},
	{0, -1, 1},
	{1, 0, -1},
	{0, 1, -1},
	{-1, 0, -1},
	{0, -1, -1},
}

// InitialCondition builds the state vector for phase point alpha applied to
// atom m in a lattice of n atoms: every atom starts at the baseline (0,0,1),
// atom m is replaced by the phase-point vector, and the pair-correlation
// block is zero. Pure function; safe to call concurrently.
func InitialCondition(alpha, m, n int) dynamo.State {
	s := make(dynamo.State, dynamo.StateSize(n))
	for i := 0; i < n; i++ {
		s[2*n+i] = 1.0
	}
	p := Points[alpha]
	s[m] = p[0]
	s[n+m] = p[1]
	s[2*n+m] = p[2]
	return s
}
