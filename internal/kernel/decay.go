// Package kernel provides the right-hand-side variants of the evolution
// equations: a trivial exponential-decay reference used to validate the
// integration plumbing, and the physical second-order (BBGKY) kernel.
// The variant is chosen statically at configuration time.
package kernel

import "github.com/san-kum/lindblad/internal/dynamo"

// Decay is the reference kernel dx/dt = -x. Not physically meaningful;
// it exists so the integrator and tensor plumbing can be checked against
// the closed form x(t) = x0·exp(-t).
type Decay struct {
	N int
}

func NewDecay(n int) *Decay { return &Decay{N: n} }

func (d *Decay) Dim() int { return dynamo.StateSize(d.N) }

func (d *Decay) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i, v := range x {
		dx[i] = -v
	}
	return dx
}
