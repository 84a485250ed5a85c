package dynamo

import (
	"math"
)

// State is a flat real vector. For the full lattice problem it has length
// 3N+9N² and is viewed as two tensors: the first-moment block a (3×N) in
// [0, 3N) and the second-moment block c (3×3×N×N) in [3N, 3N+9N²).
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// StateSize is the flat length of the coupled first/second-moment system
// for a lattice of n atoms.
func StateSize(n int) int {
	return 3*n + 9*n*n
}

// Kernel is the right-hand side of the evolution equations: Derive returns
// dx/dt for the given state and time, with the same shape as x.
// Implementations must not mutate x, but may reuse an internal scratch
// workspace between calls; a single Kernel instance is therefore not safe
// for concurrent Derive calls.
type Kernel interface {
	Derive(x State, t float64) State
	Dim() int
}
