package kernel

import (
	"math"
	"testing"

	"github.com/san-kum/lindblad/internal/dynamo"
	"github.com/san-kum/lindblad/internal/phase"
)

func TestDecayDerive(t *testing.T) {
	k := NewDecay(2)
	x := make(dynamo.State, k.Dim())
	for i := range x {
		x[i] = float64(i + 1)
	}
	dx := k.Derive(x, 0.3)
	if len(dx) != len(x) {
		t.Fatalf("derivative length %d, want %d", len(dx), len(x))
	}
	for i := range x {
		if dx[i] != -x[i] {
			t.Errorf("dx[%d] = %v, want %v", i, dx[i], -x[i])
		}
	}
}

func singleAtomKernel(amp float64) *BBGKY {
	// One atom: couplings are the 1×1 identity-like matrices, zero phase.
	return NewBBGKY(1, amp, 0.0, []float64{0}, []float64{1}, []float64{0})
}

func TestBBGKYShapeAndFiniteness(t *testing.T) {
	const n = 3
	delta := make([]float64, n*n)
	gamma := make([]float64, n*n)
	for i := 0; i < n; i++ {
		gamma[i*n+i] = 1
		for j := 0; j < n; j++ {
			if i != j {
				delta[i*n+j] = 0.1
				gamma[i*n+j] = 0.2
			}
		}
	}
	k := NewBBGKY(n, 1.0, 0.5, delta, gamma, []float64{0, 0.3, 0.6})

	x := phase.InitialCondition(0, 1, n)
	dx := k.Derive(x, 0.7)
	if len(dx) != dynamo.StateSize(n) {
		t.Fatalf("derivative length %d, want %d", len(dx), dynamo.StateSize(n))
	}
	if !dx.IsValid() {
		t.Fatal("derivative contains NaN/Inf")
	}
}

func TestBBGKYNoStateLeakBetweenCalls(t *testing.T) {
	k := singleAtomKernel(1.0)
	x := phase.InitialCondition(0, 0, 1)

	first := k.Derive(x, 0.2).Clone()
	// Perturb the kernel with an unrelated evaluation, then repeat.
	k.Derive(phase.InitialCondition(3, 0, 1), 0.9)
	second := k.Derive(x, 0.2)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated evaluation differs at %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestBBGKYDoesNotMutateInput(t *testing.T) {
	k := singleAtomKernel(2.0)
	x := phase.InitialCondition(1, 0, 1)
	saved := x.Clone()
	k.Derive(x, 0.4)
	for i := range x {
		if x[i] != saved[i] {
			t.Fatalf("input state mutated at %d", i)
		}
	}
}

func TestBBGKYSingleAtomDecay(t *testing.T) {
	// Zero drive, excited atom at the baseline point: the transverse
	// dipole stays zero and the longitudinal component relaxes toward -1.
	k := singleAtomKernel(0.0)
	x := dynamo.State{0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	dx := k.Derive(x, 0.0)

	if dx[0] != 0 || dx[1] != 0 {
		t.Errorf("transverse derivative = (%v,%v), want (0,0)", dx[0], dx[1])
	}
	want := -(1 + 1.0)
	if math.Abs(dx[2]-want) > 1e-14 {
		t.Errorf("dsz = %v, want %v", dx[2], want)
	}
}
