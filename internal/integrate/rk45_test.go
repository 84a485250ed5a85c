package integrate

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/lindblad/internal/dynamo"
	"github.com/san-kum/lindblad/internal/kernel"
)

func TestSolveReferenceDecay(t *testing.T) {
	const n = 2
	k := kernel.NewDecay(n)

	y0 := make(dynamo.State, k.Dim())
	for i := range y0 {
		y0[i] = 1.0 + 0.1*float64(i)
	}

	times := Linspace(0, 1, 11)
	out, err := NewRK45(1e-8).Solve(k, y0, times)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if len(out) != len(times) {
		t.Fatalf("got %d states, want %d", len(out), len(times))
	}

	for ti, tv := range times {
		decay := math.Exp(-(tv - times[0]))
		for i := range y0 {
			want := y0[i] * decay
			if math.Abs(out[ti][i]-want) > 1e-6 {
				t.Fatalf("t=%v entry %d: got %v, want %v", tv, i, out[ti][i], want)
			}
		}
	}
}

func TestSolveFirstStateIsInitial(t *testing.T) {
	k := kernel.NewDecay(1)
	y0 := make(dynamo.State, k.Dim())
	y0[0] = 3.5

	out, err := NewRK45(1e-6).Solve(k, y0, Linspace(0, 0.5, 5))
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	for i := range y0 {
		if out[0][i] != y0[i] {
			t.Fatalf("out[0][%d] = %v, want %v", i, out[0][i], y0[i])
		}
	}
}

func TestSolveInvalidGrid(t *testing.T) {
	k := kernel.NewDecay(1)
	y0 := make(dynamo.State, k.Dim())

	cases := [][]float64{
		{},
		{0, 0.5, 0.5},
		{0, 0.5, 0.2},
	}
	for _, times := range cases {
		if _, err := NewRK45(1e-6).Solve(k, y0, times); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
			t.Errorf("grid %v: expected ErrInvalidConfiguration, got %v", times, err)
		}
	}
}

func TestSolveDimensionMismatch(t *testing.T) {
	k := kernel.NewDecay(2)
	if _, err := NewRK45(1e-6).Solve(k, make(dynamo.State, 3), Linspace(0, 1, 3)); !errors.Is(err, dynamo.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
}

// blowup drives the state to infinity in finite time; the solver must fail
// with an IntegrationError, not return NaNs.
type blowup struct{}

func (b blowup) Dim() int { return 1 }
func (b blowup) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

func TestSolveIntegrationFailure(t *testing.T) {
	_, err := NewRK45(1e-6).Solve(blowup{}, dynamo.State{1}, Linspace(0, 10, 5))
	if err == nil {
		t.Fatal("expected failure integrating past a singularity")
	}
	var ie *dynamo.IntegrationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IntegrationError, got %v", err)
	}
	if ie.Last == nil || !ie.Last.IsValid() {
		t.Error("IntegrationError must carry the last valid state")
	}
	if ie.Time < 0 || ie.Time >= 10 {
		t.Errorf("failing time %v outside the grid", ie.Time)
	}
}

func TestLinspace(t *testing.T) {
	ts := Linspace(0, 1, 100)
	if len(ts) != 100 || ts[0] != 0 || ts[99] != 1 {
		t.Fatalf("Linspace endpoints wrong: len=%d first=%v last=%v", len(ts), ts[0], ts[len(ts)-1])
	}
	if Linspace(1, 0, 10) != nil || Linspace(0, 1, 1) != nil {
		t.Error("degenerate grids must return nil")
	}
}
