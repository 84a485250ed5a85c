// Package bbgky wires the full phase-point evolution run: cloud
// construction, parameter broadcast, work scatter, per-(atom, phase point)
// trajectory integration, reduction to the coordinator and the final
// field-correlation series.
package bbgky

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/san-kum/lindblad/internal/cloud"
	"github.com/san-kum/lindblad/internal/comm"
	"github.com/san-kum/lindblad/internal/dynamo"
	"github.com/san-kum/lindblad/internal/field"
	"github.com/san-kum/lindblad/internal/integrate"
	"github.com/san-kum/lindblad/internal/kernel"
	"github.com/san-kum/lindblad/internal/part"
	"github.com/san-kum/lindblad/internal/phase"
)

const root = 0

// Kernel variant names, resolved statically at configuration time.
const (
	KernelBBGKY = "bbgky"
	KernelDecay = "decay"
)

// Params are the immutable model parameters of a run, identical on every
// rank after the setup broadcast.
type Params struct {
	N         int
	Amplitude float64
	Freq      float64
	Radius    float64
	Geometry  cloud.Geometry
	KVecs     [][3]float64
	Tolerance float64
	Kernel    string
	Seed      int64
	Verbose   bool
}

// Result is produced on the coordinator rank only.
type Result struct {
	Times        []float64
	Correlations [][]complex128 // one series per requested wavevector
	Distribution []int          // per-rank atom counts (verbose mode)
	Atoms        []cloud.Atom
}

// System holds a validated run: parameters, the atom cloud and its
// couplings. Construction happens on the coordinator side before any
// collective; configuration and geometry errors are fatal here and prevent
// the run from ever broadcasting.
type System struct {
	params    Params
	atoms     []cloud.Atom
	couplings *cloud.Couplings
}

// New validates the parameters and builds the cloud. atoms may be nil, in
// which case positions are drawn within the configured geometry; an
// explicit list is the deterministic test/reproducibility path.
func New(p Params, atoms []cloud.Atom) (*System, error) {
	if atoms != nil {
		p.N = len(atoms)
	}
	if p.N <= 0 {
		return nil, fmt.Errorf("%w: lattice size %d", dynamo.ErrInvalidConfiguration, p.N)
	}
	if len(p.KVecs) == 0 {
		return nil, fmt.Errorf("%w: no field wavevectors", dynamo.ErrInvalidConfiguration)
	}
	if p.Tolerance <= 0 {
		p.Tolerance = 1e-6
	}
	switch p.Kernel {
	case "":
		p.Kernel = KernelBBGKY
	case KernelBBGKY, KernelDecay:
	default:
		return nil, fmt.Errorf("%w: unknown kernel %q", dynamo.ErrInvalidConfiguration, p.Kernel)
	}
	if p.Geometry == "" {
		p.Geometry = cloud.Cube
	}

	if atoms == nil {
		rng := rand.New(rand.NewSource(p.Seed))
		var err error
		atoms, err = cloud.Random(p.N, p.Radius, p.Geometry, rng)
		if err != nil {
			return nil, err
		}
	}
	couplings, err := cloud.NewCouplings(atoms)
	if err != nil {
		return nil, err
	}
	return &System{params: p, atoms: atoms, couplings: couplings}, nil
}

func (s *System) Atoms() []cloud.Atom { return s.atoms }

// setup is the broadcast payload: everything a worker needs besides its
// partition. Read-only after the broadcast.
type setup struct {
	params Params
	atoms  []cloud.Atom
	delta  []float64
	gamma  []float64
	phases []float64 // drive wavevector · coords, per atom
}

// atomSeries is one atom's dipole-component trajectory, summed over the
// phase-point ensemble.
type atomSeries struct {
	Atom   int
	Series [][3]float64 // per output time
}

// rankResult travels through the final gather. A worker that failed
// integration ships its error here instead of data, so the collective
// stays aligned and the coordinator fails the whole run with context.
type rankResult struct {
	Series []atomSeries
	Err    error
}

// Evolve runs the distributed evolution over the group and returns the
// coordinator's result; every other rank returns nil. The time grid is
// validated before anything is broadcast.
func (s *System) Evolve(g *comm.Group, times []float64) (*Result, error) {
	if len(times) < 2 {
		return nil, fmt.Errorf("%w: time grid needs at least two points",
			dynamo.ErrInvalidConfiguration)
	}

	var result *Result
	err := g.Run(func(c *comm.Comm) error {
		res, err := s.rank(c, times)
		if c.Rank() == root {
			result = res
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *System) rank(c *comm.Comm, times []float64) (*Result, error) {
	// Setup broadcast: parameters, atom list, flattened couplings.
	var su setup
	if c.Rank() == root {
		delta, gamma := s.couplings.Flat()
		kvec := s.params.KVecs[0]
		phases := make([]float64, len(s.atoms))
		for i, a := range s.atoms {
			phases[i] = kvec[0]*a.Coords[0] + kvec[1]*a.Coords[1] + kvec[2]*a.Coords[2]
		}
		su = setup{params: s.params, atoms: s.atoms, delta: delta, gamma: gamma, phases: phases}
	}
	su, err := comm.Broadcast(c, root, su)
	if err != nil {
		return nil, err
	}
	n := su.params.N

	// Partition scatter: the coordinator computes the table once.
	var table []part.Range
	if c.Rank() == root {
		table = part.Split(n, c.Size())
	}
	local, err := comm.Scatter(c, root, table)
	if err != nil {
		return nil, err
	}

	series, integErr := s.evolveLocal(su, local, times)

	// Diagnostic only: per-rank load counts. Must not affect results.
	var counts []int
	if su.params.Verbose {
		counts, err = comm.Gather(c, root, local.Len())
		if err != nil {
			return nil, err
		}
	}

	gathered, err := comm.Gather(c, root, rankResult{Series: series, Err: integErr})
	if err != nil {
		return nil, err
	}
	if c.Rank() != root {
		return nil, integErr
	}
	return s.reduce(c, su, times, counts, gathered)
}

// evolveLocal integrates every (owned atom, phase point) trajectory and
// sums the extracted dipole components over the ensemble. An integration
// failure aborts the local loop; the error still travels through the
// gather.
func (s *System) evolveLocal(su setup, local part.Range, times []float64) ([]atomSeries, error) {
	n := su.params.N
	solver := integrate.NewRK45(su.params.Tolerance)

	// One kernel per rank: the scratch workspace is single-writer.
	var k dynamo.Kernel
	switch su.params.Kernel {
	case KernelDecay:
		k = kernel.NewDecay(n)
	default:
		k = kernel.NewBBGKY(n, su.params.Amplitude, su.params.Freq,
			su.delta, su.gamma, su.phases)
	}

	series := make([]atomSeries, 0, local.Len())
	for m := local.Lo; m < local.Hi; m++ {
		sum := make([][3]float64, len(times))
		for alpha := 0; alpha < phase.NAlphas; alpha++ {
			y0 := phase.InitialCondition(alpha, m, n)
			traj, err := solver.Solve(k, y0, times)
			if err != nil {
				var ie *dynamo.IntegrationError
				if errors.As(err, &ie) {
					ie.Atom = m
					ie.Alpha = alpha
				}
				return nil, err
			}
			for t, st := range traj {
				sum[t][0] += st[m]
				sum[t][1] += st[n+m]
				sum[t][2] += st[2*n+m]
			}
		}
		series = append(series, atomSeries{Atom: m, Series: sum})
	}
	return series, nil
}

// reduce reassembles the gathered per-rank slices into the (N, T) aggregate
// in original atom index order, then evaluates the correlation series for
// every requested wavevector.
func (s *System) reduce(c *comm.Comm, su setup, times []float64, counts []int, gathered []rankResult) (*Result, error) {
	n := su.params.N
	table := part.Split(n, c.Size())

	sdata := make([][][3]float64, n)
	for rank, rr := range gathered {
		if rr.Err != nil {
			return nil, rr.Err
		}
		if len(rr.Series) != table[rank].Len() {
			return nil, fmt.Errorf("%w: rank %d returned %d trajectories for a partition of %d",
				dynamo.ErrCollectiveMismatch, rank, len(rr.Series), table[rank].Len())
		}
		for _, as := range rr.Series {
			if as.Atom < table[rank].Lo || as.Atom >= table[rank].Hi {
				return nil, fmt.Errorf("%w: rank %d returned atom %d outside its partition",
					dynamo.ErrCollectiveMismatch, rank, as.Atom)
			}
			sdata[as.Atom] = as.Series
		}
	}

	corrs := make([][]complex128, len(su.params.KVecs))
	for i, kvec := range su.params.KVecs {
		cs, err := field.Correlations(su.atoms, kvec, sdata)
		if err != nil {
			return nil, err
		}
		corrs[i] = cs
	}

	return &Result{Times: times, Correlations: corrs, Atoms: su.atoms, Distribution: counts}, nil
}
