// Package cloud builds the atomic gas: atom positions and the pairwise
// dipole-dipole coupling matrices derived from them.
package cloud

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/lindblad/internal/dynamo"
)

// Atom is one emitter in the cloud. Immutable once created; every other
// component refers to it by index.
type Atom struct {
	Index  int
	Coords [3]float64
}

func (a Atom) DistanceTo(b Atom) float64 {
	dx := a.Coords[0] - b.Coords[0]
	dy := a.Coords[1] - b.Coords[1]
	dz := a.Coords[2] - b.Coords[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Geometry selects how random atom positions are drawn.
type Geometry string

const (
	// Ball draws positions uniformly inside a sphere of the cloud radius.
	Ball Geometry = "ball"
	// Cube draws each coordinate uniformly in [0, radius).
	Cube Geometry = "cube"
)

// Random places n atoms independently and uniformly within the given
// geometry of the given radius.
func Random(n int, radius float64, geom Geometry, rng *rand.Rand) ([]Atom, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: lattice size %d", dynamo.ErrInvalidConfiguration, n)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("%w: cloud radius %g", dynamo.ErrInvalidConfiguration, radius)
	}
	atoms := make([]Atom, n)
	for i := 0; i < n; i++ {
		var c [3]float64
		switch geom {
		case Cube:
			c = [3]float64{radius * rng.Float64(), radius * rng.Float64(), radius * rng.Float64()}
		case Ball:
			for {
				c = [3]float64{
					radius * (2*rng.Float64() - 1),
					radius * (2*rng.Float64() - 1),
					radius * (2*rng.Float64() - 1),
				}
				if c[0]*c[0]+c[1]*c[1]+c[2]*c[2] <= radius*radius {
					break
				}
			}
		default:
			return nil, fmt.Errorf("%w: unknown geometry %q", dynamo.ErrInvalidConfiguration, geom)
		}
		atoms[i] = Atom{Index: i, Coords: c}
	}
	return atoms, nil
}

// FromCoords wraps externally supplied coordinates (the reproducibility
// path used by the test harnesses).
func FromCoords(coords [][3]float64) ([]Atom, error) {
	if len(coords) == 0 {
		return nil, fmt.Errorf("%w: empty atom list", dynamo.ErrInvalidConfiguration)
	}
	atoms := make([]Atom, len(coords))
	for i, c := range coords {
		atoms[i] = Atom{Index: i, Coords: c}
	}
	return atoms, nil
}

// Couplings holds the coherent (Delta) and dissipative (Gamma) N×N
// interaction matrices. Both are exactly symmetric; Gamma carries the
// single-atom decay rate 1 on its diagonal.
type Couplings struct {
	Delta *mat.Dense
	Gamma *mat.Dense
}

// NewCouplings computes the dipole-dipole couplings from pairwise atom
// distances d: delta = -cos(d)/(2d), gamma = sin(d)/d. Only the upper
// triangle is computed and then mirrored.
func NewCouplings(atoms []Atom) (*Couplings, error) {
	n := len(atoms)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty atom list", dynamo.ErrInvalidConfiguration)
	}
	delta := mat.NewDense(n, n, nil)
	gamma := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		gamma.Set(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			d := atoms[i].DistanceTo(atoms[j])
			if d == 0 {
				return nil, fmt.Errorf("%w: atoms %d and %d", dynamo.ErrDegenerateGeometry, i, j)
			}
			dv := -0.5 * math.Cos(d) / d
			gv := math.Sin(d) / d
			delta.Set(i, j, dv)
			delta.Set(j, i, dv)
			gamma.Set(i, j, gv)
			gamma.Set(j, i, gv)
		}
	}
	return &Couplings{Delta: delta, Gamma: gamma}, nil
}

// Flat returns the row-major backing slices, the layout the RHS kernel
// consumes.
func (c *Couplings) Flat() (delta, gamma []float64) {
	return c.Delta.RawMatrix().Data, c.Gamma.RawMatrix().Data
}
