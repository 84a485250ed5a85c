package kernel

import (
	"math"

	"github.com/san-kum/lindblad/internal/dynamo"
)

// BBGKY is the physical kernel: driven-dissipative dipole dynamics with
// dipole-dipole couplings, closed at second order. Pair expectations are
// cumulant-expanded, ⟨s^a_m s^b_n⟩ = s^a_m·s^b_n + c^ab_mn, so the
// second-moment tensor feeds back into the dipole equations even though it
// is never retained after integration.
//
// The drive phase theta_m(t) = Freq·t + Phase[m] is recomputed at every
// Derive call. The scratch workspace is reused across calls, which makes a
// single instance unsafe for concurrent Derive; each worker rank owns one.
type BBGKY struct {
	N         int
	Amplitude float64
	Freq      float64
	Delta     []float64 // flattened N×N, row-major
	Gamma     []float64 // flattened N×N, row-major
	Phase     []float64 // kvec·coords per atom, length N

	ws dynamo.State // interaction accumulators, single-writer scratch
}

// NewBBGKY builds a physical kernel for one worker rank. delta, gamma and
// phase are read-only after construction and may be shared across ranks;
// the workspace is private.
func NewBBGKY(n int, amplitude, freq float64, delta, gamma, phase []float64) *BBGKY {
	return &BBGKY{
		N:         n,
		Amplitude: amplitude,
		Freq:      freq,
		Delta:     delta,
		Gamma:     gamma,
		Phase:     phase,
		ws:        make(dynamo.State, dynamo.StateSize(n)),
	}
}

func (k *BBGKY) Dim() int { return dynamo.StateSize(k.N) }

// cidx indexes the flattened second-moment tensor c[a][b][m][n] within the
// full state vector.
func cidx(n, a, b, m, nu int) int {
	return 3*n + ((a*3+b)*n+m)*n + nu
}

func (k *BBGKY) Derive(x dynamo.State, t float64) dynamo.State {
	n := k.N
	dx := make(dynamo.State, len(x))

	sx := x[0:n]
	sy := x[n : 2*n]
	sz := x[2*n : 3*n]

	// Interaction sums per atom, accumulated into the scratch workspace.
	fx := k.ws[0:n]
	fy := k.ws[n : 2*n]
	fz := k.ws[2*n : 3*n]
	for m := 0; m < n; m++ {
		fx[m], fy[m], fz[m] = 0, 0, 0
		row := m * n
		for nu := 0; nu < n; nu++ {
			if nu == m {
				continue
			}
			d := k.Delta[row+nu]
			g := 0.5 * k.Gamma[row+nu]

			zx := sz[m]*sx[nu] + x[cidx(n, 2, 0, m, nu)]
			zy := sz[m]*sy[nu] + x[cidx(n, 2, 1, m, nu)]
			xx := sx[m]*sx[nu] + x[cidx(n, 0, 0, m, nu)]
			yy := sy[m]*sy[nu] + x[cidx(n, 1, 1, m, nu)]
			yx := sy[m]*sx[nu] + x[cidx(n, 1, 0, m, nu)]
			xy := sx[m]*sy[nu] + x[cidx(n, 0, 1, m, nu)]

			fx[m] += g*zx + d*zy
			fy[m] += d*zx - g*zy
			fz[m] += g*(xx+yy) - d*(yx-xy)
		}
	}

	for m := 0; m < n; m++ {
		theta := k.Freq*t + k.Phase[m]
		sin, cos := math.Sincos(theta)
		omega := k.Amplitude

		dx[m] = -0.5*sx[m] + omega*sin*sz[m] + fx[m]
		dx[n+m] = -0.5*sy[m] - omega*cos*sz[m] - fy[m]
		dx[2*n+m] = -(1 + sz[m]) - omega*(sin*sx[m]-cos*sy[m]) - 0.5*fz[m]
	}

	// Pair correlations: decay at the summed single-atom rate, sourced by
	// the direct coupling of the pair. The diagonal (m == n) stays zero.
	for a := 0; a < 3; a++ {
		for b := 0; b < 3; b++ {
			for m := 0; m < n; m++ {
				row := m * n
				for nu := 0; nu < n; nu++ {
					if nu == m {
						continue
					}
					i := cidx(n, a, b, m, nu)
					src := 0.0
					if a == b {
						src = 0.5 * k.Gamma[row+nu] * (1 - x[a*n+m]*x[b*n+nu])
					} else {
						src = -0.5 * k.Gamma[row+nu] * x[a*n+m] * x[b*n+nu]
					}
					switch {
					case a == 0 && b == 1:
						src += k.Delta[row+nu] * sz[m] * sz[nu]
					case a == 1 && b == 0:
						src -= k.Delta[row+nu] * sz[m] * sz[nu]
					}
					dx[i] = -x[i] + src
				}
			}
		}
	}

	return dx
}
