// Package integrate drives an RHS kernel over a requested output time grid
// with an adaptive Dormand-Prince RK45 stepper. Internal step sizes are
// chosen by the error controller; the solver lands exactly on every
// requested output time.
package integrate

import (
	"fmt"
	"math"

	"github.com/san-kum/lindblad/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

type RK45 struct {
	Tol      float64
	MinStep  float64
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(tol float64) *RK45 {
	return &RK45{
		Tol:      tol,
		MinStep:  1e-12,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Solve integrates the kernel from y0 over the given strictly increasing
// time grid and returns the state at every grid point (including times[0]).
// On step underflow it returns an IntegrationError carrying the failing
// time and the last valid state.
func (r *RK45) Solve(k dynamo.Kernel, y0 dynamo.State, times []float64) ([]dynamo.State, error) {
	if err := validateGrid(times); err != nil {
		return nil, err
	}
	if len(y0) != k.Dim() {
		return nil, fmt.Errorf("%w: state length %d, kernel dimension %d",
			dynamo.ErrInvalidConfiguration, len(y0), k.Dim())
	}

	out := make([]dynamo.State, len(times))
	out[0] = y0.Clone()

	y := y0.Clone()
	t := times[0]
	dt := initialStep(times)

	for i := 1; i < len(times); i++ {
		target := times[i]
		for t < target {
			if dt > target-t {
				dt = target - t
			}
			yNew, dtNext, err := r.step(k, y, t, dt)
			if err != nil {
				return nil, &dynamo.IntegrationError{Time: t, Last: y, Wrapped: err}
			}
			if !yNew.IsValid() {
				return nil, &dynamo.IntegrationError{
					Time: t, Last: y,
					Wrapped: fmt.Errorf("state diverged (NaN/Inf)"),
				}
			}
			y = yNew
			t += dt
			dt = dtNext
		}
		out[i] = y.Clone()
	}
	return out, nil
}

// step attempts adaptive steps at shrinking dt until the error estimate
// passes, returning the accepted state and the step size suggestion for
// the next step.
func (r *RK45) step(k dynamo.Kernel, y dynamo.State, t, dt float64) (dynamo.State, float64, error) {
	for {
		yNew, errRatio := r.attempt(k, y, t, dt)
		if errRatio <= 1 {
			var dtNext float64
			if errRatio > 0 {
				dtNext = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
			} else {
				dtNext = dt * r.maxScale
			}
			return yNew, dtNext, nil
		}
		dt *= math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
		if dt < r.MinStep {
			return nil, 0, dynamo.ErrStepTooSmall
		}
	}
}

func (r *RK45) attempt(k dynamo.Kernel, y dynamo.State, t, dt float64) (dynamo.State, float64) {
	n := len(y)

	k1 := k.Derive(y, t)

	y2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y2[i] = y[i] + dt*b21*k1[i]
	}
	k2 := k.Derive(y2, t+a2*dt)

	y3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y3[i] = y[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := k.Derive(y3, t+a3*dt)

	y4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y4[i] = y[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := k.Derive(y4, t+a4*dt)

	y5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y5[i] = y[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := k.Derive(y5, t+a5*dt)

	y6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		y6[i] = y[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := k.Derive(y6, t+dt)

	yNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		yNew[i] = y[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	k7 := k.Derive(yNew, t+dt)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(y[i]) + math.Abs(dt*k1[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}

	return yNew, errMax / r.Tol
}

func validateGrid(times []float64) error {
	if len(times) == 0 {
		return fmt.Errorf("%w: empty time grid", dynamo.ErrInvalidConfiguration)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return fmt.Errorf("%w: time grid not strictly increasing at index %d",
				dynamo.ErrInvalidConfiguration, i)
		}
	}
	return nil
}

func initialStep(times []float64) float64 {
	if len(times) < 2 {
		return 1e-3
	}
	return (times[1] - times[0]) / 10
}

// Linspace builds the (t0, t1, steps) form of a time grid.
func Linspace(t0, t1 float64, steps int) []float64 {
	if steps < 2 || t1 <= t0 {
		return nil
	}
	ts := make([]float64, steps)
	dt := (t1 - t0) / float64(steps-1)
	for i := range ts {
		ts[i] = t0 + float64(i)*dt
	}
	ts[steps-1] = t1
	return ts
}
