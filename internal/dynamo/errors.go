package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for cloud construction and evolution.
var (
	// ErrInvalidConfiguration indicates unusable run parameters
	// (non-positive lattice size, empty time grid, bad wavevectors).
	ErrInvalidConfiguration = errors.New("lindblad: invalid configuration")

	// ErrDegenerateGeometry indicates two atoms at the same position,
	// for which the dipole-dipole couplings are undefined.
	ErrDegenerateGeometry = errors.New("lindblad: degenerate geometry (coincident atoms)")

	// ErrStepTooSmall indicates the adaptive timestep underflowed.
	ErrStepTooSmall = errors.New("lindblad: adaptive timestep below minimum")

	// ErrCollectiveMismatch indicates a rank participated in a collective
	// with an inconsistent payload; a programming-contract violation.
	ErrCollectiveMismatch = errors.New("lindblad: collective payload mismatch")
)

// IntegrationError reports solver non-convergence with enough context to
// reproduce: the failing time, the last valid state, and which
// (atom, phase point) trajectory was being evolved.
type IntegrationError struct {
	Atom    int
	Alpha   int
	Time    float64
	Last    State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("integration failed at t=%.6f (atom %d, phase point %d): %v",
		e.Time, e.Atom, e.Alpha, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
