package phase

import (
	"testing"

	"github.com/san-kum/lindblad/internal/dynamo"
)

func TestInitialConditionShape(t *testing.T) {
	const n = 4
	s := InitialCondition(0, 2, n)
	if len(s) != dynamo.StateSize(n) {
		t.Fatalf("state length %d, want %d", len(s), dynamo.StateSize(n))
	}
}

func TestInitialConditionContents(t *testing.T) {
	const n, m, alpha = 5, 3, 1
	s := InitialCondition(alpha, m, n)

	p := Points[alpha]
	for i := 0; i < n; i++ {
		wantX, wantY, wantZ := 0.0, 0.0, 1.0
		if i == m {
			wantX, wantY, wantZ = p[0], p[1], p[2]
		}
		if s[i] != wantX || s[n+i] != wantY || s[2*n+i] != wantZ {
			t.Errorf("atom %d dipole = (%v,%v,%v), want (%v,%v,%v)",
				i, s[i], s[n+i], s[2*n+i], wantX, wantY, wantZ)
		}
	}

	for i := 3 * n; i < len(s); i++ {
		if s[i] != 0 {
			t.Fatalf("pair-correlation block nonzero at %d", i)
		}
	}
}

func TestPointsTransverseUnit(t *testing.T) {
	for alpha, p := range Points {
		if got := p[0]*p[0] + p[1]*p[1]; got != 1.0 {
			t.Errorf("phase point %d transverse norm² = %v, want 1", alpha, got)
		}
		if p[2]*p[2] != 1.0 {
			t.Errorf("phase point %d longitudinal component = %v, want ±1", alpha, p[2])
		}
	}
}
