package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Atoms = 8
	cfg.Amplitude = 40.0
	cfg.Radius = 3.5
	cfg.Thetas = []float64{0, math.Pi / 4, math.Pi / 2}
	cfg.Workers = 4

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Atoms != 8 || got.Amplitude != 40.0 || got.Workers != 4 || len(got.Thetas) != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("atoms: 5\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Atoms != 5 {
		t.Errorf("Atoms = %d, want 5", got.Atoms)
	}
	if got.Kernel != DefaultKernel {
		t.Errorf("Kernel = %q, want default %q", got.Kernel, DefaultKernel)
	}
}

func TestKVecs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thetas = []float64{0, math.Pi / 2}
	ks := cfg.KVecs()
	if len(ks) != 2 {
		t.Fatalf("got %d wavevectors", len(ks))
	}
	if math.Abs(ks[0][0]) > 1e-15 || math.Abs(ks[0][2]-1) > 1e-15 {
		t.Errorf("theta=0 kvec = %v, want (0,0,1)", ks[0])
	}
	if math.Abs(ks[1][0]-1) > 1e-15 || math.Abs(ks[1][2]) > 1e-12 {
		t.Errorf("theta=pi/2 kvec = %v, want (1,0,0)", ks[1])
	}
}
