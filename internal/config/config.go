package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAtoms     = 11
	DefaultAmplitude = 1.0
	DefaultDetuning  = 0.0
	DefaultRadius    = 1.0
	DefaultSteps     = 100
	DefaultT1        = 1.0
	DefaultTolerance = 1e-6
	DefaultKernel    = "bbgky"
	DefaultGeometry  = "cube"
)

type Config struct {
	Atoms     int       `yaml:"atoms"`
	Radius    float64   `yaml:"cloud_radius"`
	Geometry  string    `yaml:"geometry"`
	Amplitude float64   `yaml:"drive_amplitude"`
	Detuning  float64   `yaml:"drive_frequency"`
	Thetas    []float64 `yaml:"thetas"`
	T0        float64   `yaml:"t0"`
	T1        float64   `yaml:"t1"`
	Steps     int       `yaml:"steps"`
	Tolerance float64   `yaml:"tolerance"`
	Kernel    string    `yaml:"kernel"`
	Workers   int       `yaml:"workers"`
	Seed      int64     `yaml:"seed"`
	Verbose   bool      `yaml:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Atoms:     DefaultAtoms,
		Radius:    DefaultRadius,
		Geometry:  DefaultGeometry,
		Amplitude: DefaultAmplitude,
		Detuning:  DefaultDetuning,
		Thetas:    []float64{0},
		T0:        0,
		T1:        DefaultT1,
		Steps:     DefaultSteps,
		Tolerance: DefaultTolerance,
		Kernel:    DefaultKernel,
		Workers:   1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// KVecs maps the configured polar angles onto field wavevectors in the
// x-z plane: k = (sin θ, 0, cos θ).
func (c *Config) KVecs() [][3]float64 {
	ks := make([][3]float64, len(c.Thetas))
	for i, th := range c.Thetas {
		ks[i] = [3]float64{math.Sin(th), 0, math.Cos(th)}
	}
	return ks
}
