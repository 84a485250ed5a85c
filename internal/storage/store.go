// Package storage persists runs: a metadata record plus the per-wavevector
// correlation and spectrum dump files.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/lindblad/internal/analysis"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	N         int       `json:"n"`
	Amplitude float64   `json:"amplitude"`
	Detuning  float64   `json:"detuning"`
	Radius    float64   `json:"cloud_radius"`
	Thetas    []float64 `json:"thetas"`
	Steps     int       `json:"steps"`
	T0        float64   `json:"t0"`
	T1        float64   `json:"t1"`
	Workers   int       `json:"workers"`
	Kernel    string    `json:"kernel"`
	Seed      int64     `json:"seed"`
}

func (m RunMetadata) dumpName(prefix string, theta float64) string {
	return fmt.Sprintf("%s_amp_%v_det_%v_theta_%v_cldrad_%v_N_%d.txt",
		prefix, m.Amplitude, m.Detuning, theta, m.Radius, m.N)
}

// Save writes one run directory: metadata.json plus, per requested
// wavevector angle, a correlation dump (time, Re, Im) and a spectrum dump
// (|f|, |S(f)|), space-delimited.
func (s *Store) Save(meta RunMetadata, times []float64, corrs [][]complex128) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	meta.ID = runID
	meta.Timestamp = time.Now()

	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	dt := 0.0
	if len(times) > 1 {
		dt = times[1] - times[0]
	}

	for i, corr := range corrs {
		theta := 0.0
		if i < len(meta.Thetas) {
			theta = meta.Thetas[i]
		}

		corrPath := filepath.Join(runDir, meta.dumpName("corr_time", theta))
		if err := writeCorr(corrPath, times, corr); err != nil {
			return "", err
		}

		spec := analysis.Spectrum(corr)
		freqs := analysis.Freqs(len(corr), dt)
		specPath := filepath.Join(runDir, meta.dumpName("spectrum_omega", theta))
		if err := writeSpectrum(specPath, freqs, analysis.Magnitudes(spec)); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeCorr(path string, times []float64, corr []complex128) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for i := range corr {
		fmt.Fprintf(w, "%.9e %.9e %.9e\n", times[i], real(corr[i]), imag(corr[i]))
	}
	return w.Flush()
}

func writeSpectrum(path string, freqs, mags []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	// Positive-frequency half, as dumped by the reference scripts.
	half := (len(freqs) + 1) / 2
	for i := 0; i < half; i++ {
		v := freqs[i]
		if v < 0 {
			v = -v
		}
		fmt.Fprintf(w, "%.9e %.9e\n", v, mags[i])
	}
	return w.Flush()
}

// List returns the stored run records, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}
	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// CorrFiles lists a run's correlation dump paths.
func (s *Store) CorrFiles(runID string) ([]string, error) {
	return filepath.Glob(filepath.Join(s.baseDir, runID, "corr_time_*.txt"))
}

// ReadSeries reads a correlation dump back as (times, re, im) columns.
func ReadSeries(path string) (times, re, im []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		var row [3]float64
		for i, fld := range fields {
			v, err := strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("%s: bad value %q", path, fld)
			}
			row[i] = v
		}
		times = append(times, row[0])
		re = append(re, row[1])
		im = append(im, row[2])
	}
	return times, re, im, sc.Err()
}
