package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lindblad/internal/bbgky"
	"github.com/san-kum/lindblad/internal/cloud"
	"github.com/san-kum/lindblad/internal/comm"
	"github.com/san-kum/lindblad/internal/config"
	"github.com/san-kum/lindblad/internal/integrate"
	"github.com/san-kum/lindblad/internal/report"
	"github.com/san-kum/lindblad/internal/storage"
)

var (
	dataDir    string
	atoms      int
	radius     float64
	geometry   string
	amplitude  float64
	detuning   float64
	thetas     []float64
	steps      int
	t1         float64
	tolerance  float64
	kern       string
	workers    int
	seed       int64
	verbose    bool
	configFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lindblad",
		Short: "driven-dissipative atom cloud phase-point dynamics",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lindblad", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "evolve the cloud and store the field correlations",
		RunE:  runEvolution,
	}
	runCmd.Flags().IntVar(&atoms, "atoms", config.DefaultAtoms, "number of atoms")
	runCmd.Flags().Float64Var(&radius, "radius", config.DefaultRadius, "cloud radius")
	runCmd.Flags().StringVar(&geometry, "geometry", config.DefaultGeometry, "cloud geometry (ball|cube)")
	runCmd.Flags().Float64Var(&amplitude, "amp", config.DefaultAmplitude, "drive amplitude")
	runCmd.Flags().Float64Var(&detuning, "det", config.DefaultDetuning, "drive frequency (detuning)")
	runCmd.Flags().Float64SliceVar(&thetas, "theta", []float64{0}, "field wavevector polar angles")
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "output time steps")
	runCmd.Flags().Float64Var(&t1, "time", config.DefaultT1, "final time")
	runCmd.Flags().Float64Var(&tolerance, "tol", config.DefaultTolerance, "integrator tolerance")
	runCmd.Flags().StringVar(&kern, "kernel", config.DefaultKernel, "rhs kernel (bbgky|decay)")
	runCmd.Flags().IntVar(&workers, "workers", 1, "worker ranks")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for atom placement")
	runCmd.Flags().BoolVar(&verbose, "verbose", false, "print distribution and extent diagnostics")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot |g1(t)| of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func mergeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	// CLI flags override config only when set explicitly.
	if cmd.Flags().Changed("atoms") {
		cfg.Atoms = atoms
	}
	if cmd.Flags().Changed("radius") {
		cfg.Radius = radius
	}
	if cmd.Flags().Changed("geometry") {
		cfg.Geometry = geometry
	}
	if cmd.Flags().Changed("amp") {
		cfg.Amplitude = amplitude
	}
	if cmd.Flags().Changed("det") {
		cfg.Detuning = detuning
	}
	if cmd.Flags().Changed("theta") {
		cfg.Thetas = thetas
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("time") {
		cfg.T1 = t1
	}
	if cmd.Flags().Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if cmd.Flags().Changed("kernel") {
		cfg.Kernel = kern
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = verbose
	}
	if cfg.Seed == 0 || cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func runEvolution(cmd *cobra.Command, args []string) error {
	cfg, err := mergeConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	sys, err := bbgky.New(bbgky.Params{
		N:         cfg.Atoms,
		Amplitude: cfg.Amplitude,
		Freq:      cfg.Detuning,
		Radius:    cfg.Radius,
		Geometry:  cloud.Geometry(cfg.Geometry),
		KVecs:     cfg.KVecs(),
		Tolerance: cfg.Tolerance,
		Kernel:    cfg.Kernel,
		Seed:      cfg.Seed,
		Verbose:   cfg.Verbose,
	}, nil)
	if err != nil {
		return err
	}

	g, err := comm.NewGroup(cfg.Workers)
	if err != nil {
		return err
	}

	times := integrate.Linspace(cfg.T0, cfg.T1, cfg.Steps)

	fmt.Printf("evolving %d atoms over %d ranks...\n", cfg.Atoms, cfg.Workers)
	start := time.Now()
	res, err := sys.Evolve(g, times)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))

	runID, err := st.Save(storage.RunMetadata{
		N: cfg.Atoms, Amplitude: cfg.Amplitude, Detuning: cfg.Detuning,
		Radius: cfg.Radius, Thetas: cfg.Thetas, Steps: cfg.Steps,
		T0: cfg.T0, T1: cfg.T1, Workers: cfg.Workers, Kernel: cfg.Kernel,
		Seed: cfg.Seed,
	}, res.Times, res.Correlations)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)

	if cfg.Verbose {
		fmt.Println()
		report.Distribution(os.Stdout, res.Distribution)
		fmt.Println()
		report.Extent(os.Stdout, res.Atoms)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\ttimestamp\tatoms\tamp\tdet\tkernel\tworkers")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\t%s\t%d\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.N, r.Amplitude, r.Detuning, r.Kernel, r.Workers)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	files, err := st.CorrFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("run %s has no correlation dumps", args[0])
	}
	for _, path := range files {
		_, re, im, err := storage.ReadSeries(path)
		if err != nil {
			return err
		}
		mags := make([]float64, len(re))
		for i := range re {
			mags[i] = re[i]*re[i] + im[i]*im[i]
		}
		fmt.Println(path)
		fmt.Println(asciigraph.Plot(mags, asciigraph.Height(12), asciigraph.Caption("|g1(t)|^2")))
		fmt.Println()
	}
	return nil
}
