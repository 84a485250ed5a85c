// Package report prints the coordinator's verbose-mode diagnostics: the
// per-rank load distribution and the spatial statistics of the cloud.
// Purely observational; nothing here feeds back into the numerics.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/lindblad/internal/cloud"
)

var header = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))

// Distribution prints the per-rank atom counts gathered in verbose mode.
func Distribution(w io.Writer, counts []int) {
	fmt.Fprintln(w, header.Render("Distribution of atoms in grid"))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "rank\tlocal atoms")
	for rank, n := range counts {
		fmt.Fprintf(tw, "%d\t%d\n", rank, n)
	}
	tw.Flush()
}

// Extent prints per-axis min/max/mean/stddev of the atom positions.
func Extent(w io.Writer, atoms []cloud.Atom) {
	fmt.Fprintln(w, header.Render("Statistics of atoms in the volume"))

	axes := [3]string{"x", "y", "z"}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "axis\tmin\tmax\tmean\tsd")
	for ax := 0; ax < 3; ax++ {
		locs := make([]float64, len(atoms))
		for i, a := range atoms {
			locs[i] = a.Coords[ax]
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			axes[ax], floats.Min(locs), floats.Max(locs),
			stat.Mean(locs, nil), stat.StdDev(locs, nil))
	}
	tw.Flush()
}
