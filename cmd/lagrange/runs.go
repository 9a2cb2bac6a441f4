package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lagrange/internal/analysis"
	"github.com/san-kum/lagrange/internal/dynamo"
	"github.com/san-kum/lagrange/internal/storage"
	"github.com/san-kum/lagrange/internal/viz"
)

var (
	exportOut string
	xAxis     int
	yAxis     int
)

func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot each state component in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "period, spectrum and phase portrait of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&xAxis, "x", 0, "phase portrait x component")
	analyzeCmd.Flags().IntVar(&yAxis, "y", 1, "phase portrait y component")

	csvCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the full state table as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	jsonCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	degreesCmd := &cobra.Command{
		Use:   "degrees [run_id]",
		Short: "write time, angle and angular rate in degrees as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportDegrees,
	}
	for _, c := range []*cobra.Command{csvCmd, jsonCmd, degreesCmd} {
		c.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	}

	return []*cobra.Command{listCmd, plotCmd, analyzeCmd, csvCmd, jsonCmd, degreesCmd}
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tDURATION\tSAMPLES\tINTEG\tEVALS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%d\t%s\t%d\n",
			run.ID,
			run.System,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Samples,
			run.Integrator,
			run.Stats.Evaluations,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, tr, nil
}

// labels names the components of a stored run, falling back to x0, x1, ...
func labels(system string, dim int) []string {
	out := make([]string, dim)
	entry, err := registry.Lookup(system)
	for j := range out {
		if err == nil && j < len(entry.Labels) {
			out[j] = entry.Labels[j]
		} else {
			out[j] = fmt.Sprintf("x%d", j)
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.KeyValues([][2]string{
		{"run", meta.ID},
		{"system", meta.System},
		{"samples", fmt.Sprint(tr.Len())},
	}))
	fmt.Println()

	names := labels(meta.System, tr.Dim())
	for j := 0; j < tr.Dim(); j++ {
		graph := asciigraph.Plot(tr.Column(j),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(names[j]+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println(viz.Separator(80))
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	names := labels(meta.System, tr.Dim())

	fmt.Println(viz.Title.Render("analysis: " + meta.ID))

	kv := [][2]string{{"system", meta.System}}
	if period, err := analysis.Period(tr, 0); err == nil {
		kv = append(kv, [2]string{"period (" + names[0] + ")", fmt.Sprintf("%.5f s", period)})
	} else {
		kv = append(kv, [2]string{"period (" + names[0] + ")", err.Error()})
	}

	dt := tr.Span().Duration() / float64(tr.Len()-1)
	freq := analysis.DominantFrequency(tr.Column(0), dt)
	kv = append(kv, [2]string{"dominant frequency", fmt.Sprintf("%.4f Hz", freq)})
	if drift, ok := meta.Metrics["energy_drift"]; ok {
		kv = append(kv, [2]string{"energy drift", fmt.Sprintf("%.3e", drift)})
	}
	fmt.Println(viz.Panel.Render(viz.KeyValues(kv)))

	ps := analysis.PowerSpectrum(tr.Column(0))
	if len(ps) > 8 {
		ps = ps[1 : len(ps)/4+1]
	}
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum ("+names[0]+")"),
	))
	fmt.Println(viz.Separator(80))

	portrait, err := analysis.NewPhasePortrait(tr, xAxis, yAxis)
	if err != nil {
		return err
	}
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("phase portrait: %s vs %s", names[yAxis], names[xAxis])))
	fmt.Print(portrait.ASCII(80, 24))
	return nil
}

// withOutput runs fn against the --out file, or stdout when unset. The
// file is only kept when fn succeeds.
func withOutput(fn func(w io.Writer) error) error {
	if exportOut == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(exportOut)
		return err
	}
	return f.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(func(w io.Writer) error {
		return storage.WriteCSV(w, tr)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return withOutput(func(w io.Writer) error {
		return storage.ExportJSON(w, *meta, tr)
	})
}

func exportDegrees(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	entry, err := registry.Lookup(meta.System)
	if err != nil {
		return err
	}
	if !entry.Angular {
		return fmt.Errorf("%s has no angle coordinate", meta.System)
	}
	return withOutput(func(w io.Writer) error {
		return storage.WriteDegrees(w, tr)
	})
}
