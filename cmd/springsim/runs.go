package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	gplot "gonum.org/v1/plot"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/plot"
	"github.com/san-kum/springsim/internal/series"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
)

const svgSize = 600

// loadRun opens the store and reads one run with its samples.
func loadRun(runID string) (*storage.RunMetadata, *series.Log, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	defer st.Close()

	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return nil, nil, err
	}
	if samples.Count() == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func parseColumns(list string) ([]int, error) {
	var cols []int
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		col, err := plot.ParseColumn(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tDT\tM\tK\tC")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4fs\t%g\t%g\t%g\n",
			run.ID,
			run.Name,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Steps,
			run.Dt,
			run.Params["m"],
			run.Params["k"],
			run.Params["c"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if output != "" {
		if !phase {
			return fmt.Errorf("--output requires --phase")
		}
		if err := os.WriteFile(output, []byte(viz.PhaseToSVG(samples, svgSize, svgSize)), 0644); err != nil {
			return err
		}
		fmt.Printf("phase portrait written to %s\n", output)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", samples.Count())

	if phase {
		fmt.Println(analysis.DisplacementVelocity(samples).ASCII(80, 24))
		return nil
	}

	cols, err := parseColumns(columns)
	if err != nil {
		return err
	}
	for _, col := range cols {
		graph := asciigraph.Plot(samples.Column(col),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(plot.ColumnName(col)+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func pngRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	title := meta.Name
	if title == "" {
		title = meta.ID
	}

	var chart *gplot.Plot
	if phase {
		chart, err = plot.Phase(samples, title)
	} else {
		var cols []int
		if cols, err = parseColumns(columns); err == nil {
			chart, err = plot.TimeSeries(samples, cols, title)
		}
	}
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = meta.ID + ".png"
	}
	if err := plot.Save(chart, path); err != nil {
		return err
	}
	fmt.Printf("chart written to %s\n", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	if output == "-" {
		w := csv.NewWriter(os.Stdout)
		if err := w.WriteAll(samples.ExportRows(dynamo.Header)); err != nil {
			return err
		}
		return w.Error()
	}

	path := output
	if path == "" {
		path = storage.DefaultCSVName(time.Now())
	}
	if err := storage.SaveCSV(path, samples.ExportRows(dynamo.Header)); err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	fmt.Printf("exported %d samples to %s\n", samples.Count(), abs)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func deleteRun(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(args[0]); err != nil {
		return err
	}
	logger.Info("deleted", "run", args[0])
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	model := physics.NewMassSpringDamper()
	if err := model.Reset(meta.Params); err != nil {
		return fmt.Errorf("stored parameters are invalid: %w", err)
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("m=%g k=%g c=%g dt=%g\n\n", meta.Params["m"], meta.Params["k"], meta.Params["c"], meta.Dt)

	xs := samples.Column(dynamo.ColDisplacement)
	ps := analysis.PowerSpectrum(xs)
	if len(ps) > 8 {
		graph := asciigraph.Plot(ps[:len(ps)/4],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	s := analysis.Summarize(samples, meta.Dt)
	theory := analysis.AngularToHz(model.DampedFrequency())

	fmt.Printf("samples:            %d\n", s.Samples)
	fmt.Printf("duration:           %.3f s\n", s.Duration)
	fmt.Printf("damping ratio:      %.4f\n", model.DampingRatio())
	fmt.Printf("dominant frequency: %.4f hz (theory %.4f hz)\n", s.DominantFrequency, theory)
	if s.MeasuredPeriod > 0 {
		fmt.Printf("measured period:    %.4f s (theory %.4f s)\n", s.MeasuredPeriod, model.Period())
	}
	fmt.Printf("max displacement:   %.4f m\n", s.MaxDisplacement)
	fmt.Printf("energy:             %.6f -> %.6f J\n", s.InitialEnergy, s.FinalEnergy)
	if trend := analysis.EnergyTrend(samples, trendWindow(samples.Count())); len(trend) > 1 {
		fmt.Printf("energy trend:       %s over %d windows\n", trendLabel(trend), len(trend))
	}

	refErr := analysis.ReferenceError(samples, model.NaturalFrequency(), model.DampingRatio(), meta.Dt)
	if !math.IsNaN(refErr) {
		fmt.Printf("max error vs exact: %.6f m\n", refErr)
	}

	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(meta.Metrics)
	}
	return nil
}

func trendWindow(n int) int {
	return max(n/8, 1)
}

func trendLabel(means []float64) string {
	if analysis.Decreasing(means) {
		return "decreasing"
	}
	return "not decreasing"
}
