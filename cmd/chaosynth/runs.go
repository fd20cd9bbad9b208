package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/chaosynth/internal/analysis"
	"github.com/san-kum/chaosynth/internal/config"
	"github.com/san-kum/chaosynth/internal/dynamo"
	"github.com/san-kum/chaosynth/internal/export"
	"github.com/san-kum/chaosynth/internal/integrators"
	"github.com/san-kum/chaosynth/internal/physics"
	"github.com/san-kum/chaosynth/internal/playback"
	"github.com/san-kum/chaosynth/internal/storage"
	"github.com/san-kum/chaosynth/internal/viz"
	"github.com/spf13/cobra"
)

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
	fmt.Fprintln(w, "ID\tTIME\tSEED\tSTEPS\tDT\tRHO\tBPM\tENGINE\tVOICE\tDIVERGED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4f\t%g\t%.0f\t%s\t%s\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Steps,
			run.Dt,
			run.System.Rho,
			run.BPM,
			run.Engine,
			run.Voice,
			run.Diverged,
		)
	}

	return w.Flush()
}

// loadRun reads a run's metadata and trajectory.
func loadRun(runID string) (*storage.RunMetadata, dynamo.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, nil, err
	}
	if traj.Len() == 0 {
		return nil, nil, fmt.Errorf("run %s: no data", runID)
	}
	return meta, traj, nil
}

// finiteOnly drops non-finite samples, which asciigraph cannot scale.
func finiteOnly(s []float64) []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, traj, err := loadRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("lorenz: sigma=%g rho=%g beta=%.4g\n", meta.System.Sigma, meta.System.Rho, meta.System.Beta)
	fmt.Printf("samples: %d\n\n", traj.Len())

	for i, name := range []string{"x", "y", "z"} {
		data := finiteOnly(traj.Axis(i))
		if len(data) < 2 {
			continue
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs step"),
		))
		fmt.Println()
	}

	controls, err := storage.New(dataDir).LoadControls(runID)
	if err != nil {
		logger.Debug("no controls for run", "run", runID, "err", err)
		return nil
	}
	notes := make([]float64, controls.Len())
	for i, n := range controls.Notes {
		notes[i] = float64(n)
	}
	if len(notes) > 1 {
		fmt.Println(asciigraph.Plot(notes,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("notes ("+meta.Mapping.Scale+")"),
		))
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	plot := analysis.PhaseASCII(traj, xAxis, yAxis, width, height)
	if plot == "" {
		return fmt.Errorf("cannot plot axes %d,%d of a %d-dimensional trajectory", xAxis, yAxis, traj.Dim())
	}

	fmt.Printf("phase portrait: %s (x%d vs x%d)\n\n", meta.ID, xAxis, yAxis)
	fmt.Print(plot)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, traj, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)

	sys := physics.NewLorenz(meta.System)
	lambda := analysis.LyapunovExponent(sys, integrators.NewRK4(), sys.DefaultState(), meta.Dt, meta.Steps, 1e-8)
	fmt.Printf("largest lyapunov exponent: %.4f", lambda)
	if lambda > 0 {
		fmt.Println(" (chaotic)")
	} else {
		fmt.Println(" (regular)")
	}

	x := traj.Axis(0)
	if ps := analysis.PowerSpectrum(x); len(ps) > 4 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(finiteOnly(ps[:len(ps)/4]),
			asciigraph.Height(15),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (x)"),
		))
		fmt.Println()
	}

	freq := analysis.DominantFrequency(x, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	path := chartOut
	if path == "" {
		path = runID + "." + chartFormat
	}

	write := func(fill func(*os.File) error) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := fill(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}

	switch chartFormat {
	case "png":
		_, traj, err := loadRun(runID)
		if err != nil {
			return err
		}
		err = write(func(f *os.File) error { return export.PhasePNG(f, traj, xAxis, yAxis) })
		if err != nil {
			return err
		}
	case "html":
		controls, err := storage.New(dataDir).LoadControls(runID)
		if err != nil {
			return err
		}
		if err := write(func(f *os.File) error { return export.ControlsHTML(f, controls) }); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown chart format %q (png, html)", chartFormat)
	}

	logger.Info("chart written", "run", runID, "format", chartFormat, "path", path)
	return nil
}

func previewRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	controls, err := st.LoadControls(runID)
	if err != nil {
		return err
	}

	p := &playback.Pattern{
		Name:          meta.ID,
		BPM:           meta.BPM,
		StepsPerCycle: meta.StepsPerCycle,
		Voice:         meta.Voice,
		Controls:      controls,
	}
	return viz.Preview(cmd.Context(), p, meta.Mapping.CutoffRange())
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tRHO\tSTEPS\tDT\tBPM\tSCALE")
	for _, name := range config.ListPresets() {
		cfg, err := config.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%g\t%d\t%g\t%.0f\t%s\n",
			name,
			cfg.System.Rho,
			cfg.Integration.Steps,
			cfg.Integration.Dt,
			cfg.Playback.BPM,
			cfg.Mapping.Scale,
		)
	}
	return w.Flush()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	w := csv.NewWriter(os.Stdout)
	if trajectory {
		traj, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		if err := storage.WriteTrajectoryCSV(w, traj); err != nil {
			return err
		}
	} else {
		controls, err := st.LoadControls(runID)
		if err != nil {
			return err
		}
		if err := storage.WriteControlsCSV(w, controls); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
