package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/san-kum/chaosynth/internal/config"
	"github.com/san-kum/chaosynth/internal/pipeline"
	"github.com/san-kum/chaosynth/internal/playback"
	"github.com/san-kum/chaosynth/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	debug   bool

	configFile string
	preset     string
	seed       int64
	steps      int
	dt         float64
	sigma      float64
	rho        float64
	beta       float64
	bpm        float64
	engineName string
	output     string
	scale      string
	noSave     bool

	xAxis  int
	yAxis  int
	width  int
	height int

	chartFormat string
	chartOut    string
	trajectory  bool
)

var logger = slog.Default()

// initLogger installs a text handler on stderr; stdout carries rendered
// patterns and tables.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chaosynth",
		Short:         "render the lorenz attractor as a live-coded pattern",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogger(debug)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaosynth", "data directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "integrate, map and hand the pattern to an engine",
		Args:  cobra.NoArgs,
		RunE:  renderPattern,
	}
	renderCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	renderCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	renderCmd.Flags().Int64Var(&seed, "seed", config.DefaultSeed, "random seed for percussion")
	renderCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "integration steps")
	renderCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	renderCmd.Flags().Float64Var(&sigma, "sigma", 10, "lorenz sigma")
	renderCmd.Flags().Float64Var(&rho, "rho", 28, "lorenz rho")
	renderCmd.Flags().Float64Var(&beta, "beta", 8.0/3.0, "lorenz beta")
	renderCmd.Flags().Float64Var(&bpm, "bpm", config.DefaultBPM, "tempo")
	renderCmd.Flags().StringVar(&engineName, "engine", config.DefaultEngine, fmt.Sprintf("playback engine %v", playback.EngineNames()))
	renderCmd.Flags().StringVarP(&output, "output", "o", "", "engine output file (default stdout)")
	renderCmd.Flags().StringVar(&scale, "scale", "minor", "note scale")
	renderCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot trajectory axes and notes",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "ascii phase portrait",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x", 0, "x axis state index")
	phaseCmd.Flags().IntVar(&yAxis, "y", 2, "y axis state index")
	phaseCmd.Flags().IntVar(&width, "width", 80, "plot width")
	phaseCmd.Flags().IntVar(&height, "height", 30, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "lyapunov exponent and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	chartCmd := &cobra.Command{
		Use:   "chart [run_id]",
		Short: "export a phase png or a controls html page",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVar(&chartFormat, "format", "png", "png or html")
	chartCmd.Flags().StringVarP(&chartOut, "out", "o", "", "output file (default <run_id>.<format>)")
	chartCmd.Flags().IntVar(&xAxis, "x", 0, "x axis state index (png)")
	chartCmd.Flags().IntVar(&yAxis, "y", 2, "y axis state index (png)")

	previewCmd := &cobra.Command{
		Use:   "preview [run_id]",
		Short: "step through a run's controls in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  previewRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's controls as csv to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&trajectory, "trajectory", false, "export the trajectory instead")

	rootCmd.AddCommand(renderCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, chartCmd, previewCmd, presetsCmd, exportCSVCmd)
	return rootCmd
}

// loadConfig layers flags over the config file over the preset.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var o config.Overrides
	flags := cmd.Flags()
	if flags.Changed("seed") {
		o.Seed = &seed
	}
	if flags.Changed("steps") {
		o.Steps = &steps
	}
	if flags.Changed("dt") {
		o.Dt = &dt
	}
	if flags.Changed("sigma") {
		o.Sigma = &sigma
	}
	if flags.Changed("rho") {
		o.Rho = &rho
	}
	if flags.Changed("beta") {
		o.Beta = &beta
	}
	if flags.Changed("bpm") {
		o.BPM = &bpm
	}
	if flags.Changed("engine") {
		o.Engine = &engineName
	}
	if flags.Changed("output") {
		o.Output = &output
	}
	if flags.Changed("scale") {
		o.Scale = &scale
	}
	return config.Resolve(preset, configFile, o)
}

// outputPath is the engine's destination; "" means stdout. MIDI never goes
// to a terminal.
func outputPath(cfg *config.Config) string {
	path := cfg.Playback.Output
	if path == "" && cfg.Playback.Engine == "midi" {
		path = "chaosynth.mid"
		cfg.Playback.Output = path
	}
	if path == "-" {
		return ""
	}
	return path
}

// handOff plays res on the configured engine. File output is staged next
// to the destination and renamed into place only once the engine accepted
// the pattern, so a failed or canceled handoff leaves any existing file
// alone.
func handOff(ctx context.Context, cfg *config.Config, res *pipeline.Result) (playback.Engine, error) {
	path := outputPath(cfg)
	if path == "" {
		engine, err := playback.New(cfg.Playback.Engine, os.Stdout, cfg.Playback.Registry)
		if err != nil {
			return nil, err
		}
		return engine, pipeline.Handoff(ctx, engine, res, logger)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, err
	}
	engine, err := playback.New(cfg.Playback.Engine, f, cfg.Playback.Registry)
	if err == nil {
		err = pipeline.Handoff(ctx, engine, res, logger)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return engine, nil
}

func renderPattern(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger.Debug("rendering", "preset", preset, "seed", cfg.Seed, "steps", cfg.Integration.Steps, "dt", cfg.Integration.Dt, "engine", cfg.Playback.Engine)

	rng := rand.New(rand.NewSource(cfg.Seed))
	res, err := pipeline.Compose(cmd.Context(), cfg, cfg.Playback.Registry, rng, logger)
	if err != nil {
		return err
	}
	engine, err := handOff(cmd.Context(), cfg, res)
	if err != nil {
		return err
	}

	if rec, ok := engine.(*playback.Recorder); ok {
		logger.Info("dry run", "patterns", len(rec.Patterns()))
	}

	runID := "-"
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(storage.RunMetadata{
			Seed:          cfg.Seed,
			System:        cfg.System,
			Steps:         cfg.Integration.Steps,
			Dt:            cfg.Integration.Dt,
			Mapping:       cfg.Mapping,
			BPM:           cfg.Playback.BPM,
			StepsPerCycle: res.Pattern.CycleSteps(),
			Engine:        cfg.Playback.Engine,
			Voice:         res.Pattern.Voice,
			Output:        cfg.Playback.Output,
			Diverged:      res.Diverged,
		}, res.Trajectory, res.Controls)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
	}

	logger.Info("rendered",
		"run", runID,
		"steps", res.Controls.Len(),
		"voice", res.Pattern.Voice,
		"cps", fmt.Sprintf("%.4f", res.Pattern.CPS()),
		"diverged", res.Diverged,
	)
	return nil
}
