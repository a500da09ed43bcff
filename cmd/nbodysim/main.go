package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/nbodysim/internal/config"
)

var (
	configFile string
	preset     string
	frames     int
	bodies     int
	seed       int64
	strategy   string
	gravity    string
	workers    int
	substeps   int
	save       bool
	exportPath string
	svgPath    string
	outPath    string
	column     string
	parallel   bool

	logger zerolog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "nbodysim",
		Short:         "2-D n-body gravity and collision simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging()
		},
	}

	rootCmd.PersistentFlags().String("data", ".nbodysim", "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("theme", "cyberpunk", "live view theme")
	for _, name := range []string{"data", "log-level", "theme"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("nbodysim")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a headless simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	simFlags(runCmd)
	runCmd.Flags().BoolVar(&save, "save", false, "save metadata and telemetry to the data directory")
	runCmd.Flags().StringVar(&exportPath, "export", "", "write the run as JSON to this path (- for stdout)")
	runCmd.Flags().StringVar(&svgPath, "svg", "", "write the final frame as SVG to this path")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "run a simulation with live terminal rendering",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	simFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "time frames for every collision strategy",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchStrategies,
	}
	simFlags(benchCmd)
	benchCmd.Flags().BoolVar(&parallel, "parallel", false, "run all strategies at once")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot saved telemetry",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "plot only this column")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&outPath, "out", "-", "output path (- for stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, benchCmd, listCmd, plotCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func simFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to simulate")
	cmd.Flags().IntVar(&bodies, "bodies", config.DefaultBodies, "initial bodies placed by the scenario")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&strategy, "strategy", "grid", "collision strategy (brute-force, grid, tree)")
	cmd.Flags().StringVar(&gravity, "gravity", "barnes-hut", "gravity mode (off, direct, barnes-hut)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubSteps, "substeps per frame")
}

func initLogging() error {
	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return nil
}

// resolveConfig layers defaults, an optional preset, an optional config file
// and explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	scenario := config.DefaultScenario
	if len(args) > 0 {
		scenario = args[0]
	}

	cfg := config.DefaultConfig()
	cfg.Scenario = scenario
	if preset != "" {
		cfg = config.GetPreset(scenario, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.Scenario = scenario
		}
	}

	flags := cmd.Flags()
	if flags.Changed("frames") {
		cfg.Frames = frames
	}
	if flags.Changed("bodies") {
		cfg.Bodies = bodies
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("strategy") {
		cfg.Collision.Strategy = strategy
	}
	if flags.Changed("gravity") {
		cfg.Gravity.Mode = gravity
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("substeps") {
		cfg.Timing.SubSteps = substeps
	}
	return cfg, nil
}
