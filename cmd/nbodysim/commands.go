package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/export"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/scenario"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/telemetry"
	"github.com/san-kum/nbodysim/internal/viz"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const maxPlots = 6

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := scenario.New(cfg, scenario.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render("run: " + cfg.Scenario))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "frames\t%d\n", res.Summary.Frames)
	fmt.Fprintf(w, "bodies\t%d\n", res.Summary.Bodies)
	fmt.Fprintf(w, "spawned\t%d\n", res.Summary.Spawned)
	fmt.Fprintf(w, "dropped\t%d\n", res.Summary.Dropped)
	fmt.Fprintf(w, "contacts\t%d\n", res.Summary.Collisions)
	fmt.Fprintf(w, "wall\t%s\n", res.Summary.Wall.Round(time.Millisecond))
	fmt.Fprintf(w, "per frame\t%s\n", res.Summary.PerFrame())
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()
	plotSeries(res.Series, "")

	meta := exp.Metadata(res)
	meta.Preset = preset
	if save {
		st := storage.New(viper.GetString("data"))
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, res.Series)
		if err != nil {
			return err
		}
		logger.Info().Str("run", runID).Msg("run saved")
		fmt.Println(mutedStyle.Render("saved: " + runID))
	}
	if svgPath != "" {
		s := exp.Simulator()
		palette := viz.GetTheme(viper.GetString("theme")).Colors(8)
		if err := export.SnapshotSVGFile(svgPath, s.Config().Bounds(), s.Snapshot(), palette); err != nil {
			return err
		}
		logger.Info().Str("path", svgPath).Msg("snapshot written")
	}
	if exportPath != "" {
		return exportJSON(exportPath, meta, res.Series)
	}
	return nil
}

func exportJSON(path string, meta storage.RunMetadata, series *telemetry.Series) error {
	if path == "-" {
		return storage.ExportJSON(os.Stdout, meta, series)
	}
	if err := storage.ExportJSONFile(path, meta, series); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("run exported")
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	exp := scenario.New(cfg, scenario.WithLogger(liveLogger()))
	if err := exp.Setup(); err != nil {
		return err
	}
	return viz.RunLive(cmd.Context(), exp.Simulator(), cfg.Scenario, viz.WithTheme(viper.GetString("theme")))
}

// liveLogger keeps info logs from drawing over the alternate screen.
func liveLogger() zerolog.Logger {
	if logger.GetLevel() < zerolog.WarnLevel {
		return logger.Level(zerolog.WarnLevel)
	}
	return logger
}

func benchStrategies(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	strategies := physics.Strategies()
	sims := make([]*sim.Simulator, len(strategies))
	for i, st := range strategies {
		cfg := base.Clone()
		cfg.Collision.Strategy = st.String()
		cfg.Track.Mode = telemetry.TrackNone
		exp := scenario.New(cfg, scenario.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			return err
		}
		sims[i] = exp.Simulator()
	}

	fmt.Printf("benchmarking %s: %d frames, %d bodies\n\n", base.Scenario, base.Frames, base.Bodies)

	summaries := make([]sim.RunSummary, len(sims))
	if parallel {
		summaries, err = sim.NewEnsemble(sims...).Run(cmd.Context(), base.Frames)
		if err != nil {
			return err
		}
	} else {
		for i, s := range sims {
			if summaries[i], err = sim.Run(cmd.Context(), s, base.Frames); err != nil {
				return err
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STRATEGY\tFRAMES\tBODIES\tCONTACTS\tTIME\tPER FRAME")
	for i, sum := range summaries {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
			strategies[i],
			sum.Frames,
			sum.Bodies,
			sum.Collisions,
			sum.Wall.Round(time.Millisecond),
			sum.PerFrame(),
		)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tTIME\tFRAMES\tBODIES\tSTRATEGY\tGRAVITY")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			run.ID,
			run.Scenario,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Bodies,
			run.Strategy,
			run.Gravity,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if series.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", series.Len())

	if column != "" {
		if _, ok := series.Column(column); !ok {
			return fmt.Errorf("unknown column: %s (available: %v)", column, series.Names)
		}
	}
	plotSeries(series, column)

	names := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%.6g\n", k, meta.Metrics[k])
	}
	return w.Flush()
}

// plotSeries draws every column but elapsed time, or only the named one.
func plotSeries(series *telemetry.Series, only string) {
	plotted := 0
	for i, name := range series.Names {
		if name == "elapsed" || (only != "" && name != only) {
			continue
		}
		if plotted == maxPlots {
			break
		}
		data := finite(series.Columns[i])
		if len(data) < 2 {
			continue
		}
		s := telemetry.Summarize(data)
		caption := fmt.Sprintf("%s (mean %.4g, max %.4g)", name, s.Mean, s.Max)
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		))
		fmt.Println()
		plotted++
	}
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(viper.GetString("data"))
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(args[0])
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return exportJSON(outPath, *meta, series)
}

func listPresets(cmd *cobra.Command, args []string) error {
	scenarios := config.ListScenarios()
	if len(args) > 0 {
		scenarios = args
	}
	for _, name := range scenarios {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			fmt.Printf("no presets for scenario: %s\n", name)
			continue
		}
		fmt.Println(titleStyle.Render(name))
		for _, p := range presets {
			cfg := config.GetPreset(name, p)
			fmt.Printf("  %-10s %s\n", p, mutedStyle.Render(fmt.Sprintf(
				"%d bodies, %s collisions, %s gravity", cfg.Bodies, cfg.Collision.Strategy, cfg.Gravity.Mode)))
		}
	}
	return nil
}
