package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/nbodysim/internal/config"
	"github.com/san-kum/nbodysim/internal/sim"
	"github.com/san-kum/nbodysim/internal/storage"
	"github.com/san-kum/nbodysim/internal/telemetry"
)

var ErrNotSetup = errors.New("scenario: experiment not set up")

// Experiment ties a file configuration to a seeded simulator and a
// telemetry recorder.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	log      zerolog.Logger

	simulator *sim.Simulator
	recorder  *telemetry.Recorder
	seeded    int
}

type Option func(*Experiment)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Experiment) { e.log = l }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		p := cfg.Population
		e.registry = NewRegistry(WithBodySpec(BodySpec{
			Mass:             p.Mass,
			MassVariance:     p.MassVariance,
			Diameter:         p.Diameter,
			DiameterVariance: p.DiameterVariance,
		}))
	}
	return e
}

// Setup builds the simulator, seeds its initial population and attaches the
// recorder selected by the track configuration.
func (e *Experiment) Setup() error {
	simCfg, err := e.cfg.ToSim()
	if err != nil {
		return err
	}
	metrics, err := telemetry.ForTrack(e.cfg.Track.Mode, e.cfg.Track.Bodies)
	if err != nil {
		return err
	}

	s, err := sim.New(simCfg, sim.WithLogger(e.log))
	if err != nil {
		return err
	}
	n, err := e.registry.Seed(e.cfg.Scenario, s, e.cfg.Bodies, e.cfg.Seed)
	if err != nil {
		return err
	}

	e.recorder = telemetry.NewRecorder(e.cfg.Track.Duration, metrics...)
	s.AddObserver(e.recorder)
	e.simulator = s
	e.seeded = n

	e.log.Info().
		Str("scenario", e.cfg.Scenario).
		Int("seeded", n).
		Str("strategy", simCfg.Strategy.String()).
		Str("gravity", simCfg.Gravity.String()).
		Msg("experiment ready")
	return nil
}

type Result struct {
	Summary sim.RunSummary
	Series  *telemetry.Series
	Metrics map[string]float64
}

// Run advances the configured number of frames.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.simulator == nil {
		return nil, ErrNotSetup
	}

	sum, err := sim.Run(ctx, e.simulator, e.cfg.Frames)
	if err != nil {
		return nil, err
	}

	metrics := e.recorder.Latest()
	metrics["frames"] = float64(sum.Frames)
	metrics["bodies"] = float64(sum.Bodies)
	metrics["collisions"] = float64(sum.Collisions)
	metrics["spawned"] = float64(sum.Spawned)
	metrics["dropped"] = float64(sum.Dropped)
	metrics["ms_per_frame"] = float64(sum.PerFrame()) / float64(time.Millisecond)

	return &Result{Summary: sum, Series: e.recorder.Series(), Metrics: metrics}, nil
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Recorder() *telemetry.Recorder { return e.recorder }

// Seeded is the number of bodies placed by the scenario.
func (e *Experiment) Seeded() int { return e.seeded }

// Metadata describes a finished run for storage.
func (e *Experiment) Metadata(res *Result) storage.RunMetadata {
	meta := storage.RunMetadata{
		Scenario:   e.cfg.Scenario,
		Seed:       e.cfg.Seed,
		Frames:     e.cfg.Frames,
		UpdateRate: e.cfg.Timing.UpdateRate,
		SubSteps:   e.cfg.Timing.SubSteps,
		Strategy:   e.cfg.Collision.Strategy,
		Gravity:    e.cfg.Gravity.Mode,
		Track:      e.cfg.Track.Mode,
	}
	if res != nil {
		meta.Frames = res.Summary.Frames
		meta.Bodies = res.Summary.Bodies
		meta.Collisions = res.Summary.Collisions
		meta.Metrics = res.Metrics
	}
	return meta
}
