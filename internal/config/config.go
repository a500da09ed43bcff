package config

import (
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

const (
	DefaultScenario   = "streams"
	DefaultBodies     = 200
	DefaultFrames     = 600
	DefaultUpdateRate = 60.0
	DefaultSubSteps   = 8
	DefaultCellSize   = 25.0
	DefaultCellMargin = 5.0
)

type Config struct {
	Scenario    string           `yaml:"scenario"`
	Bodies      int              `yaml:"bodies"`
	Seed        int64            `yaml:"seed"`
	Frames      int              `yaml:"frames"`
	World       WorldConfig      `yaml:"world"`
	Timing      TimingConfig     `yaml:"timing"`
	Gravity     GravityConfig    `yaml:"gravity"`
	Collision   CollisionConfig  `yaml:"collision"`
	Damping     float64          `yaml:"damping"`
	Restitution float64          `yaml:"restitution"`
	MaxBodies   int              `yaml:"max_bodies"`
	Workers     int              `yaml:"workers"`
	SpawnActive bool             `yaml:"spawn_active"`
	Streams     []StreamConfig   `yaml:"streams"`
	Track       TrackConfig      `yaml:"track"`
	Population  PopulationConfig `yaml:"population"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Boundary is [left, top, right, bottom]; all zero means the world.
	Boundary [4]float64 `yaml:"boundary,flow"`
}

type TimingConfig struct {
	UpdateRate      float64       `yaml:"update_rate"`
	SubSteps        int           `yaml:"substeps"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type GravityConfig struct {
	Mode   string  `yaml:"mode"`
	G      float64 `yaml:"g"`
	Theta  float64 `yaml:"theta"`
	FieldX float64 `yaml:"field_x"`
	FieldY float64 `yaml:"field_y"`
}

type CollisionConfig struct {
	Strategy   string  `yaml:"strategy"`
	CellSize   float64 `yaml:"cell_size"`
	CellMargin float64 `yaml:"cell_margin"`
	Response   float64 `yaml:"response"`
}

type StreamConfig struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	VX       float64 `yaml:"vx"`
	VY       float64 `yaml:"vy"`
	Rate     float64 `yaml:"rate"`
	Count    int     `yaml:"count"`
	Mass     float64 `yaml:"mass"`
	Radius   float64 `yaml:"radius"`
	ColorTag int     `yaml:"color"`
}

// PopulationConfig is the mass and size distribution of the random
// scenario: each value is drawn uniformly from mean ± variance.
type PopulationConfig struct {
	Mass             float64 `yaml:"mass"`
	MassVariance     float64 `yaml:"mass_variance"`
	Diameter         float64 `yaml:"diameter"`
	DiameterVariance float64 `yaml:"diameter_variance"`
}

// TrackConfig selects the bodies telemetry follows and for how long.
type TrackConfig struct {
	Mode     string  `yaml:"mode"`
	Bodies   []int   `yaml:"bodies,flow"`
	Duration float64 `yaml:"duration"`
}

func DefaultStream() StreamConfig {
	return StreamConfig{X: 40, Y: 40, VX: 100, VY: 20, Rate: 20, Count: 1, Mass: 5, Radius: 5}
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Bodies:   DefaultBodies,
		Seed:     1,
		Frames:   DefaultFrames,
		World: WorldConfig{
			Width:    710,
			Height:   710,
			Boundary: [4]float64{10, 10, 700, 700},
		},
		Timing: TimingConfig{
			UpdateRate:      DefaultUpdateRate,
			SubSteps:        DefaultSubSteps,
			ShutdownTimeout: 2 * time.Second,
		},
		Gravity: GravityConfig{
			Mode:   sim.GravityBarnesHut.String(),
			G:      physics.DefaultG,
			Theta:  0.5,
			FieldY: 150.81,
		},
		Collision: CollisionConfig{
			Strategy:   physics.Grid.String(),
			CellSize:   DefaultCellSize,
			CellMargin: DefaultCellMargin,
			Response:   physics.DefaultResponse,
		},
		MaxBodies:   5000,
		SpawnActive: true,
		Streams:     []StreamConfig{DefaultStream()},
		Track:       TrackConfig{Mode: "all"},
		Population:  PopulationConfig{Mass: 10, MassVariance: 1, Diameter: 10, DiameterVariance: 1},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Streams = append([]StreamConfig(nil), c.Streams...)
	out.Track.Bodies = append([]int(nil), c.Track.Bodies...)
	return &out
}

// ToSim converts the file representation into a validated sim.Config.
func (c *Config) ToSim() (sim.Config, error) {
	strategy, err := physics.ParseStrategy(c.Collision.Strategy)
	if err != nil {
		return sim.Config{}, err
	}
	mode, err := sim.ParseGravityMode(c.Gravity.Mode)
	if err != nil {
		return sim.Config{}, err
	}

	b := c.World.Boundary
	out := sim.Config{
		Width:           c.World.Width,
		Height:          c.World.Height,
		Boundary:        r2.Box{Min: r2.Vec{X: b[0], Y: b[1]}, Max: r2.Vec{X: b[2], Y: b[3]}},
		UpdateRate:      c.Timing.UpdateRate,
		SubSteps:        c.Timing.SubSteps,
		ShutdownTimeout: c.Timing.ShutdownTimeout,
		G:               c.Gravity.G,
		Theta:           c.Gravity.Theta,
		Gravity:         mode,
		Field:           r2.Vec{X: c.Gravity.FieldX, Y: c.Gravity.FieldY},
		Damping:         c.Damping,
		Restitution:     c.Restitution,
		Strategy:        strategy,
		CellSize:        c.Collision.CellSize,
		CellMargin:      c.Collision.CellMargin,
		Response:        c.Collision.Response,
		MaxBodies:       c.MaxBodies,
		Workers:         c.Workers,
		SpawnActive:     c.SpawnActive,
	}
	for _, s := range c.Streams {
		out.Streams = append(out.Streams, sim.StreamConfig{
			Position: r2.Vec{X: s.X, Y: s.Y},
			Velocity: r2.Vec{X: s.VX, Y: s.VY},
			Rate:     s.Rate,
			Count:    s.Count,
			Mass:     s.Mass,
			Radius:   s.Radius,
			ColorTag: s.ColorTag,
		})
	}
	if err := out.Validate(); err != nil {
		return sim.Config{}, err
	}
	return out, nil
}
