package sim

import (
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/spatial"
)

// Interactive bands for stream controls. Values outside are clamped.
const (
	MinStreamRate  = 1.0
	MaxStreamRate  = 60.0
	MinStreamCount = 1
	MaxStreamCount = 10
)

type RunState int

const (
	Idle RunState = iota
	Running
	Paused
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

// GravityMode selects how mutual attraction is computed.
type GravityMode int

const (
	GravityOff GravityMode = iota
	GravityDirect
	GravityBarnesHut
)

func (m GravityMode) String() string {
	switch m {
	case GravityOff:
		return "off"
	case GravityDirect:
		return "direct"
	case GravityBarnesHut:
		return "barnes-hut"
	}
	return fmt.Sprintf("GravityMode(%d)", int(m))
}

func ParseGravityMode(s string) (GravityMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return GravityOff, nil
	case "direct", "brute-force":
		return GravityDirect, nil
	case "barnes-hut", "barneshut", "tree":
		return GravityBarnesHut, nil
	}
	return 0, dynamo.Invalid("gravity mode", s)
}

// StreamConfig describes a timed spawner.
type StreamConfig struct {
	Position r2.Vec
	Velocity r2.Vec
	// Rate is in bodies per second and is clamped to the stream band.
	Rate float64
	// Count bodies are emitted side by side on every spawn.
	Count    int
	Mass     float64
	Radius   float64
	ColorTag int
}

type Config struct {
	Width  float64
	Height float64
	// Boundary defaults to the world rectangle when empty.
	Boundary r2.Box

	UpdateRate float64
	SubSteps   int

	G           float64
	Theta       float64
	Gravity     GravityMode
	Field       r2.Vec
	Damping     float64
	Restitution float64

	Strategy   physics.Strategy
	CellSize   float64
	CellMargin float64
	Response   float64

	MaxBodies       int
	Workers         int
	ShutdownTimeout time.Duration

	SpawnActive bool
	Streams     []StreamConfig
}

func DefaultStream() StreamConfig {
	return StreamConfig{
		Position: r2.Vec{X: 40, Y: 40},
		Velocity: r2.Vec{X: 100, Y: 20},
		Rate:     20,
		Count:    1,
		Mass:     5,
		Radius:   5,
	}
}

func DefaultConfig() Config {
	return Config{
		Width:           710,
		Height:          710,
		Boundary:        r2.Box{Min: r2.Vec{X: 10, Y: 10}, Max: r2.Vec{X: 700, Y: 700}},
		UpdateRate:      60,
		SubSteps:        8,
		G:               physics.DefaultG,
		Theta:           spatial.DefaultTheta,
		Gravity:         GravityBarnesHut,
		Field:           r2.Vec{Y: 150.81},
		Strategy:        physics.Grid,
		CellSize:        25,
		CellMargin:      5,
		Response:        physics.DefaultResponse,
		MaxBodies:       5000,
		ShutdownTimeout: 2 * time.Second,
		SpawnActive:     true,
		Streams:         []StreamConfig{DefaultStream()},
	}
}

// StepDt is the substep duration.
func (c Config) StepDt() float64 {
	if c.UpdateRate <= 0 || c.SubSteps <= 0 {
		return 0
	}
	return 1 / c.UpdateRate / float64(c.SubSteps)
}

// Bounds is the clamp box, falling back to the world rectangle.
func (c Config) Bounds() r2.Box {
	if c.Boundary == (r2.Box{}) {
		return r2.Box{Max: r2.Vec{X: c.Width, Y: c.Height}}
	}
	return c.Boundary
}

func (c Config) Validate() error {
	switch {
	case !(c.Width > 0):
		return dynamo.Invalid("width", c.Width)
	case !(c.Height > 0):
		return dynamo.Invalid("height", c.Height)
	case !(c.UpdateRate > 0):
		return &dynamo.ConfigError{Field: "update rate", Value: c.UpdateRate, Wrapped: dynamo.ErrNonPositiveStep}
	case c.SubSteps < 1:
		return &dynamo.ConfigError{Field: "substeps", Value: c.SubSteps, Wrapped: dynamo.ErrNonPositiveStep}
	case c.ShutdownTimeout <= 0:
		return dynamo.Invalid("shutdown timeout", c.ShutdownTimeout)
	case c.G < 0:
		return dynamo.Invalid("G", c.G)
	case c.Theta < 0:
		return dynamo.Invalid("theta", c.Theta)
	case !(c.CellSize > 0):
		return dynamo.Invalid("cell size", c.CellSize)
	case c.CellMargin < 0 || c.CellMargin >= c.CellSize:
		return dynamo.Invalid("cell margin", c.CellMargin)
	case !(c.Response > 0) || c.Response > 2:
		return dynamo.Invalid("collision response", c.Response)
	case c.Damping < 0:
		return dynamo.Invalid("damping", c.Damping)
	case c.Restitution < 0 || c.Restitution > 1:
		return dynamo.Invalid("restitution", c.Restitution)
	case c.MaxBodies < 0:
		return dynamo.Invalid("max bodies", c.MaxBodies)
	case c.Workers < 0:
		return dynamo.Invalid("workers", c.Workers)
	case c.Strategy < physics.BruteForce || c.Strategy > physics.Tree:
		return dynamo.Invalid("collision strategy", c.Strategy)
	case c.Gravity < GravityOff || c.Gravity > GravityBarnesHut:
		return dynamo.Invalid("gravity mode", c.Gravity)
	}
	if b := c.Boundary; b != (r2.Box{}) && (b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y) {
		return dynamo.Invalid("boundary", b)
	}
	for i, sc := range c.Streams {
		if err := sc.validate(); err != nil {
			return fmt.Errorf("stream %d: %w", i, err)
		}
	}
	return nil
}

func (sc StreamConfig) validate() error {
	switch {
	case sc.Rate < 0:
		return dynamo.Invalid("rate", sc.Rate)
	case sc.Count < 0:
		return dynamo.Invalid("count", sc.Count)
	case !(sc.Mass > 0):
		return dynamo.Invalid("mass", sc.Mass)
	case !(sc.Radius > 0):
		return dynamo.Invalid("radius", sc.Radius)
	case !finite(sc.Position) || !finite(sc.Velocity):
		return dynamo.Invalid("position or velocity", sc)
	}
	return nil
}

func ClampRate(rate float64) float64 {
	return min(max(rate, MinStreamRate), MaxStreamRate)
}

func ClampCount(n int) int {
	return min(max(n, MinStreamCount), MaxStreamCount)
}

// Observer is notified after every completed frame.
type Observer interface {
	OnFrame(v dynamo.View)
}

type ObserverFunc func(v dynamo.View)

func (f ObserverFunc) OnFrame(v dynamo.View) { f(v) }

// FrameStats describes the most recent frame.
type FrameStats struct {
	Frame      int64
	Bodies     int
	Collisions int
	Clamped    int
	Spawned    int
	Dropped    int
	Duration   time.Duration
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
