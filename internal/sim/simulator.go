package sim

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/compute"
	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/integrators"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/spatial"
)

// parallelThreshold is the population below which passes stay serial.
const parallelThreshold = 64

// Simulator owns the population and advances it frame by frame. It is not
// safe for concurrent use; drive it from a single goroutine.
type Simulator struct {
	cfg   Config
	log   zerolog.Logger
	state RunState

	pop        *dynamo.Population
	integrator *integrators.Verlet
	grid       *spatial.Grid
	tree       *spatial.Tree
	gravity    *physics.Gravity
	resolver   *physics.Resolver
	boundary   *physics.Boundary
	pool       *compute.Pool

	streams   []*stream
	snapshot  []*dynamo.Body
	observers []Observer

	elapsed   float64
	frames    int64
	stats     FrameStats
	treeBuilt bool
}

type Option func(*Simulator)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.log = l }
}

func WithObserver(o Observer) Option {
	return func(s *Simulator) { s.observers = append(s.observers, o) }
}

func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := spatial.NewGrid(cfg.Width, cfg.Height, cfg.CellSize, cfg.CellMargin)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:        cfg,
		log:        zerolog.Nop(),
		pop:        dynamo.NewPopulation(cfg.MaxBodies),
		integrator: integrators.NewVerlet(cfg.Damping),
		grid:       grid,
		tree:       spatial.NewTree(),
		gravity:    physics.NewGravity(cfg.G, cfg.Theta),
		resolver:   physics.NewResolver(cfg.Response),
		boundary:   physics.NewBoundary(cfg.Bounds(), cfg.Restitution),
	}
	s.cfg.Streams = nil
	for _, sc := range cfg.Streams {
		if _, err := s.AddStream(sc); err != nil {
			return nil, err
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Simulator) Config() Config {
	c := s.cfg
	c.Streams = s.Streams()
	return c
}

func (s *Simulator) State() RunState  { return s.state }
func (s *Simulator) Frames() int64    { return s.frames }
func (s *Simulator) Stats() FrameStats { return s.stats }

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Start acquires the worker pool and begins accepting frames.
func (s *Simulator) Start() error {
	if s.state != Idle {
		return nil
	}
	s.pool = compute.NewPool(s.cfg.Workers, compute.WithLogger(s.log))
	s.state = Running
	s.log.Info().
		Int("workers", s.pool.Workers()).
		Stringer("strategy", s.cfg.Strategy).
		Stringer("gravity", s.cfg.Gravity).
		Msg("simulation started")
	return nil
}

func (s *Simulator) Pause() {
	if s.state == Running {
		s.state = Paused
		s.log.Info().Float64("elapsed", s.elapsed).Msg("simulation paused")
	}
}

func (s *Simulator) Resume() {
	if s.state == Paused {
		s.state = Running
		s.log.Info().Float64("elapsed", s.elapsed).Msg("simulation resumed")
	}
}

// Stop releases the worker pool and returns to Idle. Population and clock
// are kept.
func (s *Simulator) Stop() error {
	if s.state == Idle {
		return nil
	}
	s.state = Idle
	err := s.pool.Shutdown(s.cfg.ShutdownTimeout)
	s.pool = nil
	s.log.Info().Int64("frames", s.frames).Float64("elapsed", s.elapsed).Msg("simulation stopped")
	return err
}

// Frame advances one frame of 1/UpdateRate.
func (s *Simulator) Frame(ctx context.Context) error {
	return s.Advance(ctx, 1/s.cfg.UpdateRate)
}

// Advance runs SubSteps substeps covering frameDt. It returns
// dynamo.ErrNotRunning when Idle and does nothing while Paused.
func (s *Simulator) Advance(ctx context.Context, frameDt float64) error {
	if !(frameDt > 0) {
		return &dynamo.ConfigError{Field: "frame dt", Value: frameDt, Wrapped: dynamo.ErrNonPositiveStep}
	}
	switch s.state {
	case Idle:
		return dynamo.ErrNotRunning
	case Paused:
		return nil
	}

	// A frame is applied whole or not at all, so cancellation is only
	// observed before it starts.
	if err := ctx.Err(); err != nil {
		return err
	}
	fctx := context.WithoutCancel(ctx)

	start := time.Now()
	stepDt := frameDt / float64(s.cfg.SubSteps)
	stats := FrameStats{Frame: s.frames + 1}

	stats.Spawned, stats.Dropped = s.spawn(stepDt)

	for k := 0; k < s.cfg.SubSteps; k++ {
		collisions, clamped, err := s.substep(fctx, stepDt)
		if err != nil {
			return err
		}
		stats.Collisions += collisions
		stats.Clamped += clamped
	}

	s.elapsed += frameDt
	s.frames++
	stats.Bodies = s.pop.Len()
	stats.Duration = time.Since(start)
	s.stats = stats

	for _, o := range s.observers {
		o.OnFrame(s)
	}
	return nil
}

func (s *Simulator) parallel(n int) bool {
	return s.pool != nil && s.pool.Workers() > 1 && n >= parallelThreshold
}

func (s *Simulator) substep(ctx context.Context, dt float64) (collisions, clamped int, err error) {
	s.snapshot = s.pop.SnapshotInto(s.snapshot)
	bodies := s.snapshot
	par := s.parallel(len(bodies))

	s.treeBuilt = s.cfg.Strategy == physics.Tree || s.cfg.Gravity == GravityBarnesHut
	if s.treeBuilt {
		s.tree.Build(bodies, s.boundary.Box)
	}

	switch s.cfg.Strategy {
	case physics.BruteForce:
		collisions = s.resolver.BruteForce(bodies)
	case physics.Grid:
		s.grid.Build(bodies)
		if par {
			collisions, err = s.resolver.WithGridParallel(ctx, bodies, s.grid, s.pool)
		} else {
			collisions = s.resolver.WithGrid(bodies, s.grid)
		}
	case physics.Tree:
		collisions = s.resolver.WithTree(bodies, s.tree)
	}
	if err != nil {
		return collisions, 0, err
	}

	switch s.cfg.Gravity {
	case GravityDirect:
		if par {
			err = s.gravity.BruteForceParallel(ctx, bodies, s.pool)
		} else {
			s.gravity.BruteForce(bodies)
		}
	case GravityBarnesHut:
		if par {
			err = s.gravity.WithTreeParallel(ctx, bodies, s.tree, s.pool)
		} else {
			s.gravity.WithTree(bodies, s.tree)
		}
	}
	if err != nil {
		return collisions, 0, err
	}
	physics.ApplyField(bodies, s.cfg.Field)

	clamped = s.boundary.ClampAll(bodies)
	s.integrator.StepAll(bodies, dt)
	return collisions, clamped, nil
}

func (s *Simulator) spawn(stepDt float64) (spawned, dropped int) {
	if !s.cfg.SpawnActive {
		return 0, 0
	}
	for _, st := range s.streams {
		if !st.due(s.elapsed) {
			continue
		}
		for _, b := range st.bodies(stepDt) {
			if s.pop.Add(b) {
				spawned++
			} else {
				dropped++
			}
		}
	}
	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Int("max", s.pop.Max()).Msg("population full, spawn dropped")
	}
	return spawned, dropped
}

// Snapshot returns what a renderer needs, in population order.
func (s *Simulator) Snapshot() []dynamo.Sprite {
	out := make([]dynamo.Sprite, s.pop.Len())
	for i := range out {
		b := s.pop.At(i)
		out[i] = dynamo.Sprite{Position: b.Position, Radius: b.Radius, ColorTag: b.ColorTag}
	}
	return out
}

func (s *Simulator) Elapsed() float64     { return s.elapsed }
func (s *Simulator) StepDt() float64      { return s.cfg.StepDt() }
func (s *Simulator) Gravitation() float64 { return s.cfg.G }
func (s *Simulator) Len() int             { return s.pop.Len() }

func (s *Simulator) Body(i int) (dynamo.Body, bool) {
	if i < 0 || i >= s.pop.Len() {
		return dynamo.Body{}, false
	}
	return *s.pop.At(i), true
}

// AddBody validates b and appends it. It reports false when the population
// is full.
func (s *Simulator) AddBody(b *dynamo.Body) (bool, error) {
	if err := b.Validate(); err != nil {
		return false, err
	}
	return s.pop.Add(b), nil
}

// TreeCells calls fn with the bounds and depth of every non-empty quadtree
// node from the last substep. It does nothing when no tree was built.
func (s *Simulator) TreeCells(fn func(bounds r2.Box, depth int)) {
	if !s.treeBuilt {
		return
	}
	s.tree.ForEachNode(func(bounds r2.Box, depth int, mass float64) {
		if mass > 0 {
			fn(bounds, depth)
		}
	})
}

// Clear removes every body and rewinds the stream clocks.
func (s *Simulator) Clear() {
	s.pop.Clear()
	s.treeBuilt = false
	for _, st := range s.streams {
		st.reset()
	}
	s.log.Debug().Msg("population cleared")
}

// Reset clears the population and rewinds the simulation clock.
func (s *Simulator) Reset() {
	s.Clear()
	s.elapsed = 0
	s.frames = 0
	s.stats = FrameStats{}
}

func (s *Simulator) MaxBodies() int { return s.pop.Max() }

// SetMaxBodies changes the cap, pruning the oldest bodies. Zero removes the
// cap.
func (s *Simulator) SetMaxBodies(n int) (int, error) {
	if n < 0 {
		return 0, dynamo.Invalid("max bodies", n)
	}
	s.cfg.MaxBodies = n
	removed := s.pop.SetMax(n)
	if removed > 0 {
		s.log.Info().Int("removed", removed).Int("max", n).Msg("population pruned")
	}
	return removed, nil
}

func (s *Simulator) SpawnActive() bool { return s.cfg.SpawnActive }

func (s *Simulator) SetSpawnActive(active bool) {
	s.cfg.SpawnActive = active
}

func (s *Simulator) Strategy() physics.Strategy { return s.cfg.Strategy }

func (s *Simulator) SetStrategy(st physics.Strategy) error {
	if st < physics.BruteForce || st > physics.Tree {
		return dynamo.Invalid("collision strategy", st)
	}
	if st != s.cfg.Strategy {
		s.log.Info().Stringer("from", s.cfg.Strategy).Stringer("to", st).Msg("collision strategy changed")
	}
	s.cfg.Strategy = st
	return nil
}

func (s *Simulator) GravityMode() GravityMode { return s.cfg.Gravity }

func (s *Simulator) SetGravityMode(m GravityMode) error {
	if m < GravityOff || m > GravityBarnesHut {
		return dynamo.Invalid("gravity mode", m)
	}
	s.cfg.Gravity = m
	return nil
}

func (s *Simulator) Field() r2.Vec         { return s.cfg.Field }
func (s *Simulator) SetField(field r2.Vec) { s.cfg.Field = field }

func (s *Simulator) SubSteps() int { return s.cfg.SubSteps }

func (s *Simulator) SetSubSteps(n int) error {
	if n < 1 {
		return &dynamo.ConfigError{Field: "substeps", Value: n, Wrapped: dynamo.ErrNonPositiveStep}
	}
	s.cfg.SubSteps = n
	return nil
}
