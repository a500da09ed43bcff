package sim

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// RunSummary is what Ensemble.Run reports per simulator.
type RunSummary struct {
	Frames     int
	Bodies     int
	Collisions int
	Spawned    int
	Dropped    int
	Wall       time.Duration
}

// PerFrame is the mean wall time per frame.
func (r RunSummary) PerFrame() time.Duration {
	if r.Frames == 0 {
		return 0
	}
	return r.Wall / time.Duration(r.Frames)
}

// Ensemble advances independent simulators side by side, one goroutine
// each. The simulators must not share bodies.
type Ensemble struct {
	sims []*Simulator
}

func NewEnsemble(sims ...*Simulator) *Ensemble {
	return &Ensemble{sims: sims}
}

// Run starts every simulator, advances each by frames frames and stops it.
// The first error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, frames int) ([]RunSummary, error) {
	results := make([]RunSummary, len(e.sims))

	g, ctx := errgroup.WithContext(ctx)
	for i, s := range e.sims {
		g.Go(func() error {
			sum, err := Run(ctx, s, frames)
			results[i] = sum
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Run drives s for frames frames from Start to Stop.
func Run(ctx context.Context, s *Simulator, frames int) (sum RunSummary, err error) {
	if err := s.Start(); err != nil {
		return sum, err
	}
	defer func() {
		if stopErr := s.Stop(); err == nil {
			err = stopErr
		}
	}()

	start := time.Now()
	for i := 0; i < frames; i++ {
		if err := s.Frame(ctx); err != nil {
			return sum, err
		}
		st := s.Stats()
		sum.Frames++
		sum.Collisions += st.Collisions
		sum.Spawned += st.Spawned
		sum.Dropped += st.Dropped
	}
	sum.Wall = time.Since(start)
	sum.Bodies = s.Len()
	return sum, nil
}
