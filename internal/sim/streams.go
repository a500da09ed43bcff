package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// AddStream validates sc, registers a spawner and returns its index. Rate
// and count are clamped to the interactive bands; negative values and
// non-positive mass or radius are rejected.
func (s *Simulator) AddStream(sc StreamConfig) (int, error) {
	i := len(s.streams)
	if err := sc.validate(); err != nil {
		return -1, fmt.Errorf("stream %d: %w", i, err)
	}
	s.streams = append(s.streams, newStream(sc))
	return i, nil
}

// Streams returns the effective stream settings.
func (s *Simulator) Streams() []StreamConfig {
	out := make([]StreamConfig, len(s.streams))
	for i, st := range s.streams {
		out[i] = st.cfg
	}
	return out
}

func (s *Simulator) stream(i int) (*stream, error) {
	if i < 0 || i >= len(s.streams) {
		return nil, fmt.Errorf("stream %d of %d: %w", i, len(s.streams), dynamo.ErrStreamIndex)
	}
	return s.streams[i], nil
}

// SetStreamRate sets bodies per second, clamped to [MinStreamRate,
// MaxStreamRate]. A negative rate is rejected.
func (s *Simulator) SetStreamRate(i int, rate float64) error {
	st, err := s.stream(i)
	if err != nil {
		return err
	}
	if rate < 0 {
		return dynamo.Invalid("stream rate", rate)
	}
	st.cfg.Rate = ClampRate(rate)
	return nil
}

func (s *Simulator) SetStreamCount(i, n int) error {
	st, err := s.stream(i)
	if err != nil {
		return err
	}
	if n < 0 {
		return dynamo.Invalid("stream count", n)
	}
	st.cfg.Count = ClampCount(n)
	return nil
}

func (s *Simulator) SetStreamPosition(i int, p r2.Vec) error {
	st, err := s.stream(i)
	if err != nil {
		return err
	}
	st.cfg.Position = p
	return nil
}

func (s *Simulator) SetStreamVelocity(i int, v r2.Vec) error {
	st, err := s.stream(i)
	if err != nil {
		return err
	}
	st.cfg.Velocity = v
	return nil
}
