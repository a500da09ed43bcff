package telemetry

import (
	"fmt"
	"strings"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Series is a time-indexed table with one column per metric.
type Series struct {
	Names   []string
	Times   []float64
	Columns [][]float64
}

func NewSeries(names ...string) *Series {
	return &Series{Names: names, Columns: make([][]float64, len(names))}
}

func (s *Series) Len() int { return len(s.Times) }

// Append adds one row. values must have one entry per column.
func (s *Series) Append(t float64, values []float64) error {
	if len(values) != len(s.Columns) {
		return fmt.Errorf("telemetry: row has %d values, series has %d columns", len(values), len(s.Columns))
	}
	s.push(t, values)
	return nil
}

// push appends a row already known to match the column count.
func (s *Series) push(t float64, values []float64) {
	s.Times = append(s.Times, t)
	for i, x := range values {
		s.Columns[i] = append(s.Columns[i], x)
	}
}

func (s *Series) Column(name string) ([]float64, bool) {
	for i, n := range s.Names {
		if n == name {
			return s.Columns[i], true
		}
	}
	return nil, false
}

// Recorder samples its metrics after every frame until the tracking window
// closes.
type Recorder struct {
	metrics []Metric
	series  *Series
	limit   float64
	start   float64
	started bool
	row     []float64
}

// NewRecorder tracks metrics for limit seconds of simulated time from the
// first observed frame. A non-positive limit tracks forever.
func NewRecorder(limit float64, metrics ...Metric) *Recorder {
	names := make([]string, len(metrics))
	for i, m := range metrics {
		names[i] = m.Name()
	}
	return &Recorder{
		metrics: metrics,
		series:  NewSeries(names...),
		limit:   limit,
		row:     make([]float64, len(metrics)),
	}
}

func (r *Recorder) OnFrame(v dynamo.View) {
	if !r.started {
		r.started = true
		r.start = v.Elapsed()
	}
	if r.limit > 0 && v.Elapsed()-r.start > r.limit {
		return
	}
	for i, m := range r.metrics {
		m.Observe(v)
		r.row[i] = m.Value()
	}
	r.series.push(v.Elapsed(), r.row)
}

func (r *Recorder) Series() *Series { return r.series }

// Done reports whether the tracking window has closed for a view at elapsed.
func (r *Recorder) Done(elapsed float64) bool {
	return r.started && r.limit > 0 && elapsed-r.start > r.limit
}

// Latest returns the last value of every metric.
func (r *Recorder) Latest() map[string]float64 {
	out := make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (r *Recorder) Reset() {
	for _, m := range r.metrics {
		m.Reset()
	}
	r.series = NewSeries(r.series.Names...)
	r.started = false
}

// Track modes select what a Recorder follows.
const (
	TrackNone   = "none"
	TrackSingle = "single"
	TrackPair   = "pair"
	TrackAll    = "all"
)

// ForTrack returns the metrics for a tracking mode. single needs one body
// index, pair needs two.
func ForTrack(mode string, bodies []int) ([]Metric, error) {
	ms := []Metric{ElapsedTime()}
	switch strings.ToLower(mode) {
	case TrackNone, "":
	case TrackSingle:
		if len(bodies) < 1 {
			return nil, dynamo.Invalid("tracked bodies", bodies)
		}
		i := bodies[0]
		ms = append(ms, BodyPosition(i), BodyVelocity(i), BodyAcceleration(i))
	case TrackPair:
		if len(bodies) < 2 {
			return nil, dynamo.Invalid("tracked bodies", bodies)
		}
		i, j := bodies[0], bodies[1]
		ms = append(ms,
			BodyVelocity(i), BodyAcceleration(i),
			BodyVelocity(j), BodyAcceleration(j),
			PairSeparation(i, j), PairForce(i, j),
		)
	case TrackAll:
		ms = append(ms, PopulationSize(), MeanSpeed(), MaxForce())
	default:
		return nil, dynamo.Invalid("track mode", mode)
	}
	return ms, nil
}
