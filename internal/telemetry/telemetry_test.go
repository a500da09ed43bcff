package telemetry

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

type fakeView struct {
	elapsed float64
	dt      float64
	g       float64
	bodies  []dynamo.Body
}

func (f *fakeView) Elapsed() float64     { return f.elapsed }
func (f *fakeView) StepDt() float64      { return f.dt }
func (f *fakeView) Gravitation() float64 { return f.g }
func (f *fakeView) Len() int             { return len(f.bodies) }

func (f *fakeView) Body(i int) (dynamo.Body, bool) {
	if i < 0 || i >= len(f.bodies) {
		return dynamo.Body{}, false
	}
	return f.bodies[i], true
}

func twoBodies() *fakeView {
	a := dynamo.NewBody(r2.Vec{X: 0, Y: 0}, 2, 1)
	b := dynamo.NewBody(r2.Vec{X: 3, Y: 4}, 5, 1)
	b.SetVelocity(r2.Vec{X: 6, Y: 8}, 0.1)
	a.Applied = r2.Vec{X: 0, Y: -2}
	return &fakeView{dt: 0.1, g: 1, bodies: []dynamo.Body{*a, *b}}
}

func TestBodyMetrics(t *testing.T) {
	v := twoBodies()
	tests := []struct {
		metric Metric
		name   string
		want   float64
	}{
		{BodyPosition(1), "pos_1", 5},
		{BodyVelocity(1), "speed_1", 10},
		{BodyAcceleration(0), "accel_0", 2},
		{PairSeparation(0, 1), "sep_0_1", 5},
		{PairForce(0, 1), "force_0_1", 2 * 5 / 25.0},
		{PopulationSize(), "bodies", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", tt.metric.Name(), tt.name)
			}
			if !math.IsNaN(tt.metric.Value()) {
				t.Error("unobserved metric should be NaN")
			}
			tt.metric.Observe(v)
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
			tt.metric.Reset()
			if !math.IsNaN(tt.metric.Value()) {
				t.Error("Reset should clear the value")
			}
		})
	}
}

func TestBodyMetrics_MissingBody(t *testing.T) {
	v := twoBodies()
	for _, m := range []Metric{BodyVelocity(7), PairSeparation(0, 9), PairForce(3, 1)} {
		m.Observe(v)
		if !math.IsNaN(m.Value()) {
			t.Errorf("%s = %v for a missing body, want NaN", m.Name(), m.Value())
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.N != 8 || s.Mean != 5 || s.Min != 2 || s.Max != 9 {
		t.Errorf("Summarize() = %+v", s)
	}
	if math.Abs(s.StdDev-math.Sqrt(32.0/7)) > 1e-9 {
		t.Errorf("StdDev = %v", s.StdDev)
	}

	if one := Summarize([]float64{3}); one.StdDev != 0 || one.Mean != 3 {
		t.Errorf("single value summary = %+v", one)
	}
	if empty := Summarize(nil); empty != (Summary{}) {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestForceTable(t *testing.T) {
	v := &fakeView{dt: 0.1, g: 1}
	for i := 0; i < 5; i++ {
		b := dynamo.NewBody(r2.Vec{X: float64(i)}, 2, 1)
		b.Applied = r2.Vec{Y: float64(i)}
		v.bodies = append(v.bodies, *b)
	}

	rows := ForceTable(v, 2)
	if len(rows) != 3 || len(rows[2]) != 1 {
		t.Fatalf("rows = %v, want 3 rows of 2, 2, 1", rows)
	}
	if rows[1][1] != 6 {
		t.Errorf("force of body 3 = %v, want 6", rows[1][1])
	}
	if all := ForceTable(v, 0); len(all) != 1 || len(all[0]) != 5 {
		t.Errorf("chunk 0 should give one row, got %v", all)
	}
	if ForceTable(&fakeView{}, 4) != nil {
		t.Error("empty view should give no rows")
	}
}

func TestRecorder_Window(t *testing.T) {
	v := twoBodies()
	v.elapsed = 1
	r := NewRecorder(0.55, ElapsedTime(), PairSeparation(0, 1))

	for i := 0; i < 10; i++ {
		r.OnFrame(v)
		v.elapsed += 0.1
	}

	s := r.Series()
	if s.Len() != 6 {
		t.Errorf("recorded %d rows, want 6 inside the window", s.Len())
	}
	if r.Done(1.4) || !r.Done(1.6) {
		t.Error("Done should flip after the window closes")
	}
	sep, ok := s.Column("sep_0_1")
	if !ok || len(sep) != s.Len() || sep[0] != 5 {
		t.Errorf("sep column = %v", sep)
	}
	if _, ok := s.Column("nope"); ok {
		t.Error("unknown column found")
	}

	r.Reset()
	if r.Series().Len() != 0 || r.Done(100) {
		t.Error("Reset should restart the recorder")
	}
}

func TestRecorder_Unlimited(t *testing.T) {
	v := twoBodies()
	r := NewRecorder(0, ElapsedTime())
	for i := 0; i < 100; i++ {
		r.OnFrame(v)
		v.elapsed += 1
	}
	if r.Series().Len() != 100 {
		t.Errorf("recorded %d rows, want 100", r.Series().Len())
	}
	if got := r.Latest()["elapsed"]; got != 99 {
		t.Errorf("latest elapsed = %v", got)
	}
}

func TestSeries_AppendMismatch(t *testing.T) {
	s := NewSeries("a", "b")
	if err := s.Append(0, []float64{1}); err == nil {
		t.Error("expected an error for a short row")
	}
}

func TestForTrack(t *testing.T) {
	tests := []struct {
		mode    string
		bodies  []int
		metrics int
		wantErr bool
	}{
		{"none", nil, 1, false},
		{"", nil, 1, false},
		{"single", []int{0}, 4, false},
		{"Pair", []int{0, 1}, 7, false},
		{"all", nil, 4, false},
		{"single", nil, 0, true},
		{"pair", []int{3}, 0, true},
		{"orbit", nil, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			ms, err := ForTrack(tt.mode, tt.bodies)
			if tt.wantErr {
				if !errors.Is(err, dynamo.ErrInvalidConfig) {
					t.Errorf("ForTrack() error = %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(ms) != tt.metrics {
				t.Errorf("got %d metrics, want %d", len(ms), tt.metrics)
			}
		})
	}
}
