package sim

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

// stream is the runtime state of one spawner. The spawn clock is simulated
// time, so pausing does not cause a burst on resume.
type stream struct {
	cfg    StreamConfig
	last   float64
	primed bool
}

func newStream(cfg StreamConfig) *stream {
	cfg.Rate = ClampRate(cfg.Rate)
	cfg.Count = ClampCount(cfg.Count)
	return &stream{cfg: cfg}
}

func (st *stream) delay() float64 { return 1 / st.cfg.Rate }

// due reports whether the stream should spawn at now and advances its clock.
// The clock advances by one delay per spawn and snaps to now if it falls
// more than one delay behind.
func (st *stream) due(now float64) bool {
	if !st.primed {
		st.primed = true
		st.last = now
		return true
	}
	d := st.delay()
	if now-st.last < d {
		return false
	}
	st.last += d
	if now-st.last >= d {
		st.last = now
	}
	return true
}

func (st *stream) reset() {
	st.primed = false
	st.last = 0
}

// bodies builds one spawn's worth of bodies. Extra bodies line up
// perpendicular to the velocity, one diameter apart.
func (st *stream) bodies(stepDt float64) []*dynamo.Body {
	perp := r2.Vec{Y: 1}
	if v := st.cfg.Velocity; v != (r2.Vec{}) {
		perp = r2.Unit(r2.Vec{X: -v.Y, Y: v.X})
	}
	gap := 2 * st.cfg.Radius

	out := make([]*dynamo.Body, st.cfg.Count)
	for k := range out {
		p := r2.Add(st.cfg.Position, r2.Scale(float64(k)*gap, perp))
		b := dynamo.NewBody(p, st.cfg.Mass, st.cfg.Radius)
		b.ColorTag = st.cfg.ColorTag
		b.SetVelocity(st.cfg.Velocity, stepDt)
		out[k] = b
	}
	return out
}
