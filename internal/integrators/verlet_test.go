package integrators

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

func TestVerlet_StationaryBodyStaysPut(t *testing.T) {
	integ := NewVerlet(0.1)
	b := dynamo.NewBody(r2.Vec{X: 12.5, Y: -3}, 1, 1)

	for i := 0; i < 10000; i++ {
		integ.Step(b, 0.01)
	}

	if b.Position != (r2.Vec{X: 12.5, Y: -3}) {
		t.Errorf("stationary body moved to %v", b.Position)
	}
}

func TestVerlet_ClearsAcceleration(t *testing.T) {
	integ := NewVerlet(0)
	b := dynamo.NewBody(r2.Vec{}, 1, 1)
	b.Accelerate(r2.Vec{X: 2, Y: 4})

	integ.Step(b, 0.5)

	if b.Acceleration != (r2.Vec{}) {
		t.Errorf("acceleration not cleared: %v", b.Acceleration)
	}
	if b.Applied != (r2.Vec{X: 2, Y: 4}) {
		t.Errorf("Applied = %v, want {2 4}", b.Applied)
	}
	want := r2.Vec{X: 0.5, Y: 1}
	if b.Position != want {
		t.Errorf("Position = %v, want %v", b.Position, want)
	}
}

func TestVerlet_ConstantVelocity(t *testing.T) {
	integ := NewVerlet(0)
	dt := 0.01
	b := dynamo.NewBody(r2.Vec{}, 1, 1)
	b.SetVelocity(r2.Vec{X: 3, Y: -1}, dt)

	steps := 100
	for i := 0; i < steps; i++ {
		integ.Step(b, dt)
	}

	tEnd := float64(steps) * dt
	if math.Abs(b.Position.X-3*tEnd) > 1e-9 || math.Abs(b.Position.Y+tEnd) > 1e-9 {
		t.Errorf("Position = %v, want {%v %v}", b.Position, 3*tEnd, -tEnd)
	}
}

func TestVerlet_ConstantAcceleration(t *testing.T) {
	integ := NewVerlet(0)
	dt := 0.001
	g := 9.81
	b := dynamo.NewBody(r2.Vec{}, 1, 1)

	steps := 1000
	for i := 0; i < steps; i++ {
		b.Accelerate(r2.Vec{Y: g})
		integ.Step(b, dt)
	}

	tEnd := float64(steps) * dt
	expected := 0.5 * g * tEnd * tEnd
	if math.Abs(b.Position.Y-expected)/expected > 0.01 {
		t.Errorf("free fall y = %.6f, want ~%.6f", b.Position.Y, expected)
	}
}

func TestVerlet_DampingDecaysVelocity(t *testing.T) {
	dt := 0.01
	free := dynamo.NewBody(r2.Vec{}, 1, 1)
	damped := dynamo.NewBody(r2.Vec{}, 1, 1)
	free.SetVelocity(r2.Vec{X: 10}, dt)
	damped.SetVelocity(r2.Vec{X: 10}, dt)

	for i := 0; i < 500; i++ {
		NewVerlet(0).Step(free, dt)
		NewVerlet(50).Step(damped, dt)
	}

	vf := free.Velocity(dt).X
	vd := damped.Velocity(dt).X
	if math.Abs(vf-10) > 1e-9 {
		t.Errorf("undamped velocity drifted to %v", vf)
	}
	if !(vd < vf) || vd < 0 {
		t.Errorf("damped velocity %v should be in [0, %v)", vd, vf)
	}
}

func TestVerlet_NonPositiveDtIsNoop(t *testing.T) {
	integ := NewVerlet(0)
	for _, dt := range []float64{0, -0.1} {
		b := dynamo.NewBody(r2.Vec{X: 1}, 1, 1)
		b.PrevPosition = r2.Vec{}
		b.Accelerate(r2.Vec{X: 5})
		integ.Step(b, dt)
		if b.Position.X != 1 || b.PrevPosition.X != 0 || b.Acceleration.X != 5 {
			t.Errorf("dt=%v mutated the body: %+v", dt, *b)
		}
	}
}
