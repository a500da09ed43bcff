package integrators

import (
	"fmt"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
)

func BenchmarkVerlet(b *testing.B) {
	integrator := NewVerlet(0)
	body := dynamo.NewBody(r2.Vec{X: 1}, 1, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		body.Accelerate(r2.Vec{Y: 1})
		integrator.Step(body, 0.01)
	}
}

func BenchmarkVerlet_StepAll(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("Bodies-%d", n), func(b *testing.B) {
			integrator := NewVerlet(0.5)
			bodies := make([]*dynamo.Body, n)
			for i := range bodies {
				bodies[i] = dynamo.NewBody(r2.Vec{X: float64(i)}, 1, 1)
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				integrator.StepAll(bodies, 0.001)
			}
		})
	}
}
