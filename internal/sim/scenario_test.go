package sim_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/nbodysim/internal/dynamo"
	"github.com/san-kum/nbodysim/internal/physics"
	"github.com/san-kum/nbodysim/internal/sim"
)

var _ = Describe("Simulator", func() {
	var (
		cfg sim.Config
		s   *sim.Simulator
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.DefaultConfig()
		cfg.Workers = 4
	})

	JustBeforeEach(func() {
		var err error
		s, err = sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Start()).To(Succeed())
	})

	AfterEach(func() {
		Expect(s.Stop()).To(Succeed())
	})

	Context("with the default stream under field gravity", func() {
		It("keeps every body inside the world and finite", func() {
			for i := 0; i < 180; i++ {
				Expect(s.Frame(ctx)).To(Succeed())
			}
			Expect(s.Len()).To(BeNumerically(">", 50))

			box := cfg.Boundary
			slack := 10.0
			for i := 0; i < s.Len(); i++ {
				b, ok := s.Body(i)
				Expect(ok).To(BeTrue())
				Expect(b.IsValid()).To(BeTrue())
				Expect(b.Position.X).To(BeNumerically(">=", box.Min.X-slack))
				Expect(b.Position.X).To(BeNumerically("<=", box.Max.X+slack))
				Expect(b.Position.Y).To(BeNumerically(">=", box.Min.Y-slack))
				Expect(b.Position.Y).To(BeNumerically("<=", box.Max.Y+slack))
			}
		})

		It("stops growing once the cap is reached", func() {
			_, err := s.SetMaxBodies(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetStreamRate(0, sim.MaxStreamRate)).To(Succeed())

			for i := 0; i < 60; i++ {
				Expect(s.Frame(ctx)).To(Succeed())
			}
			Expect(s.Len()).To(Equal(20))
		})
	})

	Context("with a large packed population", func() {
		BeforeEach(func() {
			cfg.Streams = nil
			cfg.Field = r2.Vec{}
			cfg.Gravity = sim.GravityOff
		})

		JustBeforeEach(func() {
			for i := 0; i < 400; i++ {
				x := 100 + float64(i%20)*8
				y := 100 + float64(i/20)*8
				ok, err := s.AddBody(dynamo.NewBody(r2.Vec{X: x, Y: y}, 1, 5))
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}
		})

		DescribeTable("every strategy relaxes the overlap",
			func(st physics.Strategy) {
				Expect(s.SetStrategy(st)).To(Succeed())
				Expect(maxOverlap(s)).To(BeNumerically("~", 2, 1e-9))

				Expect(s.Frame(ctx)).To(Succeed())
				Expect(s.Stats().Collisions).To(BeNumerically(">", 0))

				for i := 0; i < 120; i++ {
					Expect(s.Frame(ctx)).To(Succeed())
				}
				Expect(maxOverlap(s)).To(BeNumerically("<", 2))
			},
			Entry("brute force", physics.BruteForce),
			Entry("grid", physics.Grid),
			Entry("tree", physics.Tree),
		)
	})

	Context("when stopped", func() {
		It("refuses frames until started again", func() {
			Expect(s.Stop()).To(Succeed())
			Expect(s.Frame(ctx)).To(MatchError(dynamo.ErrNotRunning))
			Expect(s.Start()).To(Succeed())
			Expect(s.Frame(ctx)).To(Succeed())
		})
	})
})

var _ = Describe("Ensemble", func() {
	It("runs independent simulators to completion", func() {
		var sims []*sim.Simulator
		for _, st := range physics.Strategies() {
			cfg := sim.DefaultConfig()
			cfg.Strategy = st
			s, err := sim.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			sims = append(sims, s)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		results, err := sim.NewEnsemble(sims...).Run(ctx, 30)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		for i, r := range results {
			Expect(r.Frames).To(Equal(30))
			Expect(r.Spawned).To(BeNumerically(">", 0))
			Expect(sims[i].State()).To(Equal(sim.Idle))
		}
	})
})

func maxOverlap(s *sim.Simulator) float64 {
	worst := 0.0
	for i := 0; i < s.Len(); i++ {
		a, _ := s.Body(i)
		for j := i + 1; j < s.Len(); j++ {
			b, _ := s.Body(j)
			d := r2.Norm(r2.Sub(a.Position, b.Position))
			worst = max(worst, a.Radius+b.Radius-d)
		}
	}
	return worst
}
