// Package sim drives the engine. A Simulator owns the population and, per
// frame, spawns from its streams and runs SubSteps substeps of
// collide, attract, clamp and integrate.
//
//	s, err := sim.New(sim.DefaultConfig(), sim.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	s.Start()
//	defer s.Stop()
//	for running {
//		if err := s.Frame(ctx); err != nil {
//			return err
//		}
//		draw(s.Snapshot())
//	}
package sim
