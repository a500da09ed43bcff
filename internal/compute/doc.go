// Package compute provides the bounded worker pool used by the parallel
// broad-phase and gravity paths.
//
// A Pool is an explicit resource: create it with NewPool, run batches with
// ForEach or Range, and release it with Shutdown. Batches block until every
// task has returned, so callers can use a batch boundary as a barrier:
//
//	pool := compute.NewPool(0)
//	defer pool.Shutdown(time.Second)
//
//	err := pool.Range(ctx, len(bodies), func(start, end int) {
//		for i := start; i < end; i++ {
//			// work on bodies[i] only
//		}
//	})
//
// Shutdown is idempotent. If running batches do not finish within the
// timeout, the pool context is cancelled and ErrShutdownTimeout returned.
package compute
