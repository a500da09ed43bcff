package compute

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrPoolClosed      = errors.New("compute: pool is shut down")
	ErrShutdownTimeout = errors.New("compute: shutdown timed out, in-flight work cancelled")
)

// Pool runs batches of tasks on a bounded number of goroutines. A batch
// (ForEach, Range) blocks until every task has returned. Shutdown rejects
// new batches and waits for the running ones.
type Pool struct {
	workers int
	log     zerolog.Logger

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	active   int
	inflight sync.WaitGroup
	once     sync.Once
	shutErr  error
}

type Option func(*Pool)

func WithLogger(l zerolog.Logger) Option {
	return func(p *Pool) { p.log = l }
}

// NewPool returns a pool with the given worker count. A non-positive count
// selects runtime.NumCPU.
func NewPool(workers int, opts ...Option) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		workers: workers,
		log:     zerolog.Nop(),
		base:    ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log.Debug().Int("workers", workers).Msg("pool started")
	return p
}

func (p *Pool) Workers() int { return p.workers }

func (p *Pool) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Pool) acquire() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.active++
	p.inflight.Add(1)
	return nil
}

func (p *Pool) release() {
	p.mu.Lock()
	p.active--
	p.mu.Unlock()
	p.inflight.Done()
}

// ForEach calls fn for each i in [0, n) with at most Workers calls running
// at once. The context passed to fn is cancelled when ctx is cancelled, when
// any call fails, or when the pool is force-stopped.
func (p *Pool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if err := p.acquire(); err != nil {
		return err
	}
	defer p.release()
	if n <= 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	gctx, cancel := context.WithCancel(gctx)
	defer cancel()
	stop := context.AfterFunc(p.base, cancel)
	defer stop()

	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Range splits [0, n) into contiguous chunks, one per worker, and calls fn
// with each half-open chunk.
func (p *Pool) Range(ctx context.Context, n int, fn func(start, end int)) error {
	if n <= 0 {
		return p.ForEach(ctx, 0, nil)
	}
	chunks := p.workers
	if chunks > n {
		chunks = n
	}
	chunkSize := (n + chunks - 1) / chunks

	return p.ForEach(ctx, chunks, func(_ context.Context, w int) error {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start < end {
			fn(start, end)
		}
		return nil
	})
}

// Shutdown stops accepting work and waits up to timeout for running batches.
// On timeout the pool context is cancelled and ErrShutdownTimeout returned.
// An idle pool stops at once whatever the timeout. Only the first call does
// any work; later calls return its result.
func (p *Pool) Shutdown(timeout time.Duration) error {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		idle := p.active == 0
		p.mu.Unlock()

		if idle {
			p.cancel()
			p.log.Debug().Msg("pool stopped")
			return
		}

		done := make(chan struct{})
		go func() {
			p.inflight.Wait()
			close(done)
		}()

		timer := time.NewTimer(timeout)
		defer timer.Stop()

		select {
		case <-done:
			p.cancel()
			p.log.Debug().Msg("pool stopped")
		case <-timer.C:
			p.cancel()
			p.shutErr = ErrShutdownTimeout
			p.log.Warn().Dur("timeout", timeout).Msg("pool shutdown timed out, cancelling in-flight work")
		}
	})
	return p.shutErr
}
