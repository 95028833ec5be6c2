package plot

import (
	"context"
	"sync"
	"time"

	"garden-application-api-server/internal/metrics"
)

// WriteFunc persists one grid.
type WriteFunc func(ctx context.Context, g Grid) error

type waiter struct {
	seq  uint64
	done chan error
}

// Flusher is the write queue of one plot. Writes run one at a time in
// submission order. A grid submitted while a write is in flight replaces any
// grid still waiting, so only the newest state is written next. Every
// submitter is told the result of the write that carried its state.
type Flusher struct {
	write   WriteFunc
	timeout time.Duration

	mu      sync.Mutex
	next    *Grid
	nextSeq uint64
	waiters []waiter
	busy    bool
	// idle is closed when the running writer goroutine exits.
	idle chan struct{}
}

// NewFlusher returns a queue that calls write with a context bounded by timeout.
func NewFlusher(write WriteFunc, timeout time.Duration) *Flusher {
	return &Flusher{write: write, timeout: timeout}
}

// Submit queues g and returns a channel that receives the outcome of the
// write covering it. The channel is buffered; callers may stop listening.
func (f *Flusher) Submit(g Grid) <-chan error {
	done := make(chan error, 1)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next != nil {
		metrics.PlotWritesSuperseded.Inc()
	}
	f.nextSeq++
	f.next = &g
	f.waiters = append(f.waiters, waiter{seq: f.nextSeq, done: done})
	if !f.busy {
		f.busy = true
		f.idle = make(chan struct{})
		go f.run(f.idle)
	}
	return done
}

func (f *Flusher) run(idle chan struct{}) {
	for {
		f.mu.Lock()
		if f.next == nil {
			f.busy = false
			close(idle)
			f.mu.Unlock()
			return
		}
		g, seq := *f.next, f.nextSeq
		f.next = nil
		f.mu.Unlock()

		err := f.writeOnce(g)

		f.mu.Lock()
		pending := f.waiters[:0]
		for _, w := range f.waiters {
			if w.seq <= seq {
				w.done <- err
				continue
			}
			pending = append(pending, w)
		}
		f.waiters = pending
		f.mu.Unlock()
	}
}

func (f *Flusher) writeOnce(g Grid) error {
	ctx := context.Background()
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	err := f.write(ctx, g)
	if err != nil {
		metrics.PlotWrites.WithLabelValues("error").Inc()
	} else {
		metrics.PlotWrites.WithLabelValues("ok").Inc()
	}
	return err
}

// Drain blocks until the queue is empty or ctx ends.
func (f *Flusher) Drain(ctx context.Context) error {
	f.mu.Lock()
	if !f.busy {
		f.mu.Unlock()
		return nil
	}
	idle := f.idle
	f.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
