package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"media-derivatives/internal/metrics"
)

// ErrUnavailable is returned when a slot could not be obtained before the
// context ended.
var ErrUnavailable = errors.New("no job slot available")

// MemoryGate blocks while memory pressure is too high to start new work.
// *memory.Monitor implements it.
type MemoryGate interface {
	WaitIfPaused(ctx context.Context) error
}

// Limiter is a weighted semaphore with admission metrics.
type Limiter struct {
	sem      *semaphore.Weighted
	capacity int
	mem      MemoryGate

	active  atomic.Int64
	waiting atomic.Int64
}

// NewLimiter creates a Limiter with capacity slots. mem may be nil.
func NewLimiter(capacity int, mem MemoryGate) *Limiter {
	if capacity < 1 {
		capacity = 1
	}
	return &Limiter{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
		mem:      mem,
	}
}

// Acquire waits for memory headroom and a free slot. The returned release
// func must be called exactly once; extra calls are ignored.
func (l *Limiter) Acquire(ctx context.Context) (release func(), err error) {
	start := time.Now()
	l.waiting.Add(1)
	defer l.waiting.Add(-1)

	if l.mem != nil {
		if err := l.mem.WaitIfPaused(ctx); err != nil {
			metrics.JobsRejectedTotal.WithLabelValues("memory").Inc()
			return nil, fmt.Errorf("%w: waiting for memory: %w", ErrUnavailable, err)
		}
	}

	if err := l.sem.Acquire(ctx, 1); err != nil {
		metrics.JobsRejectedTotal.WithLabelValues("canceled").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	metrics.JobWaitDuration.Observe(time.Since(start).Seconds())
	l.active.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Add(-1)
			l.sem.Release(1)
		})
	}, nil
}

// Capacity returns the number of slots.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// GetStats implements metrics.StatsProvider.
func (l *Limiter) GetStats() metrics.Stats {
	return metrics.Stats{
		JobsActive:   int(l.active.Load()),
		JobsWaiting:  int(l.waiting.Load()),
		JobsCapacity: l.capacity,
	}
}
