// Package rate provides the leaky-bucket pacing used to spawn virtual
// users at a steady rate.
package rate

import (
	"context"
	"sync"
	"time"
)

// LeakyBucket hands out slots at a fixed rate per second. The first
// slot is immediate; each subsequent slot is scheduled so that slots
// stay 1/rate apart on average. At most one slot of credit
// accumulates while nobody is asking, so a pause never causes a burst.
type LeakyBucket struct {
	mu          sync.Mutex
	rate        float64
	accumulated float64
	lastDrip    time.Time
}

// NewLeakyBucket creates a bucket dripping at the given rate per
// second. Rates at or below zero are treated as one per second.
func NewLeakyBucket(perSecond float64) *LeakyBucket {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &LeakyBucket{
		rate:        perSecond,
		accumulated: 1, // first slot is free
		lastDrip:    time.Now(),
	}
}

// Next reserves the next slot and returns when it opens. A returned
// time in the past or present means the caller may proceed now.
func (b *LeakyBucket) Next() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.accumulated += now.Sub(b.lastDrip).Seconds() * b.rate
	if b.accumulated > 1 {
		b.accumulated = 1
	}

	if b.accumulated >= 1 {
		b.accumulated--
		b.lastDrip = now
		return now
	}

	deficit := 1 - b.accumulated
	next := now.Add(time.Duration(deficit / b.rate * float64(time.Second)))
	// Advancing lastDrip to the scheduled slot keeps the elapsed time
	// from being counted twice by the next caller.
	b.lastDrip = next
	b.accumulated = 0
	return next
}

// Wait blocks until the next slot opens or the context is done.
func (b *LeakyBucket) Wait(ctx context.Context) error {
	d := time.Until(b.Next())
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
