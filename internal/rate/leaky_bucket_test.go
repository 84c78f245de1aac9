package rate

import (
	"context"
	"testing"
	"time"
)

func TestFirstSlotImmediate(t *testing.T) {
	b := NewLeakyBucket(1)

	start := time.Now()
	next := b.Next()
	if next.After(start.Add(10 * time.Millisecond)) {
		t.Errorf("first slot should be immediate, scheduled %s out", time.Until(next))
	}
}

func TestSlotSpacing(t *testing.T) {
	b := NewLeakyBucket(100) // 10ms apart

	first := b.Next()
	second := b.Next()
	third := b.Next()

	gap1 := second.Sub(first)
	gap2 := third.Sub(second)
	for i, gap := range []time.Duration{gap1, gap2} {
		if gap < 8*time.Millisecond || gap > 12*time.Millisecond {
			t.Errorf("gap %d = %s, want about 10ms", i+1, gap)
		}
	}
}

func TestNoBurstAfterPause(t *testing.T) {
	b := NewLeakyBucket(1000)

	b.Next()
	time.Sleep(50 * time.Millisecond) // over 50 slots worth of idle time

	// Only one accumulated slot may fire immediately; the one after
	// must be scheduled out again.
	now := time.Now()
	first := b.Next()
	second := b.Next()
	if first.After(now.Add(5 * time.Millisecond)) {
		t.Errorf("first slot after pause should be immediate, got +%s", first.Sub(now))
	}
	if !second.After(first) {
		t.Error("second slot after pause should be scheduled, not immediate")
	}
}

func TestWait(t *testing.T) {
	b := NewLeakyBucket(50) // 20ms apart

	ctx := context.Background()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	start := time.Now()
	if err := b.Wait(ctx); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	elapsed := time.Since(start)
	if elapsed < 15*time.Millisecond {
		t.Errorf("second Wait() returned after %s, want about 20ms", elapsed)
	}
}

func TestWaitCancelled(t *testing.T) {
	b := NewLeakyBucket(0.1) // 10s apart, never reached in this test

	b.Next()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := b.Wait(ctx)
	if err == nil {
		t.Fatal("Wait() should return the context error")
	}
	if time.Since(start) > time.Second {
		t.Error("Wait() did not honor cancellation promptly")
	}
}

func TestNonPositiveRate(t *testing.T) {
	b := NewLeakyBucket(0)

	first := b.Next()
	second := b.Next()
	gap := second.Sub(first)
	if gap < 900*time.Millisecond || gap > 1100*time.Millisecond {
		t.Errorf("zero rate should fall back to 1/s, gap = %s", gap)
	}
}
