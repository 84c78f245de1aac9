package scenario

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WaitModel controls the pause between a user's iterations.
type WaitModel interface {
	// Pause returns how long to sleep after an iteration that took
	// elapsed. Never negative.
	Pause(elapsed time.Duration, rng *rand.Rand) time.Duration
}

// NoWait runs iterations back to back.
type NoWait struct{}

func (NoWait) Pause(time.Duration, *rand.Rand) time.Duration { return 0 }

// ConstantWait pauses a fixed duration regardless of how long the
// iteration took.
type ConstantWait struct {
	D time.Duration
}

func (w ConstantWait) Pause(time.Duration, *rand.Rand) time.Duration { return w.D }

// BetweenWait pauses a uniform random duration in [Min, Max).
type BetweenWait struct {
	Min, Max time.Duration
}

func (w BetweenWait) Pause(_ time.Duration, rng *rand.Rand) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + time.Duration(rng.Int63n(int64(w.Max-w.Min)))
}

// ThroughputWait paces a user to PerSecond iterations per second by
// sleeping whatever remains of the 1/PerSecond budget after each
// iteration. An iteration slower than the budget gets no pause.
type ThroughputWait struct {
	PerSecond float64
}

func (w ThroughputWait) Pause(elapsed time.Duration, _ *rand.Rand) time.Duration {
	budget := time.Duration(float64(time.Second) / w.PerSecond)
	if elapsed >= budget {
		return 0
	}
	return budget - elapsed
}

var waitPattern = regexp.MustCompile(`^(\w+)\s*\(([^)]*)\)$`)

// ParseWait parses a wait expression: "constant(1s)", "between(1s, 3s)"
// or "constant_throughput(2)". Bare numbers in constant and between
// mean seconds. An empty expression means no wait.
func ParseWait(expr string) (WaitModel, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return NoWait{}, nil
	}

	m := waitPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, fmt.Errorf("invalid wait expression %q", expr)
	}
	name := m[1]
	args := splitArgs(m[2])

	switch name {
	case "constant":
		if len(args) != 1 {
			return nil, fmt.Errorf("constant takes one duration, got %d arguments", len(args))
		}
		d, err := parseWaitDuration(args[0])
		if err != nil {
			return nil, fmt.Errorf("constant: %w", err)
		}
		if d < 0 {
			return nil, fmt.Errorf("constant: duration cannot be negative")
		}
		return ConstantWait{D: d}, nil

	case "between":
		if len(args) != 2 {
			return nil, fmt.Errorf("between takes two durations, got %d arguments", len(args))
		}
		min, err := parseWaitDuration(args[0])
		if err != nil {
			return nil, fmt.Errorf("between: %w", err)
		}
		max, err := parseWaitDuration(args[1])
		if err != nil {
			return nil, fmt.Errorf("between: %w", err)
		}
		if min < 0 || max < min {
			return nil, fmt.Errorf("between: need 0 <= min <= max, got %s and %s", min, max)
		}
		return BetweenWait{Min: min, Max: max}, nil

	case "constant_throughput":
		if len(args) != 1 {
			return nil, fmt.Errorf("constant_throughput takes one rate, got %d arguments", len(args))
		}
		rate, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("constant_throughput: invalid rate %q", args[0])
		}
		if rate <= 0 {
			return nil, fmt.Errorf("constant_throughput: rate must be greater than 0, got %g", rate)
		}
		return ThroughputWait{PerSecond: rate}, nil

	default:
		return nil, fmt.Errorf("unknown wait model %q (want constant, between or constant_throughput)", name)
	}
}

func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseWaitDuration accepts Go durations and bare numbers meaning
// seconds, so "constant(1)" and "constant(1s)" are equivalent.
func parseWaitDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
