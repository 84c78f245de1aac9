// Package metrics aggregates request samples into per-task HDR
// histograms, cumulative counters and a ring of one-second time
// buckets feeding live output, history exports and reports.
package metrics

import "time"

// Phase tracks where the run is in its lifecycle. Buckets are tagged
// with the phase they close in, so steady-state rates can be separated
// from ramp-up noise.
type Phase string

const (
	PhaseInit     Phase = "init"
	PhaseSpawning Phase = "spawning"
	PhaseRunning  Phase = "running"
	PhaseStopping Phase = "stopping"
	PhaseStopped  Phase = "stopped"
)

// PhaseChange records one lifecycle transition.
type PhaseChange struct {
	Phase Phase     `json:"phase"`
	At    time.Time `json:"at"`
}

// TimeBucket is one closed interval of aggregated samples. Cumulative
// fields are totals at close time; interval fields cover only the
// bucket itself.
type TimeBucket struct {
	Timestamp time.Time `json:"timestamp"`

	TotalRequests int64 `json:"totalRequests"`
	TotalFailures int64 `json:"totalFailures"`
	TotalBytes    int64 `json:"totalBytes"`

	IntervalRequests  int64   `json:"intervalRequests"`
	IntervalFailures  int64   `json:"intervalFailures"`
	IntervalRPS       float64 `json:"intervalRPS"`
	IntervalFailRatio float64 `json:"intervalFailRatio"`

	LatencyMin time.Duration `json:"latencyMin"`
	LatencyMax time.Duration `json:"latencyMax"`
	LatencyP50 time.Duration `json:"latencyP50"`
	LatencyP90 time.Duration `json:"latencyP90"`
	LatencyP95 time.Duration `json:"latencyP95"`
	LatencyP99 time.Duration `json:"latencyP99"`

	ActiveUsers int   `json:"activeUsers"`
	Phase       Phase `json:"phase"`
}

// Config sizes the engine.
type Config struct {
	// BucketInterval is how often a time bucket is cut.
	BucketInterval time.Duration

	// MaxBuckets bounds the ring; the oldest buckets fall off.
	MaxBuckets int
}

// DefaultConfig keeps an hour of one-second buckets.
func DefaultConfig() Config {
	return Config{
		BucketInterval: time.Second,
		MaxBuckets:     3600,
	}
}

// LatencyStats is a latency distribution summary.
type LatencyStats struct {
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Mean   time.Duration `json:"mean"`
	StdDev time.Duration `json:"stdDev"`
	P50    time.Duration `json:"p50"`
	P90    time.Duration `json:"p90"`
	P95    time.Duration `json:"p95"`
	P99    time.Duration `json:"p99"`
}

// TaskStats summarizes one task's samples.
type TaskStats struct {
	Name      string       `json:"name"`
	Requests  int64        `json:"requests"`
	Failures  int64        `json:"failures"`
	FailRatio float64      `json:"failRatio"`
	RPS       float64      `json:"rps"`
	Latency   LatencyStats `json:"latency"`
}

// FailureCount is one distinct failure message and how often it
// occurred for a task.
type FailureCount struct {
	Task    string `json:"task"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// Snapshot is a point-in-time view of the whole run.
type Snapshot struct {
	StartTime     time.Time     `json:"startTime"`
	Elapsed       time.Duration `json:"elapsed"`
	TotalRequests int64         `json:"totalRequests"`
	TotalFailures int64         `json:"totalFailures"`
	FailRatio     float64       `json:"failRatio"`
	RPS           float64       `json:"rps"`
	TotalBytes    int64         `json:"totalBytes"`
	ActiveUsers   int           `json:"activeUsers"`
	Phase         Phase         `json:"phase"`
	Latency       LatencyStats  `json:"latency"`

	// Tasks is sorted by name for stable output.
	Tasks []TaskStats `json:"tasks"`

	// Failures is sorted by count, highest first.
	Failures []FailureCount `json:"failures,omitempty"`
}
