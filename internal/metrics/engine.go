package metrics

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Latency histograms track 1µs through 1h at 3 significant figures.
	minLatencyMicros = 1
	maxLatencyMicros = 3600000000

	// Failure messages are truncated before being used as map keys so a
	// high-cardinality error string cannot grow the map without bound.
	maxFailureMessageLen = 100

	// Steady-state RPS needs a few full buckets before it beats the
	// cumulative average.
	minSteadyBuckets = 3
)

// taskAgg accumulates per-task counters and latencies. All fields are
// guarded by the engine mutex.
type taskAgg struct {
	hist     *hdrhistogram.Histogram
	requests int64
	failures int64
	bytes    int64
}

func newTaskAgg() *taskAgg {
	return &taskAgg{hist: hdrhistogram.New(minLatencyMicros, maxLatencyMicros, 3)}
}

// Engine collects samples from concurrent users and serves aggregated
// snapshots. All methods are safe for concurrent use.
type Engine struct {
	cfg       Config
	startTime time.Time

	requests atomic.Int64
	failures atomic.Int64
	bytes    atomic.Int64

	mu    sync.RWMutex
	total *hdrhistogram.Histogram
	tasks map[string]*taskAgg

	failuresMu    sync.Mutex
	failureCounts map[string]map[string]int64

	activeUsers atomic.Int64

	phaseMu      sync.Mutex
	phase        Phase
	phaseHistory []PhaseChange

	store *bucketStore

	stopOnce sync.Once
	stopTime atomic.Int64
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewEngine starts a collector that cuts a time bucket every
// cfg.BucketInterval until Stop is called.
func NewEngine(cfg Config) *Engine {
	if cfg.BucketInterval <= 0 {
		cfg.BucketInterval = DefaultConfig().BucketInterval
	}
	if cfg.MaxBuckets <= 0 {
		cfg.MaxBuckets = DefaultConfig().MaxBuckets
	}

	e := &Engine{
		cfg:           cfg,
		startTime:     time.Now(),
		total:         hdrhistogram.New(minLatencyMicros, maxLatencyMicros, 3),
		tasks:         make(map[string]*taskAgg),
		failureCounts: make(map[string]map[string]int64),
		phase:         PhaseInit,
		store:         newBucketStore(cfg.MaxBuckets),
		done:          make(chan struct{}),
	}
	e.phaseHistory = []PhaseChange{{Phase: PhaseInit, At: e.startTime}}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.run(ctx)
	return e
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.cfg.BucketInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			e.cutBucket()
			return
		case <-ticker.C:
			e.cutBucket()
		}
	}
}

// Stop cuts a final bucket and freezes the elapsed clock. Safe to call
// more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		e.stopTime.Store(time.Now().UnixNano())
		e.cancel()
		<-e.done
	})
}

// RecordSample adds one completed task execution. failMsg is only
// consulted when failed is true.
func (e *Engine) RecordSample(task string, latency time.Duration, failed bool, bytes int64, failMsg string) {
	micros := latency.Microseconds()
	if micros < minLatencyMicros {
		micros = minLatencyMicros
	}
	if micros > maxLatencyMicros {
		micros = maxLatencyMicros
	}

	e.requests.Add(1)
	e.bytes.Add(bytes)
	if failed {
		e.failures.Add(1)
	}
	e.store.record(failed)

	e.mu.Lock()
	_ = e.total.RecordValue(micros)
	agg := e.tasks[task]
	if agg == nil {
		agg = newTaskAgg()
		e.tasks[task] = agg
	}
	_ = agg.hist.RecordValue(micros)
	agg.requests++
	agg.bytes += bytes
	if failed {
		agg.failures++
	}
	e.mu.Unlock()

	if failed {
		e.recordFailure(task, failMsg)
	}
}

func (e *Engine) recordFailure(task, msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	if len(msg) > maxFailureMessageLen {
		msg = msg[:maxFailureMessageLen]
	}
	e.failuresMu.Lock()
	byMsg := e.failureCounts[task]
	if byMsg == nil {
		byMsg = make(map[string]int64)
		e.failureCounts[task] = byMsg
	}
	byMsg[msg]++
	e.failuresMu.Unlock()
}

// SetActiveUsers records the current number of running users.
func (e *Engine) SetActiveUsers(n int) {
	e.activeUsers.Store(int64(n))
}

// ActiveUsers returns the current user gauge.
func (e *Engine) ActiveUsers() int {
	return int(e.activeUsers.Load())
}

// SetPhase transitions the run phase. Repeated calls with the current
// phase are ignored.
func (e *Engine) SetPhase(p Phase) {
	e.phaseMu.Lock()
	defer e.phaseMu.Unlock()
	if e.phase == p {
		return
	}
	e.phase = p
	e.phaseHistory = append(e.phaseHistory, PhaseChange{Phase: p, At: time.Now()})
}

// Phase returns the current run phase.
func (e *Engine) Phase() Phase {
	e.phaseMu.Lock()
	defer e.phaseMu.Unlock()
	return e.phase
}

// PhaseHistory returns every phase transition in order, starting with
// the initial phase.
func (e *Engine) PhaseHistory() []PhaseChange {
	e.phaseMu.Lock()
	defer e.phaseMu.Unlock()
	out := make([]PhaseChange, len(e.phaseHistory))
	copy(out, e.phaseHistory)
	return out
}

// Elapsed returns the wall time covered by the run. After Stop it stays
// fixed at the run duration.
func (e *Engine) Elapsed() time.Duration {
	if ns := e.stopTime.Load(); ns != 0 {
		return time.Unix(0, ns).Sub(e.startTime)
	}
	return time.Since(e.startTime)
}

func (e *Engine) cutBucket() {
	lat := e.latencyStats()
	b := &TimeBucket{
		Timestamp:     time.Now(),
		TotalRequests: e.requests.Load(),
		TotalFailures: e.failures.Load(),
		TotalBytes:    e.bytes.Load(),
		LatencyMin:    lat.Min,
		LatencyMax:    lat.Max,
		LatencyP50:    lat.P50,
		LatencyP90:    lat.P90,
		LatencyP95:    lat.P95,
		LatencyP99:    lat.P99,
		ActiveUsers:   e.ActiveUsers(),
		Phase:         e.Phase(),
	}
	e.store.close(b, e.cfg.BucketInterval)
}

func (e *Engine) latencyStats() LatencyStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return statsFromHist(e.total)
}

func statsFromHist(h *hdrhistogram.Histogram) LatencyStats {
	if h.TotalCount() == 0 {
		return LatencyStats{}
	}
	return LatencyStats{
		Min:    time.Duration(h.Min()) * time.Microsecond,
		Max:    time.Duration(h.Max()) * time.Microsecond,
		Mean:   time.Duration(h.Mean()) * time.Microsecond,
		StdDev: time.Duration(h.StdDev()) * time.Microsecond,
		P50:    time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P95:    time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:    time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
	}
}

// Snapshot returns a consistent view of the run so far.
func (e *Engine) Snapshot() *Snapshot {
	elapsed := e.Elapsed()
	requests := e.requests.Load()
	failures := e.failures.Load()

	snap := &Snapshot{
		StartTime:     e.startTime,
		Elapsed:       elapsed,
		TotalRequests: requests,
		TotalFailures: failures,
		TotalBytes:    e.bytes.Load(),
		ActiveUsers:   e.ActiveUsers(),
		Phase:         e.Phase(),
	}
	if requests > 0 {
		snap.FailRatio = float64(failures) / float64(requests)
	}
	snap.RPS = e.currentRPS(requests, elapsed)

	e.mu.RLock()
	snap.Latency = statsFromHist(e.total)
	snap.Tasks = make([]TaskStats, 0, len(e.tasks))
	for name, agg := range e.tasks {
		ts := TaskStats{
			Name:     name,
			Requests: agg.requests,
			Failures: agg.failures,
			Latency:  statsFromHist(agg.hist),
		}
		if agg.requests > 0 {
			ts.FailRatio = float64(agg.failures) / float64(agg.requests)
		}
		if elapsed > 0 {
			ts.RPS = float64(agg.requests) / elapsed.Seconds()
		}
		snap.Tasks = append(snap.Tasks, ts)
	}
	e.mu.RUnlock()
	sort.Slice(snap.Tasks, func(i, j int) bool { return snap.Tasks[i].Name < snap.Tasks[j].Name })

	snap.Failures = e.failureList()
	return snap
}

// currentRPS prefers the average over steady-state buckets once enough
// of them exist, so ramp-up does not dilute the reported rate.
func (e *Engine) currentRPS(requests int64, elapsed time.Duration) float64 {
	steady, n := e.store.steadyStateRPS()
	if n >= minSteadyBuckets {
		return steady
	}
	if elapsed > 0 {
		return float64(requests) / elapsed.Seconds()
	}
	return 0
}

func (e *Engine) failureList() []FailureCount {
	e.failuresMu.Lock()
	out := make([]FailureCount, 0, len(e.failureCounts))
	for task, byMsg := range e.failureCounts {
		for msg, count := range byMsg {
			out = append(out, FailureCount{Task: task, Message: msg, Count: count})
		}
	}
	e.failuresMu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Task != out[j].Task {
			return out[i].Task < out[j].Task
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// TimeSeries returns the closed buckets oldest first.
func (e *Engine) TimeSeries() []*TimeBucket {
	return e.store.all()
}
