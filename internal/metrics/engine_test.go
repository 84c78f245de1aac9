package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestNewEngine(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	if engine == nil {
		t.Fatal("NewEngine() returned nil")
	}
	defer engine.Stop()

	snap := engine.Snapshot()
	if snap.TotalRequests != 0 {
		t.Errorf("initial TotalRequests = %d, want 0", snap.TotalRequests)
	}
	if snap.Phase != PhaseInit {
		t.Errorf("initial phase = %v, want %v", snap.Phase, PhaseInit)
	}
	if len(snap.Tasks) != 0 {
		t.Errorf("initial Tasks length = %d, want 0", len(snap.Tasks))
	}
}

func TestEngineRecordSample(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	engine.RecordSample("post-endpoint", 10*time.Millisecond, false, 1000, "")
	engine.RecordSample("post-endpoint", 20*time.Millisecond, false, 2000, "")
	engine.RecordSample("post-endpoint", 30*time.Millisecond, true, 500, "status 500")

	snap := engine.Snapshot()
	if snap.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", snap.TotalRequests)
	}
	if snap.TotalFailures != 1 {
		t.Errorf("TotalFailures = %d, want 1", snap.TotalFailures)
	}
	if snap.TotalBytes != 3500 {
		t.Errorf("TotalBytes = %d, want 3500", snap.TotalBytes)
	}

	wantRatio := 1.0 / 3.0
	if snap.FailRatio < wantRatio-0.001 || snap.FailRatio > wantRatio+0.001 {
		t.Errorf("FailRatio = %v, want ~%v", snap.FailRatio, wantRatio)
	}
}

func TestEngineLatencyPercentiles(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	for i := 1; i <= 10; i++ {
		engine.RecordSample("t", time.Duration(i*10)*time.Millisecond, false, 100, "")
	}

	lat := engine.Snapshot().Latency

	// HDR histogram binning introduces a small error, so assert ranges.
	if lat.P50 < 40*time.Millisecond || lat.P50 > 60*time.Millisecond {
		t.Errorf("P50 = %v, want ~50ms", lat.P50)
	}
	if lat.P99 < 90*time.Millisecond || lat.P99 > 110*time.Millisecond {
		t.Errorf("P99 = %v, want ~100ms", lat.P99)
	}
	if lat.Min < 9*time.Millisecond || lat.Min > 11*time.Millisecond {
		t.Errorf("Min = %v, want ~10ms", lat.Min)
	}
	if lat.Max < 99*time.Millisecond || lat.Max > 101*time.Millisecond {
		t.Errorf("Max = %v, want ~100ms", lat.Max)
	}
}

func TestEngineLatencyClamped(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	engine.RecordSample("t", 0, false, 0, "")
	engine.RecordSample("t", 2*time.Hour, false, 0, "")

	snap := engine.Snapshot()
	if snap.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2 (out-of-range samples must still count)", snap.TotalRequests)
	}
	if snap.Latency.Max > time.Hour+time.Minute {
		t.Errorf("Max = %v, want clamped to ~1h", snap.Latency.Max)
	}
}

func TestEnginePhase(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	if engine.Phase() != PhaseInit {
		t.Errorf("initial phase = %v, want %v", engine.Phase(), PhaseInit)
	}

	phases := []Phase{PhaseSpawning, PhaseRunning, PhaseStopping, PhaseStopped}
	for _, p := range phases {
		engine.SetPhase(p)
		if engine.Phase() != p {
			t.Errorf("after SetPhase(%v), Phase() = %v", p, engine.Phase())
		}
	}

	// History includes the initial phase.
	history := engine.PhaseHistory()
	if len(history) != len(phases)+1 {
		t.Fatalf("PhaseHistory length = %d, want %d", len(history), len(phases)+1)
	}
	if history[0].Phase != PhaseInit {
		t.Errorf("history[0] = %v, want %v", history[0].Phase, PhaseInit)
	}

	// Repeating the current phase must not grow the history.
	engine.SetPhase(PhaseStopped)
	if got := len(engine.PhaseHistory()); got != len(phases)+1 {
		t.Errorf("after duplicate SetPhase, history length = %d, want %d", got, len(phases)+1)
	}
}

func TestEngineActiveUsers(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	if engine.ActiveUsers() != 0 {
		t.Errorf("initial ActiveUsers = %d, want 0", engine.ActiveUsers())
	}
	engine.SetActiveUsers(10)
	if engine.ActiveUsers() != 10 {
		t.Errorf("ActiveUsers = %d, want 10", engine.ActiveUsers())
	}
	engine.SetActiveUsers(4)
	if engine.ActiveUsers() != 4 {
		t.Errorf("ActiveUsers = %d, want 4", engine.ActiveUsers())
	}
}

func TestEngineTaskStats(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	engine.RecordSample("login", 10*time.Millisecond, false, 100, "")
	engine.RecordSample("login", 15*time.Millisecond, true, 100, "status 503")
	engine.RecordSample("browse", 50*time.Millisecond, false, 500, "")

	snap := engine.Snapshot()
	if len(snap.Tasks) != 2 {
		t.Fatalf("Tasks length = %d, want 2", len(snap.Tasks))
	}

	// Sorted by task name.
	if snap.Tasks[0].Name != "browse" || snap.Tasks[1].Name != "login" {
		t.Errorf("task order = [%s %s], want [browse login]", snap.Tasks[0].Name, snap.Tasks[1].Name)
	}

	login := snap.Tasks[1]
	if login.Requests != 2 {
		t.Errorf("login Requests = %d, want 2", login.Requests)
	}
	if login.Failures != 1 {
		t.Errorf("login Failures = %d, want 1", login.Failures)
	}
	if login.FailRatio != 0.5 {
		t.Errorf("login FailRatio = %v, want 0.5", login.FailRatio)
	}
	if login.Latency.Max < 14*time.Millisecond {
		t.Errorf("login Latency.Max = %v, want ~15ms", login.Latency.Max)
	}
}

func TestEngineFailures(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	for i := 0; i < 3; i++ {
		engine.RecordSample("login", time.Millisecond, true, 0, "status 503")
	}
	engine.RecordSample("login", time.Millisecond, true, 0, "connection refused")
	engine.RecordSample("browse", time.Millisecond, true, 0, "")

	failures := engine.Snapshot().Failures
	if len(failures) != 3 {
		t.Fatalf("Failures length = %d, want 3", len(failures))
	}

	// Most frequent first.
	if failures[0].Task != "login" || failures[0].Message != "status 503" || failures[0].Count != 3 {
		t.Errorf("failures[0] = %+v, want login/status 503/3", failures[0])
	}

	var foundUnknown bool
	for _, f := range failures {
		if f.Task == "browse" && f.Message == "unknown error" {
			foundUnknown = true
		}
	}
	if !foundUnknown {
		t.Errorf("empty failure message was not recorded as %q: %+v", "unknown error", failures)
	}
}

func TestEngineFailureMessageTruncated(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	defer engine.Stop()

	long := strings.Repeat("x", 500)
	engine.RecordSample("t", time.Millisecond, true, 0, long)
	engine.RecordSample("t", time.Millisecond, true, 0, long)

	failures := engine.Snapshot().Failures
	if len(failures) != 1 {
		t.Fatalf("Failures length = %d, want 1 (identical long messages must collapse)", len(failures))
	}
	if len(failures[0].Message) != maxFailureMessageLen {
		t.Errorf("message length = %d, want %d", len(failures[0].Message), maxFailureMessageLen)
	}
	if failures[0].Count != 2 {
		t.Errorf("Count = %d, want 2", failures[0].Count)
	}
}

func TestEngineTimeSeries(t *testing.T) {
	engine := NewEngine(Config{BucketInterval: 50 * time.Millisecond, MaxBuckets: 10})

	engine.SetPhase(PhaseRunning)
	engine.SetActiveUsers(2)
	for i := 0; i < 3; i++ {
		engine.RecordSample("t", 5*time.Millisecond, false, 10, "")
	}

	time.Sleep(120 * time.Millisecond)
	engine.Stop()

	buckets := engine.TimeSeries()
	if len(buckets) < 2 {
		t.Fatalf("TimeSeries length = %d, want >= 2", len(buckets))
	}

	for i := 1; i < len(buckets); i++ {
		if buckets[i].Timestamp.Before(buckets[i-1].Timestamp) {
			t.Errorf("bucket %d timestamp precedes bucket %d", i, i-1)
		}
	}

	var intervalSum int64
	for _, b := range buckets {
		intervalSum += b.IntervalRequests
	}
	if intervalSum != 3 {
		t.Errorf("sum of IntervalRequests = %d, want 3", intervalSum)
	}

	last := buckets[len(buckets)-1]
	if last.TotalRequests != 3 {
		t.Errorf("final bucket TotalRequests = %d, want 3", last.TotalRequests)
	}
}

func TestEngineElapsedFrozenAfterStop(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	engine.Stop()

	first := engine.Elapsed()
	time.Sleep(20 * time.Millisecond)
	if second := engine.Elapsed(); second != first {
		t.Errorf("Elapsed changed after Stop: %v then %v", first, second)
	}
}

func TestEngineStopIdempotent(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	engine.Stop()
	engine.Stop()
}
