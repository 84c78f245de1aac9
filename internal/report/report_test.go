package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/runner"
)

func sampleResult(t *testing.T) *runner.Result {
	t.Helper()

	lat := metrics.LatencyStats{
		Min:    8 * time.Millisecond,
		Max:    450 * time.Millisecond,
		Mean:   42 * time.Millisecond,
		StdDev: 20 * time.Millisecond,
		P50:    35 * time.Millisecond,
		P90:    90 * time.Millisecond,
		P95:    120 * time.Millisecond,
		P99:    300 * time.Millisecond,
	}
	snap := &metrics.Snapshot{
		StartTime:     time.Now().Add(-30 * time.Second),
		Elapsed:       30 * time.Second,
		TotalRequests: 1000,
		TotalFailures: 5,
		FailRatio:     0.005,
		RPS:           33.3,
		TotalBytes:    1048576,
		Phase:         metrics.PhaseStopped,
		Latency:       lat,
		Tasks: []metrics.TaskStats{
			{Name: "get-status", Requests: 400, RPS: 13.3, Latency: lat},
			{Name: "post-endpoint", Requests: 600, Failures: 5, FailRatio: 0.0083, RPS: 20.0, Latency: lat},
		},
		Failures: []metrics.FailureCount{
			{Task: "post-endpoint", Message: "status 500 exceeds 399", Count: 5},
		},
	}

	results, passed := runner.EvaluateThresholds(runner.DefaultThresholds(), snap)
	return &runner.Result{
		Scenario:   "api-smoke",
		Snapshot:   snap,
		TimeSeries: sampleTimeSeries(10),
		Thresholds: results,
		Passed:     passed,
	}
}

func sampleTimeSeries(seconds int) []*metrics.TimeBucket {
	base := time.Now().Add(-time.Duration(seconds) * time.Second)
	buckets := make([]*metrics.TimeBucket, seconds)
	for i := range buckets {
		phase := metrics.PhaseRunning
		if i < 2 {
			phase = metrics.PhaseSpawning
		} else if i >= seconds-2 {
			phase = metrics.PhaseStopping
		}
		buckets[i] = &metrics.TimeBucket{
			Timestamp:        base.Add(time.Duration(i) * time.Second),
			TotalRequests:    int64((i + 1) * 33),
			TotalFailures:    int64(i / 2),
			IntervalRequests: 33,
			IntervalRPS:      33.0,
			LatencyP50:       35 * time.Millisecond,
			LatencyP95:       120 * time.Millisecond,
			LatencyP99:       300 * time.Millisecond,
			ActiveUsers:      10,
			Phase:            phase,
		}
	}
	return buckets
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleResult(t))
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>api-smoke - Load Test Report</title>",
		"PASSED",
		"Total Requests",
		"rpsChart",
		"latencyChart",
		"usersChart",
		"failChart",
		"timeSeriesData",
		"post-endpoint",
		"status 500 exceeds 399",
		"fail_ratio &lt; 0.01",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestRenderHTMLEmptyResult(t *testing.T) {
	if _, err := RenderHTML(nil); err == nil {
		t.Error("nil result should be rejected")
	}
	if _, err := RenderHTML(&runner.Result{}); err == nil {
		t.Error("result without a snapshot should be rejected")
	}
}

func TestRenderHTMLNoTimeSeries(t *testing.T) {
	res := sampleResult(t)
	res.TimeSeries = nil

	html, err := RenderHTML(res)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if strings.Contains(html, `<canvas id="rpsChart">`) {
		t.Error("chart section should be omitted without time series data")
	}
	if !strings.Contains(html, "timeSeriesData = []") {
		t.Error("empty time series should serialize as an empty array")
	}
}

func TestWriteHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	if err := WriteHTML(sampleResult(t), path); err != nil {
		t.Fatalf("WriteHTML failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(content), "<!DOCTYPE html>") {
		t.Error("written file is not an HTML document")
	}
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "run")
	res := sampleResult(t)

	if err := WriteCSV(res, prefix); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	stats := readCSV(t, prefix+"_stats.csv")
	// Header, one row per task, one aggregate row.
	if len(stats) != 4 {
		t.Fatalf("stats rows = %d, want 4", len(stats))
	}
	if stats[0][0] != "task" {
		t.Errorf("stats header starts with %q, want task", stats[0][0])
	}
	last := stats[len(stats)-1]
	if last[0] != "total" || last[1] != "1000" || last[2] != "5" {
		t.Errorf("aggregate row = %v", last)
	}

	failures := readCSV(t, prefix+"_failures.csv")
	if len(failures) != 2 {
		t.Fatalf("failure rows = %d, want 2", len(failures))
	}
	if failures[1][0] != "post-endpoint" || failures[1][2] != "5" {
		t.Errorf("failure row = %v", failures[1])
	}

	history := readCSV(t, prefix+"_stats_history.csv")
	if len(history) != len(res.TimeSeries)+1 {
		t.Fatalf("history rows = %d, want %d", len(history), len(res.TimeSeries)+1)
	}
	if history[1][1] != "spawning" {
		t.Errorf("first bucket phase = %q, want spawning", history[1][1])
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return rows
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")

	if err := WriteJSON(sampleResult(t), path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading result: %v", err)
	}

	var decoded runner.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if decoded.Scenario != "api-smoke" {
		t.Errorf("scenario = %q, want api-smoke", decoded.Scenario)
	}
	if decoded.Snapshot.TotalRequests != 1000 {
		t.Errorf("total requests = %d, want 1000", decoded.Snapshot.TotalRequests)
	}
	if len(decoded.Thresholds) != 3 {
		t.Errorf("thresholds = %d, want 3", len(decoded.Thresholds))
	}
	if decoded.Thresholds[0].Threshold.Expression == "" {
		t.Error("threshold expression was not serialized")
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0"},
		{500 * time.Microsecond, "500µs"},
		{5 * time.Millisecond, "5.00ms"},
		{50 * time.Millisecond, "50.0ms"},
		{500 * time.Millisecond, "500ms"},
		{1500 * time.Millisecond, "1.50s"},
		{15 * time.Second, "15.0s"},
	}
	for _, tt := range tests {
		if got := formatLatency(tt.in); got != tt.want {
			t.Errorf("formatLatency(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDurationReport(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{150 * time.Millisecond, "150ms"},
		{1500 * time.Millisecond, "1.5s"},
		{65 * time.Second, "1m 5s"},
		{2 * time.Hour, "2h"},
		{90 * time.Minute, "1h 30m"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.in); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
