package runner

import (
	"strings"
	"testing"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
)

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		expr       string
		wantMetric string
		wantOp     string
		wantValue  float64
	}{
		{"fail_ratio < 0.01", "fail_ratio", "<", 0.01},
		{"avg < 200", "avg", "<", 200},
		{"p95<800", "p95", "<", 800},
		{"p99 <= 1.5s", "p99", "<=", 1500},
		{"med < 250ms", "med", "<", 250},
		{"rps >= 50", "rps", ">=", 50},
		{"max != 0", "max", "!=", 0},
		{"min = 1", "min", "==", 1},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			th, err := ParseThreshold(tt.expr)
			if err != nil {
				t.Fatalf("ParseThreshold(%q) error = %v", tt.expr, err)
			}
			if th.Metric != tt.wantMetric {
				t.Errorf("Metric = %q, want %q", th.Metric, tt.wantMetric)
			}
			if th.Op != tt.wantOp {
				t.Errorf("Op = %q, want %q", th.Op, tt.wantOp)
			}
			if th.Value != tt.wantValue {
				t.Errorf("Value = %v, want %v", th.Value, tt.wantValue)
			}
		})
	}
}

func TestParseThresholdRejects(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"empty", ""},
		{"no operator", "p95 800"},
		{"unknown metric", "p42 < 800"},
		{"bad operator", "avg <> 200"},
		{"bad latency value", "avg < fast"},
		{"bad ratio value", "fail_ratio < one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseThreshold(tt.expr); err == nil {
				t.Errorf("ParseThreshold(%q) succeeded, want error", tt.expr)
			}
		})
	}
}

func TestParseThresholdsStopsAtFirstError(t *testing.T) {
	_, err := ParseThresholds([]string{"avg < 200", "bogus expression"})
	if err == nil {
		t.Fatal("ParseThresholds() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "bogus expression") {
		t.Errorf("error %q does not name the bad expression", err)
	}
}

func TestDefaultThresholds(t *testing.T) {
	defaults := DefaultThresholds()
	if len(defaults) != 3 {
		t.Fatalf("DefaultThresholds() length = %d, want 3", len(defaults))
	}

	want := []string{"fail_ratio < 0.01", "avg < 200", "p95 < 800"}
	for i, th := range defaults {
		if th.String() != want[i] {
			t.Errorf("defaults[%d] = %q, want %q", i, th.String(), want[i])
		}
	}
}

func TestEvaluateThresholds(t *testing.T) {
	snap := &metrics.Snapshot{
		TotalRequests: 1000,
		TotalFailures: 5,
		FailRatio:     0.005,
		RPS:           120,
		Latency: metrics.LatencyStats{
			Min:  2 * time.Millisecond,
			Max:  900 * time.Millisecond,
			Mean: 150 * time.Millisecond,
			P50:  120 * time.Millisecond,
			P90:  300 * time.Millisecond,
			P95:  400 * time.Millisecond,
			P99:  850 * time.Millisecond,
		},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"fail_ratio < 0.01", true},
		{"fail_ratio < 0.001", false},
		{"avg < 200", true},
		{"avg < 100", false},
		{"med < 121", true},
		{"p95 < 800", true},
		{"p99 < 800", false},
		{"max <= 900", true},
		{"min > 1", true},
		{"rps > 100", true},
		{"rps > 200", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			th, err := ParseThreshold(tt.expr)
			if err != nil {
				t.Fatalf("ParseThreshold(%q) error = %v", tt.expr, err)
			}
			results, passed := EvaluateThresholds([]Threshold{th}, snap)
			if passed != tt.want {
				t.Errorf("passed = %v, want %v", passed, tt.want)
			}
			if len(results) != 1 {
				t.Fatalf("results length = %d, want 1", len(results))
			}
			if results[0].Passed != tt.want {
				t.Errorf("results[0].Passed = %v, want %v", results[0].Passed, tt.want)
			}
			if !tt.want && results[0].Message == "" {
				t.Error("failing threshold has no message")
			}
		})
	}
}

func TestEvaluateThresholdsAllMustPass(t *testing.T) {
	snap := &metrics.Snapshot{
		FailRatio: 0.5,
		Latency:   metrics.LatencyStats{Mean: 10 * time.Millisecond, P95: 20 * time.Millisecond},
	}

	results, passed := EvaluateThresholds(DefaultThresholds(), snap)
	if passed {
		t.Error("passed = true with a 50% failure ratio")
	}

	var failed int
	for _, r := range results {
		if !r.Passed {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed threshold count = %d, want 1 (only fail_ratio)", failed)
	}
}
