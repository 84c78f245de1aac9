package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/scenario"
)

// Threshold is one pass criterion evaluated against the final snapshot,
// parsed from an expression like "p95 < 800" or "fail_ratio < 0.01".
// Latency metrics compare milliseconds; bare numbers are taken as ms
// and duration suffixes are honored.
type Threshold struct {
	Metric     string  `json:"metric"`
	Op         string  `json:"op"`
	Value      float64 `json:"value"`
	Expression string  `json:"expression"`
}

func (t Threshold) String() string {
	return t.Expression
}

// latencyMetrics maps the duration-valued metric names onto the
// snapshot field that carries them.
var latencyMetrics = map[string]func(metrics.LatencyStats) time.Duration{
	"avg": func(l metrics.LatencyStats) time.Duration { return l.Mean },
	"med": func(l metrics.LatencyStats) time.Duration { return l.P50 },
	"min": func(l metrics.LatencyStats) time.Duration { return l.Min },
	"max": func(l metrics.LatencyStats) time.Duration { return l.Max },
	"p50": func(l metrics.LatencyStats) time.Duration { return l.P50 },
	"p90": func(l metrics.LatencyStats) time.Duration { return l.P90 },
	"p95": func(l metrics.LatencyStats) time.Duration { return l.P95 },
	"p99": func(l metrics.LatencyStats) time.Duration { return l.P99 },
}

var thresholdPattern = regexp.MustCompile(`^(\w+)\s*([<>=!]+)\s*(.+)$`)

// DefaultThresholds returns the criteria applied when the scenario does
// not declare its own: under 1% failures, mean under 200ms and p95
// under 800ms.
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Metric: "fail_ratio", Op: "<", Value: 0.01, Expression: "fail_ratio < 0.01"},
		{Metric: "avg", Op: "<", Value: 200, Expression: "avg < 200"},
		{Metric: "p95", Op: "<", Value: 800, Expression: "p95 < 800"},
	}
}

// ParseThreshold parses a single threshold expression.
func ParseThreshold(expr string) (Threshold, error) {
	trimmed := strings.TrimSpace(expr)
	matches := thresholdPattern.FindStringSubmatch(trimmed)
	if len(matches) != 4 {
		return Threshold{}, fmt.Errorf("invalid threshold expression %q, want \"metric op value\"", expr)
	}

	t := Threshold{
		Metric:     matches[1],
		Op:         matches[2],
		Expression: trimmed,
	}

	switch t.Op {
	case "<", "<=", ">", ">=", "==", "!=":
	case "=":
		t.Op = "=="
	default:
		return Threshold{}, fmt.Errorf("threshold %q: unsupported operator %q", expr, matches[2])
	}

	valueStr := strings.TrimSpace(matches[3])
	if _, ok := latencyMetrics[t.Metric]; ok {
		ms, err := parseLatencyValue(valueStr)
		if err != nil {
			return Threshold{}, fmt.Errorf("threshold %q: %w", expr, err)
		}
		t.Value = ms
		return t, nil
	}

	switch t.Metric {
	case "fail_ratio", "rps":
		v, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return Threshold{}, fmt.Errorf("threshold %q: invalid value %q", expr, valueStr)
		}
		t.Value = v
		return t, nil
	default:
		return Threshold{}, fmt.Errorf("threshold %q: unknown metric %q", expr, t.Metric)
	}
}

// ParseThresholds parses a list of expressions, failing on the first
// bad one.
func ParseThresholds(exprs []string) ([]Threshold, error) {
	out := make([]Threshold, 0, len(exprs))
	for _, expr := range exprs {
		t, err := ParseThreshold(expr)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ThresholdsFor returns the scenario's parsed pass criteria, falling
// back to the defaults when it declares none.
func ThresholdsFor(scn *scenario.Scenario) ([]Threshold, error) {
	if len(scn.Thresholds) == 0 {
		return DefaultThresholds(), nil
	}
	return ParseThresholds(scn.Thresholds)
}

func parseLatencyValue(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid latency value %q, want milliseconds or a duration", s)
	}
	return float64(d) / float64(time.Millisecond), nil
}

// ThresholdResult is the outcome of evaluating one threshold.
type ThresholdResult struct {
	Threshold Threshold `json:"threshold"`
	Actual    float64   `json:"actual"`
	Passed    bool      `json:"passed"`
	Message   string    `json:"message,omitempty"`
}

// ActualString renders the observed value with its natural unit.
func (r ThresholdResult) ActualString() string {
	return formatMetric(r.Threshold.Metric, r.Actual)
}

// EvaluateThresholds checks every threshold against the snapshot and
// reports whether all of them held.
func EvaluateThresholds(thresholds []Threshold, snap *metrics.Snapshot) ([]ThresholdResult, bool) {
	results := make([]ThresholdResult, 0, len(thresholds))
	passed := true

	for _, t := range thresholds {
		r := ThresholdResult{Threshold: t}

		if get, ok := latencyMetrics[t.Metric]; ok {
			r.Actual = float64(get(snap.Latency)) / float64(time.Millisecond)
		} else if t.Metric == "fail_ratio" {
			r.Actual = snap.FailRatio
		} else {
			r.Actual = snap.RPS
		}

		r.Passed = compare(r.Actual, t.Op, t.Value)
		if !r.Passed {
			passed = false
			r.Message = fmt.Sprintf("%s is %s, want %s %s",
				t.Metric, formatMetric(t.Metric, r.Actual), t.Op, formatMetric(t.Metric, t.Value))
		}
		results = append(results, r)
	}
	return results, passed
}

func compare(actual float64, op string, want float64) bool {
	switch op {
	case "<":
		return actual < want
	case "<=":
		return actual <= want
	case ">":
		return actual > want
	case ">=":
		return actual >= want
	case "==":
		return actual == want
	case "!=":
		return actual != want
	default:
		return false
	}
}

// formatMetric renders a metric value with its natural unit.
func formatMetric(metric string, v float64) string {
	if _, ok := latencyMetrics[metric]; ok {
		return fmt.Sprintf("%.0fms", v)
	}
	if metric == "fail_ratio" {
		return fmt.Sprintf("%.4f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
