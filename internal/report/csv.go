// Package report exports run results as files: CSV artifacts for
// stats, failures and per-second history, a JSON dump of the full
// result and a self-contained HTML report with charts over the time
// series.
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/runner"
)

// WriteCSV writes the three CSV artifacts sharing the given path
// prefix: <prefix>_stats.csv, <prefix>_failures.csv and
// <prefix>_stats_history.csv.
func WriteCSV(res *runner.Result, prefix string) error {
	if res == nil || res.Snapshot == nil {
		return fmt.Errorf("report: result is empty")
	}
	if err := writeStatsCSV(res.Snapshot, prefix+"_stats.csv"); err != nil {
		return err
	}
	if err := writeFailuresCSV(res.Snapshot, prefix+"_failures.csv"); err != nil {
		return err
	}
	return writeHistoryCSV(res.TimeSeries, prefix+"_stats_history.csv")
}

func writeStatsCSV(snap *metrics.Snapshot, path string) error {
	rows := [][]string{{
		"task", "requests", "failures", "fail_ratio", "rps",
		"avg_ms", "min_ms", "max_ms", "med_ms", "p90_ms", "p95_ms", "p99_ms",
	}}
	for _, ts := range snap.Tasks {
		rows = append(rows, statsRow(ts.Name, ts.Requests, ts.Failures, ts.FailRatio, ts.RPS, ts.Latency))
	}
	rows = append(rows, statsRow("total", snap.TotalRequests, snap.TotalFailures, snap.FailRatio, snap.RPS, snap.Latency))
	return writeCSVFile(path, rows)
}

func statsRow(name string, reqs, fails int64, ratio, rps float64, l metrics.LatencyStats) []string {
	return []string{
		name,
		strconv.FormatInt(reqs, 10),
		strconv.FormatInt(fails, 10),
		strconv.FormatFloat(ratio, 'f', 4, 64),
		strconv.FormatFloat(rps, 'f', 2, 64),
		strconv.FormatInt(l.Mean.Milliseconds(), 10),
		strconv.FormatInt(l.Min.Milliseconds(), 10),
		strconv.FormatInt(l.Max.Milliseconds(), 10),
		strconv.FormatInt(l.P50.Milliseconds(), 10),
		strconv.FormatInt(l.P90.Milliseconds(), 10),
		strconv.FormatInt(l.P95.Milliseconds(), 10),
		strconv.FormatInt(l.P99.Milliseconds(), 10),
	}
}

func writeFailuresCSV(snap *metrics.Snapshot, path string) error {
	rows := [][]string{{"task", "error", "count"}}
	for _, f := range snap.Failures {
		rows = append(rows, []string{f.Task, f.Message, strconv.FormatInt(f.Count, 10)})
	}
	return writeCSVFile(path, rows)
}

func writeHistoryCSV(series []*metrics.TimeBucket, path string) error {
	rows := [][]string{{
		"timestamp", "phase", "active_users", "total_requests", "total_failures",
		"interval_requests", "interval_rps", "interval_fail_ratio",
		"p50_ms", "p95_ms", "p99_ms",
	}}
	for _, b := range series {
		rows = append(rows, []string{
			b.Timestamp.Format(time.RFC3339),
			string(b.Phase),
			strconv.Itoa(b.ActiveUsers),
			strconv.FormatInt(b.TotalRequests, 10),
			strconv.FormatInt(b.TotalFailures, 10),
			strconv.FormatInt(b.IntervalRequests, 10),
			strconv.FormatFloat(b.IntervalRPS, 'f', 2, 64),
			strconv.FormatFloat(b.IntervalFailRatio, 'f', 4, 64),
			strconv.FormatInt(b.LatencyP50.Milliseconds(), 10),
			strconv.FormatInt(b.LatencyP95.Milliseconds(), 10),
			strconv.FormatInt(b.LatencyP99.Milliseconds(), 10),
		})
	}
	return writeCSVFile(path, rows)
}

func writeCSVFile(path string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
