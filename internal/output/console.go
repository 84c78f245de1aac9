// Package output renders live run progress and the final summary to a
// terminal or log stream. On a TTY the live status line is redrawn in
// place; on pipes and in containers every update is a plain line so
// collected logs stay readable.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/runner"
)

const nameColWidth = 36

// Config controls what the console prints and where.
type Config struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer

	// PrintStats emits the per-task stats table on every progress tick.
	PrintStats bool

	// OnlySummary suppresses live output entirely; only the header and
	// the final summary are printed.
	OnlySummary bool

	// NoColor disables colors even on a terminal. ForceColor enables
	// them even off one; NoColor wins when both are set.
	NoColor    bool
	ForceColor bool
}

// Console renders run progress and results. Its methods are safe to
// call from the runner's progress goroutine.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	scheme *ColorScheme
	isTTY  bool

	printStats  bool
	onlySummary bool

	// liveLine tracks whether the last write was an in-place status
	// line that still needs a newline before block output.
	liveLine bool
}

// New builds a console for the given writer. Color is used when the
// writer is a terminal, unless NO_COLOR or the config says otherwise.
func New(cfg Config) *Console {
	w := cfg.Writer
	if w == nil {
		w = os.Stdout
	}

	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = checkIsTerminal(f)
	}

	useColor := isTTY
	if cfg.ForceColor || os.Getenv("FORCE_COLOR") != "" {
		useColor = true
	}
	if cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		useColor = false
	}

	scheme := NoColorScheme()
	if useColor {
		scheme = DefaultColorScheme()
	}

	return &Console{
		w:           w,
		scheme:      scheme,
		isTTY:       isTTY,
		printStats:  cfg.PrintStats,
		onlySummary: cfg.OnlySummary,
	}
}

// RunInfo describes the run for the header block.
type RunInfo struct {
	Scenario   string
	Host       string
	Users      int
	SpawnRate  float64
	RunTime    time.Duration
	Thresholds []runner.Threshold
}

// PrintHeader announces the run before any load is generated.
func (c *Console) PrintHeader(info RunInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.w, "%s %s\n", c.scheme.Title.Sprint("swarm run:"), info.Scenario)
	fmt.Fprintf(c.w, "  target      %s\n", info.Host)
	fmt.Fprintf(c.w, "  users       %d (spawn rate %.1f/s)\n", info.Users, info.SpawnRate)
	fmt.Fprintf(c.w, "  run time    %s\n", info.RunTime)
	if len(info.Thresholds) > 0 {
		exprs := make([]string, len(info.Thresholds))
		for i, t := range info.Thresholds {
			exprs[i] = t.String()
		}
		fmt.Fprintf(c.w, "  thresholds  %s\n", strings.Join(exprs, ", "))
	}
	fmt.Fprintln(c.w)
}

// PrintProgress renders one live update. It is meant to be wired to the
// runner's OnProgress callback.
func (c *Console) PrintProgress(snap *metrics.Snapshot) {
	if c.onlySummary {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line := fmt.Sprintf("[%s] %-8s users=%d reqs=%s fails=%s (%.1f%%) rps=%.1f p95=%s",
		formatDuration(snap.Elapsed),
		snap.Phase,
		snap.ActiveUsers,
		formatCount(snap.TotalRequests),
		formatCount(snap.TotalFailures),
		snap.FailRatio*100,
		snap.RPS,
		snap.Latency.P95.Round(time.Millisecond))

	if c.isTTY && !c.printStats {
		// Redraw the status in place so a long run does not scroll.
		fmt.Fprintf(c.w, "\r\033[K%s", line)
		c.liveLine = true
		return
	}

	fmt.Fprintln(c.w, line)
	if c.printStats {
		c.writeStatsTable(snap)
		fmt.Fprintln(c.w)
	}
}

// endLive terminates a pending in-place status line. Callers must hold
// the mutex.
func (c *Console) endLive() {
	if c.liveLine {
		fmt.Fprintln(c.w)
		c.liveLine = false
	}
}

// PrintSummary renders the final report for a completed run.
func (c *Console) PrintSummary(res *runner.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLive()

	snap := res.Snapshot

	fmt.Fprintln(c.w, strings.Repeat("-", 78))
	title := fmt.Sprintf("summary: %s", res.Scenario)
	if res.Interrupted {
		title += c.scheme.Warn.Sprint(" (interrupted)")
	}
	fmt.Fprintln(c.w, c.scheme.Title.Sprint(title))
	fmt.Fprintf(c.w, "  duration %s   requests %s   failures %s (%.2f%%)   rps %.1f   data %s\n\n",
		formatDuration(snap.Elapsed),
		formatCount(snap.TotalRequests),
		formatCount(snap.TotalFailures),
		snap.FailRatio*100,
		snap.RPS,
		formatBytes(snap.TotalBytes))

	c.writeStatsTable(snap)
	fmt.Fprintln(c.w)

	l := snap.Latency
	fmt.Fprintln(c.w, "  latency distribution:")
	fmt.Fprintf(c.w, "    min %s  avg %s  med %s  p90 %s  p95 %s  p99 %s  max %s\n\n",
		l.Min.Round(time.Millisecond),
		l.Mean.Round(time.Millisecond),
		l.P50.Round(time.Millisecond),
		l.P90.Round(time.Millisecond),
		l.P95.Round(time.Millisecond),
		l.P99.Round(time.Millisecond),
		l.Max.Round(time.Millisecond))

	if len(snap.Failures) > 0 {
		c.writeFailures(snap.Failures)
	}

	c.writeThresholds(res.Thresholds)

	if res.Passed {
		fmt.Fprintf(c.w, "%s\n", c.scheme.Good.Sprint("PASSED"))
	} else {
		failed := 0
		for _, tr := range res.Thresholds {
			if !tr.Passed {
				failed++
			}
		}
		fmt.Fprintf(c.w, "%s (%d of %d thresholds failed)\n",
			c.scheme.Bad.Sprint("FAILED"), failed, len(res.Thresholds))
	}
}

func (c *Console) writeStatsTable(snap *metrics.Snapshot) {
	fmt.Fprintf(c.w, "  %s\n", c.scheme.Dim.Sprintf("%-*s %8s %7s %8s %8s %8s %8s %8s %7s",
		nameColWidth, "TASK", "REQS", "FAILS", "AVG", "MIN", "MAX", "MED", "P95", "RPS"))

	for _, ts := range snap.Tasks {
		c.writeStatsRow(ts.Name, ts.Requests, ts.Failures, ts.Latency, ts.RPS)
	}
	if len(snap.Tasks) != 1 {
		fmt.Fprintf(c.w, "  %s\n", c.scheme.Dim.Sprint(strings.Repeat("-", nameColWidth+70)))
		c.writeStatsRow("TOTAL", snap.TotalRequests, snap.TotalFailures, snap.Latency, snap.RPS)
	}
}

func (c *Console) writeStatsRow(name string, reqs, fails int64, l metrics.LatencyStats, rps float64) {
	// Pad before colorizing so the escape codes do not skew the column.
	failsCol := fmt.Sprintf("%7s", formatCount(fails))
	if fails > 0 {
		failsCol = c.scheme.Bad.Sprint(failsCol)
	}
	fmt.Fprintf(c.w, "  %-*s %8s %s %8s %8s %8s %8s %8s %7.1f\n",
		nameColWidth, truncateName(name, nameColWidth),
		formatCount(reqs), failsCol,
		l.Mean.Round(time.Millisecond), l.Min.Round(time.Millisecond),
		l.Max.Round(time.Millisecond), l.P50.Round(time.Millisecond),
		l.P95.Round(time.Millisecond), rps)
}

func (c *Console) writeFailures(failures []metrics.FailureCount) {
	fmt.Fprintln(c.w, "  failures:")
	fmt.Fprintf(c.w, "    %s\n", c.scheme.Dim.Sprintf("%7s  %-24s %s", "COUNT", "TASK", "ERROR"))
	for _, f := range failures {
		fmt.Fprintf(c.w, "    %7s  %-24s %s\n",
			formatCount(f.Count), truncateName(f.Task, 24), f.Message)
	}
	fmt.Fprintln(c.w)
}

func (c *Console) writeThresholds(results []runner.ThresholdResult) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(c.w, "  thresholds:")
	for _, tr := range results {
		if tr.Passed {
			fmt.Fprintf(c.w, "    %s %-24s (actual %s)\n",
				c.scheme.passIcon(), tr.Threshold.String(), tr.ActualString())
			continue
		}
		fmt.Fprintf(c.w, "    %s %-24s (%s)\n",
			c.scheme.failIcon(), tr.Threshold.String(), c.scheme.Bad.Sprint(tr.Message))
	}
	fmt.Fprintln(c.w)
}
