package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"time"

	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/runner"
)

// reportData is the template's view of a run result.
type reportData struct {
	*runner.Result
	GeneratedAt    time.Time
	TimeSeriesJSON template.JS
}

// timeSeriesPoint is one bucket flattened for the charts. Latencies are
// nanoseconds; the page converts to milliseconds.
type timeSeriesPoint struct {
	Timestamp         string  `json:"timestamp"`
	TotalRequests     int64   `json:"totalRequests"`
	TotalFailures     int64   `json:"totalFailures"`
	IntervalRPS       float64 `json:"intervalRPS"`
	IntervalFailRatio float64 `json:"intervalFailRatio"`
	LatencyP50        int64   `json:"latencyP50"`
	LatencyP95        int64   `json:"latencyP95"`
	LatencyP99        int64   `json:"latencyP99"`
	ActiveUsers       int     `json:"activeUsers"`
	Phase             string  `json:"phase"`
}

// WriteHTML renders the report and writes it to a file.
func WriteHTML(res *runner.Result, path string) error {
	html, err := RenderHTML(res)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderHTML renders a self-contained HTML report for a run result.
func RenderHTML(res *runner.Result) (string, error) {
	if res == nil || res.Snapshot == nil {
		return "", fmt.Errorf("report: result is empty")
	}

	tmpl, err := template.New("report").Funcs(templateFuncs()).Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("parse report template: %w", err)
	}

	seriesJSON, err := timeSeriesJSON(res.TimeSeries)
	if err != nil {
		return "", fmt.Errorf("encode time series: %w", err)
	}

	var buf bytes.Buffer
	data := reportData{
		Result:         res,
		GeneratedAt:    time.Now(),
		TimeSeriesJSON: template.JS(seriesJSON),
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func timeSeriesJSON(series []*metrics.TimeBucket) (string, error) {
	if len(series) == 0 {
		return "[]", nil
	}
	points := make([]timeSeriesPoint, len(series))
	for i, b := range series {
		points[i] = timeSeriesPoint{
			Timestamp:         b.Timestamp.Format(time.RFC3339),
			TotalRequests:     b.TotalRequests,
			TotalFailures:     b.TotalFailures,
			IntervalRPS:       b.IntervalRPS,
			IntervalFailRatio: b.IntervalFailRatio,
			LatencyP50:        int64(b.LatencyP50),
			LatencyP95:        int64(b.LatencyP95),
			LatencyP99:        int64(b.LatencyP99),
			ActiveUsers:       b.ActiveUsers,
			Phase:             string(b.Phase),
		}
	}
	out, err := json.Marshal(points)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDuration": formatDuration,
		"formatNumber":   formatNumber,
		"formatLatency":  formatLatency,
		"formatBytes":    formatBytes,
		"percent":        percent,
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		secs := int(d.Seconds()) % 60
		if secs == 0 {
			return fmt.Sprintf("%dm", mins)
		}
		return fmt.Sprintf("%dm %ds", mins, secs)
	}
	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	str := fmt.Sprintf("%d", n)
	result := ""
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}

func formatLatency(d time.Duration) string {
	if d == 0 {
		return "0"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		ms := float64(d.Microseconds()) / 1000.0
		if ms < 10 {
			return fmt.Sprintf("%.2fms", ms)
		}
		if ms < 100 {
			return fmt.Sprintf("%.1fms", ms)
		}
		return fmt.Sprintf("%dms", int(ms))
	}
	s := d.Seconds()
	if s < 10 {
		return fmt.Sprintf("%.2fs", s)
	}
	return fmt.Sprintf("%.1fs", s)
}

func formatBytes(n int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
		tb = gb * 1024
	)
	switch {
	case n >= tb:
		return fmt.Sprintf("%.2f TB", float64(n)/tb)
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func percent(ratio float64) string {
	return fmt.Sprintf("%.2f", ratio*100)
}
