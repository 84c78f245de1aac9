package report

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Scenario}} - Load Test Report</title>
    <script src="https://cdn.jsdelivr.net/npm/chart.js"></script>
    <style>
        :root {
            --bg-primary: #ffffff;
            --bg-secondary: #f8fafc;
            --text-primary: #1e293b;
            --text-secondary: #64748b;
            --text-muted: #94a3b8;
            --border-color: #e2e8f0;
            --accent-primary: #3b82f6;
            --accent-success: #22c55e;
            --accent-warning: #f59e0b;
            --accent-error: #ef4444;
            --shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
        }

        * { margin: 0; padding: 0; box-sizing: border-box; }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif;
            background-color: var(--bg-secondary);
            color: var(--text-primary);
            line-height: 1.6;
        }

        .container { max-width: 1300px; margin: 0 auto; padding: 2rem; }

        .header {
            background: var(--bg-primary);
            border-radius: 12px;
            padding: 2rem;
            margin-bottom: 2rem;
            box-shadow: var(--shadow);
            display: flex;
            justify-content: space-between;
            align-items: center;
            flex-wrap: wrap;
            gap: 1rem;
        }

        .header h1 { font-size: 1.75rem; font-weight: 700; margin-bottom: 0.5rem; }

        .header .meta {
            display: flex;
            gap: 2rem;
            font-size: 0.875rem;
            color: var(--text-muted);
        }

        .status {
            padding: 0.75rem 1.5rem;
            border-radius: 8px;
            font-weight: 600;
        }

        .status.pass {
            background-color: rgba(34, 197, 94, 0.1);
            color: var(--accent-success);
            border: 1px solid rgba(34, 197, 94, 0.2);
        }

        .status.fail {
            background-color: rgba(239, 68, 68, 0.1);
            color: var(--accent-error);
            border: 1px solid rgba(239, 68, 68, 0.2);
        }

        .interrupted {
            color: var(--accent-warning);
            font-size: 0.875rem;
            margin-top: 0.25rem;
        }

        .metrics-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 1rem;
            margin-bottom: 2rem;
        }

        .metric-card {
            background: var(--bg-primary);
            border-radius: 12px;
            padding: 1.5rem;
            box-shadow: var(--shadow);
        }

        .metric-card .label {
            font-size: 0.75rem;
            text-transform: uppercase;
            letter-spacing: 0.05em;
            color: var(--text-muted);
            margin-bottom: 0.5rem;
        }

        .metric-card .value { font-size: 1.75rem; font-weight: 700; }
        .metric-card .unit { font-size: 0.875rem; color: var(--text-secondary); margin-left: 0.25rem; }

        .section {
            background: var(--bg-primary);
            border-radius: 12px;
            padding: 1.5rem;
            margin-bottom: 2rem;
            box-shadow: var(--shadow);
        }

        .section-title {
            font-size: 1.125rem;
            font-weight: 600;
            margin-bottom: 1.5rem;
            display: flex;
            align-items: center;
            gap: 0.5rem;
        }

        .section-title::before {
            content: '';
            width: 4px;
            height: 1.25rem;
            background: var(--accent-primary);
            border-radius: 2px;
        }

        .latency-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(110px, 1fr));
            gap: 1rem;
        }

        .latency-item {
            text-align: center;
            padding: 1rem;
            background: var(--bg-secondary);
            border-radius: 8px;
        }

        .latency-item .percentile {
            font-size: 0.75rem;
            text-transform: uppercase;
            color: var(--text-muted);
            margin-bottom: 0.25rem;
        }

        .latency-item .time { font-size: 1.25rem; font-weight: 600; }

        .chart-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(420px, 1fr));
            gap: 1.5rem;
        }

        .chart-container {
            background: var(--bg-secondary);
            border-radius: 8px;
            padding: 1.25rem;
        }

        .chart-title {
            font-size: 0.875rem;
            font-weight: 600;
            color: var(--text-secondary);
            margin-bottom: 1rem;
        }

        .chart-wrapper { position: relative; height: 240px; }

        .stats-table { width: 100%; border-collapse: collapse; }

        .stats-table th,
        .stats-table td {
            padding: 0.75rem 1rem;
            text-align: left;
            border-bottom: 1px solid var(--border-color);
        }

        .stats-table th {
            font-size: 0.75rem;
            text-transform: uppercase;
            letter-spacing: 0.05em;
            color: var(--text-muted);
        }

        .stats-table td { font-size: 0.875rem; }
        .stats-table tr:last-child td { border-bottom: none; }
        .stats-table td.fail { color: var(--accent-error); }

        .threshold-list { display: flex; flex-direction: column; gap: 0.75rem; }

        .threshold-item {
            display: flex;
            align-items: center;
            gap: 1rem;
            padding: 1rem;
            background: var(--bg-secondary);
            border-radius: 8px;
        }

        .threshold-icon.pass { color: var(--accent-success); }
        .threshold-icon.fail { color: var(--accent-error); }
        .threshold-expr { flex: 1; font-weight: 600; font-size: 0.875rem; }
        .threshold-value { font-size: 0.875rem; color: var(--text-secondary); text-align: right; }
        .threshold-message { color: var(--accent-error); font-size: 0.75rem; }

        .footer {
            text-align: center;
            padding: 2rem;
            color: var(--text-muted);
            font-size: 0.75rem;
        }
    </style>
</head>
<body>
    <div class="container">
        <header class="header">
            <div>
                <h1>{{.Scenario}}</h1>
                <div class="meta">
                    <span>{{.Snapshot.StartTime.Format "2006-01-02 15:04:05"}}</span>
                    <span>{{formatDuration .Snapshot.Elapsed}}</span>
                </div>
                {{if .Interrupted}}<div class="interrupted">run was interrupted before the configured duration</div>{{end}}
            </div>
            <div class="status {{if .Passed}}pass{{else}}fail{{end}}">
                {{if .Passed}}PASSED{{else}}FAILED{{end}}
            </div>
        </header>

        <div class="metrics-grid">
            <div class="metric-card">
                <div class="label">Total Requests</div>
                <div class="value">{{formatNumber .Snapshot.TotalRequests}}</div>
            </div>
            <div class="metric-card">
                <div class="label">Throughput</div>
                <div class="value">{{printf "%.1f" .Snapshot.RPS}}<span class="unit">req/s</span></div>
            </div>
            <div class="metric-card">
                <div class="label">Failure Rate</div>
                <div class="value">{{percent .Snapshot.FailRatio}}<span class="unit">%</span></div>
            </div>
            <div class="metric-card">
                <div class="label">P95 Latency</div>
                <div class="value">{{formatLatency .Snapshot.Latency.P95}}</div>
            </div>
            <div class="metric-card">
                <div class="label">Data Received</div>
                <div class="value">{{formatBytes .Snapshot.TotalBytes}}</div>
            </div>
        </div>

        <section class="section">
            <h2 class="section-title">Latency</h2>
            <div class="latency-grid">
                <div class="latency-item"><div class="percentile">Min</div><div class="time">{{formatLatency .Snapshot.Latency.Min}}</div></div>
                <div class="latency-item"><div class="percentile">Mean</div><div class="time">{{formatLatency .Snapshot.Latency.Mean}}</div></div>
                <div class="latency-item"><div class="percentile">P50</div><div class="time">{{formatLatency .Snapshot.Latency.P50}}</div></div>
                <div class="latency-item"><div class="percentile">P90</div><div class="time">{{formatLatency .Snapshot.Latency.P90}}</div></div>
                <div class="latency-item"><div class="percentile">P95</div><div class="time">{{formatLatency .Snapshot.Latency.P95}}</div></div>
                <div class="latency-item"><div class="percentile">P99</div><div class="time">{{formatLatency .Snapshot.Latency.P99}}</div></div>
                <div class="latency-item"><div class="percentile">Max</div><div class="time">{{formatLatency .Snapshot.Latency.Max}}</div></div>
                <div class="latency-item"><div class="percentile">Std Dev</div><div class="time">{{formatLatency .Snapshot.Latency.StdDev}}</div></div>
            </div>
        </section>

        {{if .TimeSeries}}
        <section class="section">
            <h2 class="section-title">Time Series</h2>
            <div class="chart-grid">
                <div class="chart-container">
                    <div class="chart-title">Requests Per Second</div>
                    <div class="chart-wrapper"><canvas id="rpsChart"></canvas></div>
                </div>
                <div class="chart-container">
                    <div class="chart-title">Latency Percentiles</div>
                    <div class="chart-wrapper"><canvas id="latencyChart"></canvas></div>
                </div>
                <div class="chart-container">
                    <div class="chart-title">Active Users</div>
                    <div class="chart-wrapper"><canvas id="usersChart"></canvas></div>
                </div>
                <div class="chart-container">
                    <div class="chart-title">Failure Rate</div>
                    <div class="chart-wrapper"><canvas id="failChart"></canvas></div>
                </div>
            </div>
        </section>
        {{end}}

        {{if .Snapshot.Tasks}}
        <section class="section">
            <h2 class="section-title">Tasks</h2>
            <table class="stats-table">
                <thead>
                    <tr>
                        <th>Task</th>
                        <th>Requests</th>
                        <th>Failures</th>
                        <th>Req/s</th>
                        <th>Mean</th>
                        <th>P50</th>
                        <th>P95</th>
                        <th>P99</th>
                        <th>Max</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Snapshot.Tasks}}
                    <tr>
                        <td>{{.Name}}</td>
                        <td>{{formatNumber .Requests}}</td>
                        <td{{if .Failures}} class="fail"{{end}}>{{formatNumber .Failures}}</td>
                        <td>{{printf "%.1f" .RPS}}</td>
                        <td>{{formatLatency .Latency.Mean}}</td>
                        <td>{{formatLatency .Latency.P50}}</td>
                        <td>{{formatLatency .Latency.P95}}</td>
                        <td>{{formatLatency .Latency.P99}}</td>
                        <td>{{formatLatency .Latency.Max}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </section>
        {{end}}

        {{if .Snapshot.Failures}}
        <section class="section">
            <h2 class="section-title">Failures</h2>
            <table class="stats-table">
                <thead>
                    <tr>
                        <th>Count</th>
                        <th>Task</th>
                        <th>Error</th>
                    </tr>
                </thead>
                <tbody>
                    {{range .Snapshot.Failures}}
                    <tr>
                        <td>{{formatNumber .Count}}</td>
                        <td>{{.Task}}</td>
                        <td>{{.Message}}</td>
                    </tr>
                    {{end}}
                </tbody>
            </table>
        </section>
        {{end}}

        {{if .Thresholds}}
        <section class="section">
            <h2 class="section-title">Thresholds</h2>
            <div class="threshold-list">
                {{range .Thresholds}}
                <div class="threshold-item">
                    <span class="threshold-icon {{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}&#10003;{{else}}&#10007;{{end}}</span>
                    <div class="threshold-expr">{{.Threshold}}</div>
                    <div class="threshold-value">
                        Actual: {{.ActualString}}
                        {{if .Message}}<br><span class="threshold-message">{{.Message}}</span>{{end}}
                    </div>
                </div>
                {{end}}
            </div>
        </section>
        {{end}}

        <footer class="footer">
            <p>Generated by swarm &middot; {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
        </footer>
    </div>

    <script>
        const timeSeriesData = {{.TimeSeriesJSON}};

        const labels = timeSeriesData.map((d, i) => i + 's');
        const rpsData = timeSeriesData.map(d => d.intervalRPS);
        const p50Data = timeSeriesData.map(d => d.latencyP50 / 1000000);
        const p95Data = timeSeriesData.map(d => d.latencyP95 / 1000000);
        const p99Data = timeSeriesData.map(d => d.latencyP99 / 1000000);
        const usersData = timeSeriesData.map(d => d.activeUsers);
        const failData = timeSeriesData.map(d => d.intervalFailRatio * 100);

        const colors = {
            text: '#1e293b',
            grid: '#e2e8f0',
            primary: '#3b82f6',
            success: '#22c55e',
            warning: '#f59e0b',
            error: '#ef4444',
            purple: '#8b5cf6',
        };

        const commonOptions = {
            responsive: true,
            maintainAspectRatio: false,
            interaction: { mode: 'index', intersect: false },
            plugins: {
                legend: { labels: { color: colors.text, usePointStyle: true, pointStyle: 'circle' } },
            },
            scales: {
                x: { ticks: { color: colors.text }, grid: { color: colors.grid } },
                y: { ticks: { color: colors.text }, grid: { color: colors.grid }, beginAtZero: true },
            },
        };

        function lineDataset(label, data, color, fill) {
            return {
                label: label,
                data: data,
                borderColor: color,
                backgroundColor: fill ? color + '20' : 'transparent',
                fill: !!fill,
                tension: 0.3,
                pointRadius: 0,
                borderWidth: 2,
            };
        }

        function makeChart(id, datasets, options) {
            const ctx = document.getElementById(id);
            if (!ctx) return;
            new Chart(ctx.getContext('2d'), {
                type: 'line',
                data: { labels: labels, datasets: datasets },
                options: options || commonOptions,
            });
        }

        document.addEventListener('DOMContentLoaded', function () {
            if (!timeSeriesData || timeSeriesData.length === 0) return;

            makeChart('rpsChart', [lineDataset('req/s', rpsData, colors.primary, true)]);
            makeChart('latencyChart', [
                lineDataset('P50', p50Data, colors.success),
                lineDataset('P95', p95Data, colors.warning),
                lineDataset('P99', p99Data, colors.error),
            ], {
                ...commonOptions,
                scales: {
                    ...commonOptions.scales,
                    y: { ...commonOptions.scales.y, title: { display: true, text: 'ms', color: colors.text } },
                },
            });
            makeChart('usersChart', [Object.assign(lineDataset('users', usersData, colors.purple, true), { stepped: true })]);
            makeChart('failChart', [lineDataset('failures (%)', failData, colors.error, true)], {
                ...commonOptions,
                scales: {
                    ...commonOptions.scales,
                    y: {
                        ...commonOptions.scales.y,
                        max: Math.max(10, Math.ceil(Math.max(...failData) * 1.1)),
                        title: { display: true, text: '%', color: colors.text },
                    },
                },
            });
        });
    </script>
</body>
</html>`
