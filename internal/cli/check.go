package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/swarmload/swarm/internal/config"
	swarmhttp "github.com/swarmload/swarm/internal/http"
	"github.com/swarmload/swarm/internal/output"
	"github.com/swarmload/swarm/internal/runner"
	"github.com/swarmload/swarm/internal/scenario"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and scenario",
		Long: `Check resolves the configuration, loads and validates the scenario and
reports what would run. With --probe it also fires each runnable task
once against the host, printing the response status, timing breakdown
(DNS, connect, TLS, first byte, transfer) and check verdicts, without
recording any statistics.`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}

	fl := cmd.Flags()
	fl.StringP("scenario", "f", "", "scenario file to check")
	fl.StringP("host", "H", "", "base URL of the system under test")
	fl.Bool("probe", false, "fire each runnable task once against the host")
	fl.Duration("timeout", 10*time.Second, "probe request timeout")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	confPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(confPath, collectOverrides(cmd))
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	scn, err := scenario.Load(cfg.ScenarioFile)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	if err := scn.Validate(); err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	runnable, err := scn.Filter(cfg.Tags, cfg.ExcludeTags)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}
	criteria, err := runner.ThresholdsFor(runnable)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	w := cmd.OutOrStdout()
	scheme := output.SchemeFor(w)

	fmt.Fprintf(w, "scenario  %s (%s)\n", scn.Name, cfg.ScenarioFile)
	fmt.Fprintf(w, "host      %s\n", cfg.Host)
	fmt.Fprintf(w, "runnable  %d of %d tasks%s\n",
		runnable.TaskCount(), scn.TaskCount(), tagNote(cfg))
	exprs := make([]string, len(criteria))
	for i, t := range criteria {
		exprs[i] = t.String()
	}
	fmt.Fprintf(w, "criteria  %s\n", strings.Join(exprs, ", "))

	probe, _ := cmd.Flags().GetBool("probe")
	if !probe {
		fmt.Fprintf(w, "\n%s\n", scheme.Good.Sprint("configuration OK"))
		return nil
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	client := swarmhttp.NewClient(cfg.Host, swarmhttp.WithTimeout(timeout))

	failed := 0
	for _, u := range runnable.Users {
		for _, task := range u.Tasks {
			if err := probeTask(cmd.Context(), w, scheme, client, runnable.Variables, task); err != nil {
				failed++
			}
		}
	}
	if failed > 0 {
		return &ExitError{Code: 2, Err: fmt.Errorf("%d of %d probes failed", failed, runnable.TaskCount())}
	}
	fmt.Fprintf(w, "\n%s\n", scheme.Good.Sprint("all probes OK"))
	return nil
}

func tagNote(cfg *config.Config) string {
	var parts []string
	if len(cfg.Tags) > 0 {
		parts = append(parts, "tags: "+strings.Join(cfg.Tags, ", "))
	}
	if len(cfg.ExcludeTags) > 0 {
		parts = append(parts, "exclude: "+strings.Join(cfg.ExcludeTags, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

// probeTask fires one rendered request and prints what came back. The
// check verdicts use the same evaluation the virtual users run.
func probeTask(ctx context.Context, w io.Writer, scheme *output.ColorScheme, client *swarmhttp.Client, vars map[string]string, task *scenario.Task) error {
	rendered := scenario.RenderRequest(task.Request, vars)
	req := swarmhttp.NewRequest(rendered.Method, rendered.Path)
	for key, value := range rendered.Headers {
		req.WithHeader(key, value)
	}
	if rendered.Body != "" {
		req.WithBody(rendered.Body)
	}

	fmt.Fprintf(w, "\n%s %s %s\n", scheme.Title.Sprint(task.Name+":"), rendered.Method, rendered.Path)

	resp, err := client.Do(ctx, req)
	if err != nil {
		fmt.Fprintf(w, "  %s %v\n", scheme.Bad.Sprint("✗"), err)
		return err
	}

	status := scheme.Good.Sprint(resp.Status)
	if resp.IsError() {
		status = scheme.Bad.Sprint(resp.Status)
	}
	fmt.Fprintf(w, "  status         %s\n", status)

	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s %s\n", scheme.Dim.Sprintf("%-14s", strings.ToLower(name)), strings.Join(resp.Headers[name], ", "))
	}

	printPhase := func(name string, d time.Duration) {
		if d <= 0 {
			return
		}
		fmt.Fprintf(w, "  %-14s %s\n", name, d.Round(time.Microsecond))
	}
	printPhase("dns lookup", resp.Timing.DNSLookup)
	printPhase("tcp connect", resp.Timing.Connect)
	printPhase("tls handshake", resp.Timing.TLSHandshake)
	printPhase("first byte", resp.Timing.FirstByte)
	printPhase("transfer", resp.Timing.ContentTransfer)
	fmt.Fprintf(w, "  %-14s %s (%d bytes)\n", "total", resp.Timing.Total.Round(time.Microsecond), resp.Size())

	if msg, ok := runner.RunChecks(task.Checks, resp); !ok {
		fmt.Fprintf(w, "  checks         %s %s\n", scheme.Bad.Sprint("✗"), msg)
		return fmt.Errorf("%s: %s", task.Name, msg)
	}
	fmt.Fprintf(w, "  checks         %s\n", scheme.Good.Sprint("✓"))
	return nil
}
