// Package runner drives a load test end to end: it splits the
// configured user count across the scenario's user classes, ramps the
// users up at the spawn rate, keeps them iterating until the run time
// elapses or the run is interrupted, then winds them down and evaluates
// the thresholds against the final snapshot.
package runner

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/swarmload/swarm/internal/config"
	swarmhttp "github.com/swarmload/swarm/internal/http"
	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/scenario"
)

const defaultProgressInterval = 2 * time.Second

// Options wires a Runner. Config and Scenario are required; the rest
// have working defaults.
type Options struct {
	Config   *config.Config
	Scenario *scenario.Scenario
	Logger   *zap.Logger

	// Client overrides the HTTP client, used by tests.
	Client *swarmhttp.Client

	// OnProgress, when set, receives a live snapshot every
	// ProgressInterval while the run is active.
	OnProgress       func(*metrics.Snapshot)
	ProgressInterval time.Duration
}

// Result is the outcome of a completed run. Config echoes the resolved
// settings so exported results are self-describing.
type Result struct {
	Scenario    string                `json:"scenario"`
	Config      *config.Config        `json:"config,omitempty"`
	Snapshot    *metrics.Snapshot     `json:"snapshot"`
	TimeSeries  []*metrics.TimeBucket `json:"timeSeries,omitempty"`
	Thresholds  []ThresholdResult     `json:"thresholds"`
	Passed      bool                  `json:"passed"`
	Interrupted bool                  `json:"interrupted,omitempty"`
}

// Runner executes one load test. A Runner is single-use.
type Runner struct {
	cfg        *config.Config
	scn        *scenario.Scenario
	log        *zap.Logger
	client     *swarmhttp.Client
	thresholds []Threshold
	counts     []int

	onProgress       func(*metrics.Snapshot)
	progressInterval time.Duration

	mu      sync.Mutex
	running bool
	done    bool

	engine *metrics.Engine
	live   atomic.Int64
	wg     sync.WaitGroup
}

// New validates the scenario against the configuration and prepares a
// runner. Tag filtering, threshold parsing and user distribution all
// happen here so a bad setup fails before any load is generated.
func New(opts Options) (*Runner, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("runner: configuration is required")
	}
	if opts.Scenario == nil {
		return nil, fmt.Errorf("runner: scenario is required")
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := opts.Scenario.Validate(); err != nil {
		return nil, err
	}

	filtered, err := opts.Scenario.Filter(opts.Config.Tags, opts.Config.ExcludeTags)
	if err != nil {
		return nil, err
	}

	thresholds, err := ThresholdsFor(filtered)
	if err != nil {
		return nil, err
	}

	client := opts.Client
	if client == nil {
		client = swarmhttp.NewClient(opts.Config.Host, swarmhttp.WithPoolSize(opts.Config.Users))
	}

	interval := opts.ProgressInterval
	if interval <= 0 {
		interval = defaultProgressInterval
	}

	return &Runner{
		cfg:              opts.Config,
		scn:              filtered,
		log:              log,
		client:           client,
		thresholds:       thresholds,
		counts:           scenario.DistributeUsers(filtered.Users, opts.Config.Users),
		onProgress:       opts.OnProgress,
		progressInterval: interval,
	}, nil
}

// Thresholds returns the criteria the run will be judged against.
func (r *Runner) Thresholds() []Threshold {
	return r.thresholds
}

// Run executes the load test. Cancelling ctx interrupts the run
// gracefully: users finish their current iteration, within the stop
// timeout, and the thresholds are still evaluated over what ran.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.running || r.done {
		r.mu.Unlock()
		return nil, fmt.Errorf("runner: already ran, create a new runner")
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.done = true
		r.mu.Unlock()
	}()

	r.engine = metrics.NewEngine(metrics.DefaultConfig())
	defer r.engine.Stop()

	r.log.Info("starting load test",
		zap.String("scenario", r.scn.Name),
		zap.String("host", r.cfg.Host),
		zap.Int("users", r.cfg.Users),
		zap.Float64("spawn_rate", r.cfg.SpawnRate),
		zap.Duration("run_time", r.cfg.RunTime),
		zap.Int64("seed", r.cfg.Seed))
	for i, class := range r.scn.Users {
		r.log.Debug("user class",
			zap.String("name", class.Name),
			zap.Int("weight", class.Weight),
			zap.Int("users", r.counts[i]))
	}

	users, err := r.prepareUsers()
	if err != nil {
		return nil, err
	}

	// Users run on their own context so cancelling the run does not
	// abort in-flight iterations before the stop timeout says so.
	userCtx, userCancel := context.WithCancel(context.Background())
	defer userCancel()

	progressDone := r.startProgress()

	endTime := time.Now().Add(r.cfg.RunTime)
	spawnCtx, cancelSpawn := context.WithDeadline(ctx, endTime)

	r.engine.SetPhase(metrics.PhaseSpawning)
	started := r.spawn(spawnCtx, userCtx, users)
	cancelSpawn()

	if started == len(users) {
		r.engine.SetPhase(metrics.PhaseRunning)
		r.log.Info("all users spawned", zap.Int("users", started))
	} else {
		r.log.Warn("run ended during ramp-up",
			zap.Int("spawned", started),
			zap.Int("target", len(users)))
	}

	interrupted := false
	select {
	case <-time.After(time.Until(endTime)):
	case <-ctx.Done():
		interrupted = true
		r.log.Info("run interrupted, shutting down")
	}

	r.engine.SetPhase(metrics.PhaseStopping)
	r.log.Info("stopping users", zap.Duration("stop_timeout", r.cfg.StopTimeout))
	for _, u := range users {
		u.RequestStop()
	}

	allDone := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(allDone)
	}()

	if r.cfg.StopTimeout > 0 {
		select {
		case <-allDone:
		case <-time.After(r.cfg.StopTimeout):
			r.log.Warn("stop timeout exceeded, aborting in-flight requests")
		}
	}
	userCancel()
	<-allDone

	r.engine.SetPhase(metrics.PhaseStopped)
	close(progressDone)
	r.engine.Stop()

	snap := r.engine.Snapshot()
	results, passed := EvaluateThresholds(r.thresholds, snap)
	for _, tr := range results {
		if !tr.Passed {
			r.log.Warn("threshold failed", zap.String("threshold", tr.Threshold.String()), zap.String("detail", tr.Message))
		}
	}

	r.log.Info("load test finished",
		zap.Int64("requests", snap.TotalRequests),
		zap.Int64("failures", snap.TotalFailures),
		zap.Float64("rps", snap.RPS),
		zap.Bool("passed", passed))

	return &Result{
		Scenario:    r.scn.Name,
		Config:      r.cfg,
		Snapshot:    snap,
		TimeSeries:  r.engine.TimeSeries(),
		Thresholds:  results,
		Passed:      passed,
		Interrupted: interrupted,
	}, nil
}

// prepareUsers constructs every user up front so that any setup error
// surfaces before the first request is sent.
func (r *Runner) prepareUsers() ([]*User, error) {
	assignments := buildAssignments(r.scn.Users, r.counts)
	users := make([]*User, 0, len(assignments))
	for i, class := range assignments {
		u, err := newUser(i+1, class, r.scn.Variables, r.client, r.engine, r.log, r.cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("user class %s: %w", class.Name, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// startProgress emits live snapshots until the returned channel is
// closed.
func (r *Runner) startProgress() chan struct{} {
	done := make(chan struct{})
	if r.onProgress == nil {
		return done
	}

	go func() {
		ticker := time.NewTicker(r.progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				r.onProgress(r.engine.Snapshot())
			}
		}
	}()
	return done
}
