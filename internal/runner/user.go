package runner

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	swarmhttp "github.com/swarmload/swarm/internal/http"
	"github.com/swarmload/swarm/internal/metrics"
	"github.com/swarmload/swarm/internal/scenario"
)

// UserState is the lifecycle state of a virtual user.
type UserState int32

const (
	// UserIdle means the user exists but has not started iterating.
	UserIdle UserState = iota
	// UserRunning means the user is executing iterations.
	UserRunning
	// UserStopping means a graceful stop was requested.
	UserStopping
	// UserStopped means the user goroutine has exited.
	UserStopped
)

func (s UserState) String() string {
	switch s {
	case UserIdle:
		return "idle"
	case UserRunning:
		return "running"
	case UserStopping:
		return "stopping"
	case UserStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// User is one simulated user. It repeatedly picks a weighted task from
// its class, fires the request, applies the checks and pauses per the
// class wait model, until stopped.
type User struct {
	ID int

	client  *swarmhttp.Client
	metrics *metrics.Engine
	log     *zap.Logger
	vars    map[string]string

	rng    *rand.Rand
	picker *scenario.TaskPicker
	wait   scenario.WaitModel

	state      atomic.Int32
	iterations atomic.Int64
	stopCh     chan struct{}
	doneCh     chan struct{}
}

// newUser wires a user to its class. The seed keeps task picking and
// wait jitter reproducible across runs.
func newUser(id int, class *scenario.UserClass, vars map[string]string, client *swarmhttp.Client, engine *metrics.Engine, log *zap.Logger, seed int64) (*User, error) {
	wait, err := scenario.ParseWait(class.Wait)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed + int64(id)))
	return &User{
		ID:      id,
		client:  client,
		metrics: engine,
		log:     log.With(zap.Int("user", id), zap.String("class", class.Name)),
		vars:    vars,
		rng:     rng,
		picker:  scenario.NewTaskPicker(class.Tasks, rng),
		wait:    wait,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// State returns the current lifecycle state.
func (u *User) State() UserState {
	return UserState(u.state.Load())
}

// Iterations returns how many iterations this user has completed.
func (u *User) Iterations() int64 {
	return u.iterations.Load()
}

// Run iterates until the context is cancelled or RequestStop is called.
// A graceful stop lets the in-flight iteration finish.
func (u *User) Run(ctx context.Context) {
	defer func() {
		u.state.Store(int32(UserStopped))
		close(u.doneCh)
	}()
	u.state.Store(int32(UserRunning))

	for {
		select {
		case <-ctx.Done():
			return
		case <-u.stopCh:
			return
		default:
		}

		start := time.Now()
		u.runIteration(ctx)
		u.iterations.Add(1)

		if pause := u.wait.Pause(time.Since(start), u.rng); pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-u.stopCh:
				return
			case <-time.After(pause):
			}
		}
	}
}

// RequestStop asks the user to exit after its current iteration.
func (u *User) RequestStop() {
	if u.state.CompareAndSwap(int32(UserRunning), int32(UserStopping)) ||
		u.state.CompareAndSwap(int32(UserIdle), int32(UserStopping)) {
		close(u.stopCh)
	}
}

// Done is closed once the user goroutine has exited.
func (u *User) Done() <-chan struct{} {
	return u.doneCh
}

func (u *User) runIteration(ctx context.Context) {
	task := u.picker.Pick()
	if task == nil {
		return
	}

	rendered := scenario.RenderRequest(task.Request, u.vars)
	req := swarmhttp.NewRequest(rendered.Method, rendered.Path)
	for key, value := range rendered.Headers {
		req.WithHeader(key, value)
	}
	if rendered.Body != "" {
		req.WithBody(rendered.Body)
	}

	start := time.Now()
	resp, err := u.client.Do(ctx, req)
	if err != nil {
		// An aborted in-flight request during shutdown is not a result.
		if ctx.Err() != nil {
			return
		}
		u.log.Debug("request failed", zap.String("task", task.Name), zap.Error(err))
		u.metrics.RecordSample(task.Name, time.Since(start), true, 0, errMessage(err))
		return
	}

	failMsg, ok := RunChecks(task.Checks, resp)
	if !ok {
		u.log.Debug("check failed", zap.String("task", task.Name), zap.String("reason", failMsg))
	}
	u.metrics.RecordSample(task.Name, resp.Timing.Total, !ok, resp.Size(), failMsg)
}

// errMessage normalizes transport errors into short stable strings so
// the failure table groups them.
func errMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "request timeout"
		}
		return urlErr.Err.Error()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timeout"
	}
	return err.Error()
}
