// Package sequencer brings a deployment plan up one step at a time, waiting
// after each step and stopping at the first failure.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coopcredit/devstack/internal/compose"
	vlog "github.com/coopcredit/devstack/internal/log"
	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/readiness"
	"github.com/google/uuid"
)

// State is the sequencer's position in a deployment.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateFailed
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateFailed:
		return "failed"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Engine orchestrates step execution against the collaborator.
type Engine struct {
	Runner  compose.Runner
	Waiter  readiness.Waiter
	Display *Display

	mu    sync.Mutex
	state State
	step  int
	runID string
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// RunID identifies the most recent deployment in the log file.
func (e *Engine) RunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runID
}

// Step returns the index of the step being started, or the step that
// failed. It is -1 while idle.
func (e *Engine) Step() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateIdle {
		return -1
	}
	return e.step
}

func (e *Engine) transition(s State, step int) {
	e.mu.Lock()
	e.state, e.step = s, step
	e.mu.Unlock()
}

// Deploy runs every step of p in order and reports whether all succeeded.
// A failing step ends the deployment; units already started stay up.
func (e *Engine) Deploy(ctx context.Context, p *plan.Plan) bool {
	runID := uuid.New().String()[:8]
	e.mu.Lock()
	e.state, e.step, e.runID = StateIdle, 0, runID
	e.mu.Unlock()

	startTime := time.Now()
	e.Display.Header(p)
	vlog.Info("deployment started", "run", runID, "plan", p.Name, "steps", len(p.Steps))

	for i, step := range p.Steps {
		e.transition(StateStarting, i)
		label := step.Label()

		if err := ctx.Err(); err != nil {
			return e.fail(runID, i, label, err)
		}

		e.Display.StepStart(label)
		stepStart := time.Now()
		res := e.Runner.Run(ctx, compose.UpArgs(step.Units...)...)
		if !res.OK {
			return e.fail(runID, i, label, resultErr(res))
		}
		e.Display.StepDone(label, time.Since(stepStart))
		vlog.Info("step started", "run", runID, "group", step.Group, "units", step.Units, "duration", time.Since(stepStart))

		if step.Wait > 0 {
			e.Display.Waiting(step.Group, step.Wait)
		}
		if err := e.Waiter.Wait(ctx, step); err != nil {
			return e.fail(runID, i, label, fmt.Errorf("waiting for readiness: %w", err))
		}
	}

	e.transition(StateCompleted, len(p.Steps)-1)
	vlog.Info("deployment completed", "run", runID, "plan", p.Name, "duration", time.Since(startTime))
	e.Display.Summary(p.Endpoints, time.Since(startTime))
	return true
}

func (e *Engine) fail(runID string, i int, label string, err error) bool {
	e.transition(StateFailed, i)
	e.Display.StepFailed(label, err)
	e.Display.Failed(fmt.Errorf("step %q failed: %w", label, err))
	vlog.Error("deployment failed", "run", runID, "step", label, "index", i, "err", err)
	return false
}

// Teardown stops and removes every unit with a single collaborator call.
func (e *Engine) Teardown(ctx context.Context) bool {
	const label = "Stopping and removing containers"
	e.Display.Teardown()
	e.Display.StepStart(label)
	start := time.Now()

	res := e.Runner.Run(ctx, compose.DownArgs()...)
	if !res.OK {
		e.Display.StepFailed(label, resultErr(res))
		vlog.Error("teardown failed", "err", res.Err)
		return false
	}
	e.Display.StepDone(label, time.Since(start))
	e.transition(StateIdle, 0)
	return true
}

// Logs follows the combined logs of all units until ctx is cancelled or the
// collaborator is stopped by an interrupt. Both are the normal way out and
// are not reported; other collaborator failures are displayed, not returned.
func (e *Engine) Logs(ctx context.Context, tail int) error {
	if tail < 0 {
		return fmt.Errorf("tail must not be negative, got %d", tail)
	}
	e.Display.LogsStart()

	res := e.Runner.Run(ctx, compose.LogsArgs(tail)...)
	// Ctrl+C reaches the child too, so it may exit before ctx is cancelled.
	if ctx.Err() != nil || (!res.OK && compose.Interrupted(res.Err)) {
		e.Display.LogsEnd()
		return nil
	}
	if !res.OK {
		e.Display.StepFailed("log streaming", resultErr(res))
		vlog.Warn("log streaming failed", "err", res.Err)
	}
	return nil
}

func resultErr(res compose.CommandResult) error {
	if res.Err != nil {
		return res.Err
	}
	return errors.New("command failed")
}
