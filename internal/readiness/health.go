package readiness

import (
	"context"
	"fmt"
	"time"

	vlog "github.com/coopcredit/devstack/internal/log"
	"github.com/coopcredit/devstack/internal/types"
	"golang.org/x/sync/errgroup"
)

// Health is a unit's container status as seen by the runtime.
type Health string

const (
	HealthUnknown   Health = ""          // container not found yet
	HealthNone      Health = "none"      // running, no healthcheck defined
	HealthStarting  Health = "starting"
	HealthHealthy   Health = "healthy"
	HealthUnhealthy Health = "unhealthy"
	HealthExited    Health = "exited"
)

// Inspector reports the health of a unit's container.
type Inspector interface {
	UnitHealth(ctx context.Context, unit string) (Health, error)
}

// HealthWaiter polls every unit of a step concurrently until each is healthy.
// Units without a healthcheck are covered by a single fallback wait of the
// step's fixed delay.
type HealthWaiter struct {
	Inspector Inspector
	Interval  time.Duration
	Timeout   time.Duration
	Fallback  Waiter
	Sleep     SleepFunc
}

const (
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 3 * time.Minute
)

func (w *HealthWaiter) Wait(ctx context.Context, step types.Step) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	timeout := w.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	needsFallback := make([]bool, len(step.Units))
	g, gctx := errgroup.WithContext(pollCtx)
	for i, unit := range step.Units {
		g.Go(func() error {
			fallback, err := w.poll(gctx, unit, interval, sleep)
			needsFallback[i] = fallback
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("step %q: %w", step.Group, err)
	}

	for _, fb := range needsFallback {
		if fb {
			vlog.Debug("no healthcheck, using fixed delay", "group", step.Group, "wait", step.Wait)
			return w.fallback().Wait(ctx, step)
		}
	}
	return nil
}

func (w *HealthWaiter) fallback() Waiter {
	if w.Fallback != nil {
		return w.Fallback
	}
	return &DelayWaiter{Sleep: w.Sleep}
}

// poll returns true when the unit has no healthcheck and needs the fallback delay.
func (w *HealthWaiter) poll(ctx context.Context, unit string, interval time.Duration, sleep SleepFunc) (bool, error) {
	for {
		h, err := w.Inspector.UnitHealth(ctx, unit)
		if err != nil {
			return false, fmt.Errorf("inspecting %s: %w", unit, err)
		}
		vlog.Debug("unit health", "unit", unit, "health", string(h))

		switch h {
		case HealthHealthy:
			return false, nil
		case HealthNone:
			return true, nil
		case HealthUnhealthy:
			return false, fmt.Errorf("%s: %w", unit, ErrUnhealthy)
		case HealthExited:
			return false, fmt.Errorf("%s: container exited", unit)
		}

		if err := sleep(ctx, interval); err != nil {
			return false, fmt.Errorf("waiting for %s: %w", unit, err)
		}
	}
}
