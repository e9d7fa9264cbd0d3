// Package readiness decides when a started step is ready for the next one.
//
// The default DelayWaiter reproduces a blind fixed pause per step. The
// HealthWaiter polls container health through the Docker API and only
// falls back to the fixed pause for units that define no healthcheck.
package readiness

import (
	"context"
	"errors"
	"time"

	"github.com/coopcredit/devstack/internal/types"
)

// ErrUnhealthy is returned when a unit reports an unhealthy container.
var ErrUnhealthy = errors.New("unit is unhealthy")

// Waiter blocks until step is considered ready or ctx ends.
type Waiter interface {
	Wait(ctx context.Context, step types.Step) error
}

// SleepFunc pauses for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// DelayWaiter waits exactly step.Wait, without checking the units.
type DelayWaiter struct {
	Sleep SleepFunc
}

// NewDelayWaiter returns a DelayWaiter backed by the real clock.
func NewDelayWaiter() *DelayWaiter {
	return &DelayWaiter{Sleep: Sleep}
}

func (w *DelayWaiter) Wait(ctx context.Context, step types.Step) error {
	sleep := w.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	return sleep(ctx, step.Wait)
}

// Mode names a readiness strategy in configuration.
type Mode string

const (
	ModeDelay  Mode = "delay"
	ModeHealth Mode = "health"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeDelay || m == ModeHealth
}
