// Package compose invokes the external container-group manager
// (docker-compose) that brings deployment units up and down.
package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Runner runs one collaborator invocation, appending args to the base command.
type Runner interface {
	Run(ctx context.Context, args ...string) CommandResult
}

// CommandResult is the outcome of a single invocation.
type CommandResult struct {
	OK       bool
	ExitCode int
	Err      error
}

// Succeeded returns a successful result.
func Succeeded() CommandResult {
	return CommandResult{OK: true}
}

// Failed wraps err into a failed result. The exit code is taken from a
// *CommandError when err carries one, otherwise it is -1.
func Failed(err error) CommandResult {
	code := -1
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode
	}
	return CommandResult{OK: false, ExitCode: code, Err: err}
}

// CommandError reports a collaborator process that exited non-zero or could
// not be launched. ExitCode is -1 for launch failures.
type CommandError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return fmt.Sprintf("command %q cancelled: %v", cmd, e.Err)
	}
	if e.ExitCode < 0 {
		return fmt.Sprintf("command %q could not run: %v", cmd, e.Err)
	}
	return fmt.Sprintf("command %q exited with status %d", cmd, e.ExitCode)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Exit codes of a process ended by SIGINT or SIGTERM, as shells report them.
const (
	ExitInterrupt = 130
	ExitTerminate = 143
)

// Interrupted reports whether err comes from a cancelled invocation or from
// a collaborator that was stopped by SIGINT or SIGTERM.
func Interrupted(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode == ExitInterrupt || cmdErr.ExitCode == ExitTerminate
	}
	return false
}

// UpArgs returns the arguments that start units detached.
func UpArgs(units ...string) []string {
	return append([]string{"up", "-d"}, units...)
}

// DownArgs returns the arguments that stop and remove every unit.
func DownArgs() []string {
	return []string{"down"}
}

// LogsArgs returns the arguments that follow combined logs with a tail window.
func LogsArgs(tail int) []string {
	return []string{"logs", "-f", "--tail", fmt.Sprint(tail)}
}
