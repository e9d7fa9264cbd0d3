package compose

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	vlog "github.com/coopcredit/devstack/internal/log"
)

// ExecRunner runs the collaborator as a child process, streaming its output
// to the configured writers.
type ExecRunner struct {
	Base   []string // resolved base command, e.g. [sudo docker-compose]
	File   string   // optional compose file passed with -f
	Dir    string   // working directory; empty means the current one
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process's standard streams.
func NewExecRunner(base []string, file, dir string) *ExecRunner {
	return &ExecRunner{
		Base:   base,
		File:   file,
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command returns the full argv for args.
func (r *ExecRunner) Command(args ...string) []string {
	argv := append([]string(nil), r.Base...)
	if r.File != "" {
		argv = append(argv, "-f", r.File)
	}
	return append(argv, args...)
}

func (r *ExecRunner) Run(ctx context.Context, args ...string) CommandResult {
	argv := r.Command(args...)
	if len(argv) == 0 {
		return Failed(&CommandError{Args: argv, ExitCode: -1, Err: errors.New("empty command")})
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	vlog.Debug("running collaborator", "argv", argv, "dir", r.Dir)
	err := cmd.Run()
	if err == nil {
		return Succeeded()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			code = 128 + int(ws.Signal())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			// Killed on cancellation; report the cancellation rather than the signal.
			return Failed(&CommandError{Args: argv, ExitCode: code, Err: ctxErr})
		}
		return Failed(&CommandError{Args: argv, ExitCode: code, Err: err})
	}
	return Failed(&CommandError{Args: argv, ExitCode: -1, Err: err})
}
