package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/coopcredit/devstack/internal/compose"
	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/sequencer"
	"github.com/coopcredit/devstack/internal/types"
)

type menuRunner struct {
	calls  []string
	onCall func(ctx context.Context, args []string) compose.CommandResult
}

func (r *menuRunner) Run(ctx context.Context, args ...string) compose.CommandResult {
	r.calls = append(r.calls, strings.Join(args, " "))
	if r.onCall != nil {
		return r.onCall(ctx, args)
	}
	return compose.Succeeded()
}

type noWait struct{}

func (noWait) Wait(ctx context.Context, _ types.Step) error { return ctx.Err() }

func menuPlan() *plan.Plan {
	return &plan.Plan{
		Name:        "test",
		Description: "Test stack",
		Steps: []types.Step{
			{Group: "db", Units: []string{"postgres-credit"}, Wait: 15 * time.Second},
			{Group: "gateway", Units: []string{"microservice-gateway"}},
		},
		Endpoints: []plan.Endpoint{{Label: "Gateway", URL: "http://localhost:8080"}},
	}
}

func newTestMenu(r *menuRunner, in io.Reader, out *bytes.Buffer, interrupts chan os.Signal) *Menu {
	e := &sequencer.Engine{Runner: r, Waiter: noWait{}, Display: sequencer.NewDisplayTo(out)}
	m := NewMenu(e, menuPlan(), 100, in, out)
	m.Interrupts = interrupts
	return m
}

func runMenuWithTimeout(t *testing.T, m *Menu) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("menu did not return")
	}
}

func TestMenuStartThenExit(t *testing.T) {
	var out bytes.Buffer
	r := &menuRunner{}
	m := newTestMenu(r, strings.NewReader("1\n4\n"), &out, nil)

	runMenuWithTimeout(t, m)

	want := []string{"up -d postgres-credit", "up -d microservice-gateway"}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	s := out.String()
	if !strings.Contains(s, "Start services (order: db -> gateway)") {
		t.Errorf("menu missing start option with order: %q", s)
	}
	if !strings.Contains(s, "--- MICROSERVICE MANAGER (Test stack) ---") {
		t.Errorf("menu missing title: %q", s)
	}
	if !strings.Contains(s, "Goodbye") {
		t.Errorf("missing goodbye: %q", s)
	}
}

func TestMenuStopAndLogs(t *testing.T) {
	var out bytes.Buffer
	r := &menuRunner{}
	m := newTestMenu(r, strings.NewReader(" 3 \n2\n4\n"), &out, nil)

	runMenuWithTimeout(t, m)

	want := []string{"down", "logs -f --tail 100"}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestMenuInvalidInputReprompts(t *testing.T) {
	var out bytes.Buffer
	r := &menuRunner{}
	m := newTestMenu(r, strings.NewReader("9\n\nstart\n4\n"), &out, nil)

	runMenuWithTimeout(t, m)

	if len(r.calls) != 0 {
		t.Errorf("invalid input should not invoke the runner, got %v", r.calls)
	}
	if n := strings.Count(out.String(), "Invalid option"); n != 3 {
		t.Errorf("expected 3 invalid-option warnings, got %d", n)
	}
	if n := strings.Count(out.String(), "Select an option (1-4)"); n != 4 {
		t.Errorf("expected 4 prompts, got %d", n)
	}
}

func TestMenuEOFExits(t *testing.T) {
	var out bytes.Buffer
	m := newTestMenu(&menuRunner{}, strings.NewReader(""), &out, nil)
	runMenuWithTimeout(t, m)
	if !strings.Contains(out.String(), "Goodbye") {
		t.Errorf("missing goodbye on EOF: %q", out.String())
	}
}

func TestMenuInterruptAtPromptExits(t *testing.T) {
	var out bytes.Buffer
	pr, pw := io.Pipe()
	defer pw.Close()
	interrupts := make(chan os.Signal, 1)
	interrupts <- os.Interrupt

	m := newTestMenu(&menuRunner{}, pr, &out, interrupts)
	runMenuWithTimeout(t, m)

	if !strings.Contains(out.String(), "Interrupt received") {
		t.Errorf("missing interrupt message: %q", out.String())
	}
}

func TestMenuInterruptDuringLogsContinues(t *testing.T) {
	var out bytes.Buffer
	interrupts := make(chan os.Signal, 1)
	r := &menuRunner{onCall: func(ctx context.Context, args []string) compose.CommandResult {
		if args[0] == "logs" {
			interrupts <- os.Interrupt
			<-ctx.Done()
			return compose.Failed(&compose.CommandError{Args: args, ExitCode: -1, Err: ctx.Err()})
		}
		return compose.Succeeded()
	}}
	m := newTestMenu(r, strings.NewReader("2\n3\n4\n"), &out, interrupts)

	runMenuWithTimeout(t, m)

	want := []string{"logs -f --tail 100", "down"}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
	s := out.String()
	if !strings.Contains(s, "Left log view") || !strings.Contains(s, "Goodbye") {
		t.Errorf("expected log exit and normal goodbye: %q", s)
	}
}

func TestMenuInterruptDuringStartExits(t *testing.T) {
	var out bytes.Buffer
	interrupts := make(chan os.Signal, 1)
	r := &menuRunner{onCall: func(ctx context.Context, args []string) compose.CommandResult {
		interrupts <- os.Interrupt
		<-ctx.Done()
		return compose.Failed(&compose.CommandError{Args: args, ExitCode: -1, Err: ctx.Err()})
	}}
	m := newTestMenu(r, strings.NewReader("1\n4\n"), &out, interrupts)

	runMenuWithTimeout(t, m)

	if len(r.calls) != 1 {
		t.Errorf("expected one up call before the interrupt, got %v", r.calls)
	}
	s := out.String()
	if !strings.Contains(s, "Interrupt received") {
		t.Errorf("missing interrupt message: %q", s)
	}
	if strings.Contains(s, "Goodbye") {
		t.Errorf("menu should exit on interrupt, not read the next choice: %q", s)
	}
}

func TestMenuFailureKeepsLoopRunning(t *testing.T) {
	var out bytes.Buffer
	r := &menuRunner{onCall: func(ctx context.Context, args []string) compose.CommandResult {
		if args[0] == "up" {
			return compose.Failed(&compose.CommandError{Args: args, ExitCode: 1})
		}
		return compose.Succeeded()
	}}
	m := newTestMenu(r, strings.NewReader("1\n3\n4\n"), &out, nil)

	runMenuWithTimeout(t, m)

	want := []string{"up -d postgres-credit", "down"}
	if strings.Join(r.calls, "|") != strings.Join(want, "|") {
		t.Errorf("calls = %v, want %v", r.calls, want)
	}
}

func TestMenuLogsChildExitsOnSameInterrupt(t *testing.T) {
	for i := 0; i < 200; i++ {
		var out bytes.Buffer
		interrupts := make(chan os.Signal, 1)
		r := &menuRunner{onCall: func(_ context.Context, args []string) compose.CommandResult {
			if args[0] == "logs" {
				interrupts <- os.Interrupt
				return compose.Failed(&compose.CommandError{Args: args, ExitCode: compose.ExitInterrupt})
			}
			return compose.Succeeded()
		}}
		m := newTestMenu(r, strings.NewReader("2\n3\n4\n"), &out, interrupts)

		runMenuWithTimeout(t, m)

		want := []string{"logs -f --tail 100", "down"}
		if strings.Join(r.calls, "|") != strings.Join(want, "|") {
			t.Fatalf("iteration %d: calls = %v, want %v", i, r.calls, want)
		}
		s := out.String()
		if strings.Contains(s, "Error in") || !strings.Contains(s, "Left log view") || !strings.Contains(s, "Goodbye") {
			t.Fatalf("iteration %d: unexpected output: %q", i, s)
		}
	}
}
