package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/sequencer"
)

// Menu is the interactive start/logs/stop/exit loop.
type Menu struct {
	Engine *sequencer.Engine
	Plan   *plan.Plan
	Tail   int

	In         io.Reader
	Out        io.Writer
	Interrupts <-chan os.Signal
}

// NewMenu returns a menu over engine reading choices from in.
func NewMenu(engine *sequencer.Engine, p *plan.Plan, tail int, in io.Reader, out io.Writer) *Menu {
	return &Menu{Engine: engine, Plan: p, Tail: tail, In: in, Out: out}
}

// NotifyInterrupts routes SIGINT and SIGTERM to the menu. The returned func
// restores default signal handling.
func (m *Menu) NotifyInterrupts() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	m.Interrupts = ch
	return func() { signal.Stop(ch) }
}

// Run shows the menu until the user exits, input ends, or an interrupt
// arrives outside of log viewing. It always returns nil; command failures
// are reported on Out and the loop carries on.
func (m *Menu) Run(ctx context.Context) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(m.In)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		m.printMenu()
		fmt.Fprint(m.Out, "\nSelect an option (1-4): ")

		var line string
		select {
		case <-ctx.Done():
			m.goodbye()
			return nil
		case <-m.Interrupts:
			fmt.Fprintln(m.Out, "\n👋 Interrupt received. Exiting...")
			return nil
		case l, ok := <-lines:
			if !ok {
				m.goodbye()
				return nil
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "1":
			if m.interruptible(ctx, func(ctx context.Context) { m.Engine.Deploy(ctx, m.Plan) }) {
				fmt.Fprintln(m.Out, "\n👋 Interrupt received. Exiting...")
				return nil
			}
		case "2":
			// An interrupt here only ends the stream.
			m.interruptible(ctx, func(ctx context.Context) { _ = m.Engine.Logs(ctx, m.Tail) })
		case "3":
			if m.interruptible(ctx, func(ctx context.Context) { m.Engine.Teardown(ctx) }) {
				fmt.Fprintln(m.Out, "\n👋 Interrupt received. Exiting...")
				return nil
			}
		case "4":
			m.goodbye()
			return nil
		default:
			fmt.Fprintln(m.Out, "⚠️  Invalid option. Try again.")
		}
	}
}

// interruptible runs fn with a context that an interrupt cancels and
// reports whether that happened.
func (m *Menu) interruptible(ctx context.Context, fn func(context.Context)) bool {
	actx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	interrupted := make(chan bool, 1)
	go func() {
		select {
		case <-m.Interrupts:
			cancel()
			interrupted <- true
		case <-done:
			interrupted <- false
		}
	}()

	fn(actx)
	close(done)
	if <-interrupted {
		return true
	}
	// The child can exit on the same signal before the watcher sees it.
	select {
	case <-m.Interrupts:
		return true
	default:
		return false
	}
}

func (m *Menu) printMenu() {
	title := "CoopCredit"
	if m.Plan.Description != "" {
		title = m.Plan.Description
	}
	fmt.Fprintf(m.Out, "\n--- MICROSERVICE MANAGER (%s) ---\n", title)
	fmt.Fprintf(m.Out, "1. 🚀 Start services (order: %s)\n", m.Plan.Order())
	fmt.Fprintln(m.Out, "2. 📜 View live logs")
	fmt.Fprintln(m.Out, "3. 🛑 Stop all services")
	fmt.Fprintln(m.Out, "4. 👋 Exit")
}

func (m *Menu) goodbye() {
	fmt.Fprintln(m.Out, "\n👋 Goodbye!")
}
