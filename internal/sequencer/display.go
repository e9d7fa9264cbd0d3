package sequencer

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/coopcredit/devstack/internal/plan"
)

// Display handles terminal progress output for a deployment.
type Display struct {
	w io.Writer
}

// NewDisplay creates a display that writes to stdout.
func NewDisplay() *Display {
	return &Display{w: os.Stdout}
}

// NewDisplayTo creates a display that writes to w.
func NewDisplayTo(w io.Writer) *Display {
	return &Display{w: w}
}

// ansiEscapeRe matches ANSI terminal escape sequences and C0/DEL control characters.
var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]|[\x00-\x1f\x7f]`)

// sanitize strips escape sequences from text that came from plan files or
// child process errors before it reaches the terminal.
func sanitize(s string) string {
	return ansiEscapeRe.ReplaceAllString(s, "")
}

// Header prints the deployment header.
func (d *Display) Header(p *plan.Plan) {
	fmt.Fprintf(d.w, "\n🔄 Starting ordered deployment: %s\n", sanitize(p.Name))
	fmt.Fprintf(d.w, "   %s\n", sanitize(p.Order()))
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
}

// StepStart prints a step-in-progress line.
func (d *Display) StepStart(label string) {
	fmt.Fprintf(d.w, "🚀 %s...\n", sanitize(label))
}

// StepDone prints a completed step line.
func (d *Display) StepDone(label string, duration time.Duration) {
	fmt.Fprintf(d.w, "✅ %s completed. (%.1fs)\n", sanitize(label), duration.Seconds())
}

// StepFailed prints a failed step line.
func (d *Display) StepFailed(label string, err error) {
	fmt.Fprintf(d.w, "❌ Error in %s: %s\n", sanitize(label), sanitize(err.Error()))
}

// Waiting prints the pause taken before the next step.
func (d *Display) Waiting(group string, wait time.Duration) {
	fmt.Fprintf(d.w, "⏳ Waiting %s for %s...\n", formatWait(wait), sanitize(group))
}

// Summary prints the completion banner and the plan's access endpoints.
func (d *Display) Summary(endpoints []plan.Endpoint, total time.Duration) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "✨ Deployment complete! All services are up. (%.0fs)\n", total.Seconds())
	if len(endpoints) == 0 {
		fmt.Fprintln(d.w)
		return
	}

	width := 0
	for _, e := range endpoints {
		if n := len([]rune(e.Label)); n > width {
			width = n
		}
	}
	fmt.Fprintln(d.w, "\n📌 Access URLs:")
	for _, e := range endpoints {
		line := fmt.Sprintf("   %-*s  %s", width+1, sanitize(e.Label)+":", sanitize(e.URL))
		if e.Note != "" {
			line += fmt.Sprintf(" (%s)", sanitize(e.Note))
		}
		fmt.Fprintln(d.w, line)
	}
	fmt.Fprintln(d.w)
}

// Failed prints a failure banner.
func (d *Display) Failed(err error) {
	fmt.Fprintln(d.w, strings.Repeat("─", 76))
	fmt.Fprintf(d.w, "❌ Deployment stopped: %s\n", sanitize(err.Error()))
	fmt.Fprintln(d.w, "   Units already started were left running.")
	fmt.Fprintln(d.w)
}

// Teardown prints the banner shown before stopping everything.
func (d *Display) Teardown() {
	fmt.Fprintln(d.w, "\n🛑 Stopping all containers...")
}

// LogsStart prints the banner shown before streaming logs.
func (d *Display) LogsStart() {
	fmt.Fprintln(d.w, "\n📜 Showing logs (press Ctrl+C to return)...")
}

// LogsEnd prints the message shown when log streaming is interrupted.
func (d *Display) LogsEnd() {
	fmt.Fprintln(d.w, "\n👋 Left log view.")
}

// formatWait renders whole-second waits as "15 seconds".
func formatWait(d time.Duration) string {
	if d%time.Second == 0 {
		n := int(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
	return d.String()
}
