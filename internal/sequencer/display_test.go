package sequencer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/types"
)

func TestHeaderShowsOrder(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplayTo(&buf)
	d.Header(&plan.Plan{Name: "credit", Steps: []types.Step{{Group: "db"}, {Group: "gateway"}}})
	out := buf.String()
	if !strings.Contains(out, "credit") || !strings.Contains(out, "db -> gateway") {
		t.Errorf("Header output missing plan name or order: %q", out)
	}
}

func TestStepLines(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplayTo(&buf)
	d.StepStart("Starting Gateway")
	d.StepDone("Starting Gateway", 1500*time.Millisecond)
	d.StepFailed("Starting Gateway", errors.New("exit status 1"))
	out := buf.String()

	for _, want := range []string{
		"🚀 Starting Gateway...",
		"✅ Starting Gateway completed. (1.5s)",
		"❌ Error in Starting Gateway: exit status 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestSummaryAlignsLabels(t *testing.T) {
	var buf bytes.Buffer
	d := NewDisplayTo(&buf)
	d.Summary([]plan.Endpoint{
		{Label: "Gateway (API)", URL: "http://localhost:8080"},
		{Label: "Grafana", URL: "http://localhost:3000", Note: "admin/admin"},
	}, 2*time.Minute)
	out := buf.String()

	if !strings.Contains(out, "Deployment complete") {
		t.Errorf("Summary missing banner: %q", out)
	}
	gw := strings.Index(out, "http://localhost:8080") - strings.LastIndex(out[:strings.Index(out, "http://localhost:8080")], "\n")
	gr := strings.Index(out, "http://localhost:3000") - strings.LastIndex(out[:strings.Index(out, "http://localhost:3000")], "\n")
	if gw != gr {
		t.Errorf("URLs not aligned (%d vs %d): %q", gw, gr, out)
	}
}

func TestSummaryWithoutEndpoints(t *testing.T) {
	var buf bytes.Buffer
	NewDisplayTo(&buf).Summary(nil, time.Second)
	if strings.Contains(buf.String(), "Access URLs") {
		t.Errorf("Summary should omit URL section when empty: %q", buf.String())
	}
}

func TestFailedMentionsRunningUnits(t *testing.T) {
	var buf bytes.Buffer
	NewDisplayTo(&buf).Failed(errors.New(`step "db" failed`))
	out := buf.String()
	if !strings.Contains(out, `step "db" failed`) || !strings.Contains(out, "left running") {
		t.Errorf("Failed output incomplete: %q", out)
	}
}

func TestSanitizeStripsANSI(t *testing.T) {
	got := sanitize("\x1b[31mgateway\x1b[0m\x00")
	if got != "gateway" {
		t.Errorf("sanitize() = %q, want %q", got, "gateway")
	}
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{15 * time.Second, "15 seconds"},
		{time.Second, "1 second"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, tt := range tests {
		if got := formatWait(tt.in); got != tt.want {
			t.Errorf("formatWait(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
