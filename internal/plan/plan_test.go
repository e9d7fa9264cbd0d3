package plan

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	yml := `
name: test
log_tail: 50
steps:
  - group: db
    description: Starting database
    units: [postgres-credit]
    wait: 15s
  - group: business
    units:
      - microservice-credit-application-service
      - microservice-risk-central-service
    wait: 1m
  - group: observability
    units: [prometheus, grafana]
endpoints:
  - label: Grafana
    url: http://localhost:3000
    note: admin/admin
`
	p, err := Parse([]byte(yml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "test" {
		t.Errorf("expected name 'test', got %q", p.Name)
	}
	if len(p.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(p.Steps))
	}
	if p.Steps[0].Wait != 15*time.Second {
		t.Errorf("expected 15s wait, got %v", p.Steps[0].Wait)
	}
	if p.Steps[1].Wait != time.Minute {
		t.Errorf("expected 1m wait, got %v", p.Steps[1].Wait)
	}
	if p.Steps[2].Wait != 0 {
		t.Errorf("expected no wait on last step, got %v", p.Steps[2].Wait)
	}
	if p.Steps[1].Label() != "business" {
		t.Errorf("Label() should fall back to group, got %q", p.Steps[1].Label())
	}
	if p.LogTail != 50 {
		t.Errorf("expected log_tail 50, got %d", p.LogTail)
	}
	if len(p.Endpoints) != 1 || p.Endpoints[0].Note != "admin/admin" {
		t.Errorf("unexpected endpoints: %+v", p.Endpoints)
	}
	if got := p.Order(); got != "db -> business -> observability" {
		t.Errorf("Order() = %q", got)
	}
	if got := p.StepOf("grafana"); got != 2 {
		t.Errorf("StepOf(grafana) = %d, want 2", got)
	}
	if got := p.StepOf("missing"); got != -1 {
		t.Errorf("StepOf(missing) = %d, want -1", got)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yml     string
		wantErr error
	}{
		{name: "no name", yml: "steps: [{group: a, units: [x]}]", wantErr: ErrNoName},
		{name: "no steps", yml: "name: p\nsteps: []", wantErr: ErrNoSteps},
		{name: "duplicate unit", yml: "name: p\nsteps:\n  - {group: a, units: [x]}\n  - {group: b, units: [x]}", wantErr: ErrDuplicateUnit},
		{name: "missing group", yml: "name: p\nsteps: [{units: [x]}]"},
		{name: "missing units", yml: "name: p\nsteps: [{group: a}]"},
		{name: "blank unit", yml: "name: p\nsteps: [{group: a, units: ['  ']}]"},
		{name: "negative wait", yml: "name: p\nsteps: [{group: a, units: [x], wait: -5s}]"},
		{name: "negative tail", yml: "name: p\nlog_tail: -1\nsteps: [{group: a, units: [x]}]"},
		{name: "bad duration", yml: "name: p\nsteps: [{group: a, units: [x], wait: soon}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadEmbedded(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	credit, err := Load("credit")
	if err != nil {
		t.Fatalf("Load(credit): %v", err)
	}
	wantOrder := "db -> config -> eureka -> business -> gateway -> observability"
	if credit.Order() != wantOrder {
		t.Errorf("credit order = %q, want %q", credit.Order(), wantOrder)
	}
	waits := []time.Duration{15 * time.Second, 20 * time.Second, 25 * time.Second, 30 * time.Second, 15 * time.Second, 0}
	for i, w := range waits {
		if credit.Steps[i].Wait != w {
			t.Errorf("credit step %d wait = %v, want %v", i, credit.Steps[i].Wait, w)
		}
	}
	if credit.StepOf("microservice-auth") != -1 {
		t.Error("credit plan should not include the auth service")
	}

	auth, err := Load("credit-auth")
	if err != nil {
		t.Fatalf("Load(credit-auth): %v", err)
	}
	if auth.StepOf("postgres-auth") != 0 {
		t.Error("credit-auth should start postgres-auth with the database group")
	}
	if auth.StepOf("microservice-auth") != 3 {
		t.Error("credit-auth should start microservice-auth with the business group")
	}
}

func TestLoadUnknown(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	_, err := Load("does-not-exist")
	if !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	names, err := Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "credit" || names[1] != "credit-auth" {
		t.Errorf("Names() = %v", names)
	}
}
