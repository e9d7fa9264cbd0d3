// Package plan defines deployment plans: named, ordered lists of steps that
// bring a fixed application topology up one group at a time.
package plan

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/coopcredit/devstack/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoName        = errors.New("plan must have a name")
	ErrNoSteps       = errors.New("plan must have at least one step")
	ErrDuplicateUnit = errors.New("unit appears in more than one step")
	ErrPlanNotFound  = errors.New("plan not found")
)

// Plan represents a named deployment sequence.
type Plan struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	LogTail     int          `yaml:"log_tail,omitempty"`
	Steps       []types.Step `yaml:"steps"`
	Endpoints   []Endpoint   `yaml:"endpoints,omitempty"`
}

// Endpoint is an access URL printed once the plan completes.
type Endpoint struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
	Note  string `yaml:"note,omitempty"`
}

// Parse decodes and validates a plan from YAML bytes.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseFile reads and parses a plan YAML file.
func ParseFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file %s: %w", path, err)
	}
	return Parse(data)
}

// Validate checks the structural invariants of the plan.
func (p *Plan) Validate() error {
	if p.Name == "" {
		return ErrNoName
	}
	if len(p.Steps) == 0 {
		return fmt.Errorf("plan %q: %w", p.Name, ErrNoSteps)
	}
	if p.LogTail < 0 {
		return fmt.Errorf("plan %q: log_tail must not be negative", p.Name)
	}

	seen := make(map[string]string)
	for i, s := range p.Steps {
		if s.Group == "" {
			return fmt.Errorf("plan %q: step %d has no group", p.Name, i+1)
		}
		if len(s.Units) == 0 {
			return fmt.Errorf("plan %q: step %q has no units", p.Name, s.Group)
		}
		if s.Wait < 0 {
			return fmt.Errorf("plan %q: step %q has a negative wait", p.Name, s.Group)
		}
		for _, u := range s.Units {
			if strings.TrimSpace(u) == "" {
				return fmt.Errorf("plan %q: step %q has an empty unit name", p.Name, s.Group)
			}
			if prev, ok := seen[u]; ok {
				return fmt.Errorf("plan %q: %w: %q in %q and %q", p.Name, ErrDuplicateUnit, u, prev, s.Group)
			}
			seen[u] = s.Group
		}
	}
	return nil
}

// StepOf returns the index of the step that starts unit, or -1.
func (p *Plan) StepOf(unit string) int {
	for i, s := range p.Steps {
		for _, u := range s.Units {
			if u == unit {
				return i
			}
		}
	}
	return -1
}

// Order renders the stage order as "db -> config -> ...".
func (p *Plan) Order() string {
	groups := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		groups[i] = s.Group
	}
	return strings.Join(groups, " -> ")
}
