// Package types holds shared data structures used across packages.
package types

import "time"

// Step is a single stage of a deployment plan: a group of units started
// together, followed by a wait before the next stage begins.
type Step struct {
	Group       string        `yaml:"group"`
	Description string        `yaml:"description"`
	Units       []string      `yaml:"units"`
	Wait        time.Duration `yaml:"wait,omitempty"`
}

// Label returns the text shown for the step in progress output.
func (s Step) Label() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Group
}
