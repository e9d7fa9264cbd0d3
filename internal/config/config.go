package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coopcredit/devstack/internal/compose"
	"github.com/coopcredit/devstack/internal/readiness"
	"gopkg.in/yaml.v3"
)

// Dir is the project and user configuration directory name.
const Dir = ".devstack"

// Config is the top-level configuration structure.
type Config struct {
	DefaultPlan string          `yaml:"default_plan"`
	Compose     ComposeConfig   `yaml:"compose"`
	Logs        LogsConfig      `yaml:"logs"`
	Readiness   ReadinessConfig `yaml:"readiness"`
	LogLevel    string          `yaml:"log_level"`
}

type ComposeConfig struct {
	// Command replaces the docker-compose token, e.g. [docker, compose].
	Command    []string `yaml:"command"`
	File       string   `yaml:"file"`
	ProjectDir string   `yaml:"project_dir"`
	Sudo       string   `yaml:"sudo"`
}

type LogsConfig struct {
	Tail int `yaml:"tail"`
}

type ReadinessConfig struct {
	Mode   string       `yaml:"mode"`
	Health HealthConfig `yaml:"health"`
}

type HealthConfig struct {
	Interval   string `yaml:"interval"`
	Timeout    string `yaml:"timeout"`
	DockerHost string `yaml:"docker_host"`
	Project    string `yaml:"project"`
}

// Validate checks that required fields are present and well formed.
func (c *Config) Validate() error {
	if c.DefaultPlan == "" {
		return fmt.Errorf("default_plan is required")
	}
	if len(c.Compose.Command) == 0 || strings.TrimSpace(c.Compose.Command[0]) == "" {
		return fmt.Errorf("compose.command is required")
	}
	switch compose.SudoMode(c.Compose.Sudo) {
	case compose.SudoAuto, compose.SudoAlways, compose.SudoNever:
	default:
		return fmt.Errorf("compose.sudo must be auto, always or never, got %q", c.Compose.Sudo)
	}
	if c.Logs.Tail <= 0 {
		return fmt.Errorf("logs.tail must be positive, got %d", c.Logs.Tail)
	}
	if !readiness.Mode(c.Readiness.Mode).Valid() {
		return fmt.Errorf("readiness.mode must be delay or health, got %q", c.Readiness.Mode)
	}
	if d, err := c.HealthInterval(); err != nil || d <= 0 {
		return fmt.Errorf("readiness.health.interval must be a positive duration, got %q", c.Readiness.Health.Interval)
	}
	if d, err := c.HealthTimeout(); err != nil || d <= 0 {
		return fmt.Errorf("readiness.health.timeout must be a positive duration, got %q", c.Readiness.Health.Timeout)
	}
	return nil
}

// HealthInterval parses readiness.health.interval.
func (c *Config) HealthInterval() (time.Duration, error) {
	return time.ParseDuration(c.Readiness.Health.Interval)
}

// HealthTimeout parses readiness.health.timeout.
func (c *Config) HealthTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Readiness.Health.Timeout)
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, Dir, "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(Dir, "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

// LoadFile merges a single explicit config file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if err := mergeFile(cfg, path); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Unknown keys are errors so a misspelled setting does not silently
	// fall back to its default.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		DefaultPlan: "credit",
		Compose: ComposeConfig{
			Command:    []string{compose.DefaultCommand},
			ProjectDir: ".",
			Sudo:       string(compose.SudoAuto),
		},
		Logs: LogsConfig{
			Tail: 100,
		},
		Readiness: ReadinessConfig{
			Mode: string(readiness.ModeDelay),
			Health: HealthConfig{
				Interval: "2s",
				Timeout:  "3m",
			},
		},
		LogLevel: "info",
	}
}

// DefaultYAML is the commented config written by `devstack init`.
const DefaultYAML = `# devstack configuration
default_plan: credit

compose:
  # Base command; use [docker, compose] for the compose plugin.
  command: [docker-compose]
  # file: docker-compose.yml
  project_dir: .
  # auto prefixes sudo when not running as root (never on Windows).
  sudo: auto

logs:
  tail: 100

readiness:
  # delay waits a fixed time after each step; health polls container
  # healthchecks and falls back to the fixed delay.
  mode: delay
  health:
    interval: 2s
    timeout: 3m
    # docker_host: unix:///var/run/docker.sock
    # project: coopcredit

log_level: info
`
