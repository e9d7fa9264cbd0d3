package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. DEVSTACK_PLAN.
const EnvPrefix = "devstack"

// envOverrides are the settings that can be changed without editing a file.
// Unset variables leave the loaded value alone. Keys are always prefixed, so
// COMPOSE_FILE or DOCKER_HOST meant for other tools are not picked up.
type envOverrides struct {
	Plan        string `split_words:"true"`
	ComposeFile string `split_words:"true"`
	ProjectDir  string `split_words:"true"`
	Sudo        string `split_words:"true"`
	LogTail     *int   `split_words:"true"`
	Readiness   string `split_words:"true"`
	DockerHost  string `split_words:"true"`
	LogLevel    string `split_words:"true"`
}

// ApplyEnv layers DEVSTACK_* environment variables over cfg.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.Plan != "" {
		cfg.DefaultPlan = env.Plan
	}
	if env.ComposeFile != "" {
		cfg.Compose.File = env.ComposeFile
	}
	if env.ProjectDir != "" {
		cfg.Compose.ProjectDir = env.ProjectDir
	}
	if env.Sudo != "" {
		cfg.Compose.Sudo = env.Sudo
	}
	if env.LogTail != nil {
		cfg.Logs.Tail = *env.LogTail
	}
	if env.Readiness != "" {
		cfg.Readiness.Mode = env.Readiness
	}
	if env.DockerHost != "" {
		cfg.Readiness.Health.DockerHost = env.DockerHost
	}
	if env.LogLevel != "" {
		cfg.LogLevel = env.LogLevel
	}
	return nil
}
