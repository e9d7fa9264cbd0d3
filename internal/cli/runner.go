package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/coopcredit/devstack/internal/compose"
	"github.com/coopcredit/devstack/internal/config"
	vlog "github.com/coopcredit/devstack/internal/log"
	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/readiness"
	"github.com/coopcredit/devstack/internal/sequencer"
)

// app is the wiring shared by the menu and the subcommands.
type app struct {
	cfg    *config.Config
	plan   *plan.Plan
	engine *sequencer.Engine
	tail   int

	closers []func() error
}

// Close releases the log file and any daemon client.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			vlog.Debug("close failed", "err", err)
		}
	}
}

// setup is the shared entry point for the menu and the up/down/logs commands.
func setup() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	// Init logging
	level := cfg.LogLevel
	if flagVerbose {
		level = "debug"
	}
	logFile := openLogFile()
	vlog.Init(level, logFile)
	if logFile != nil {
		a.closers = append(a.closers, logFile.Close)
	}

	p, err := plan.Load(planName(cfg))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.plan = p

	a.tail = cfg.Logs.Tail
	if p.LogTail > 0 {
		a.tail = p.LogTail
	}

	base := baseCommand(cfg)
	vlog.Debug("resolved base command", "argv", base, "plan", p.Name)
	runner := compose.NewExecRunner(base, cfg.Compose.File, cfg.Compose.ProjectDir)

	waiter, err := buildWaiter(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = &sequencer.Engine{
		Runner:  runner,
		Waiter:  waiter,
		Display: sequencer.NewDisplay(),
	}
	return a, nil
}

// loadConfig loads the config files, then DEVSTACK_* variables, then flags.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.LoadFile(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if flagReadiness != "" {
		cfg.Readiness.Mode = flagReadiness
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func planName(cfg *config.Config) string {
	if flagPlan != "" {
		return flagPlan
	}
	return cfg.DefaultPlan
}

// baseCommand resolves the collaborator prefix once for this process.
func baseCommand(cfg *config.Config) []string {
	return compose.ResolveBaseCommandWith(
		cfg.Compose.Command,
		compose.SudoMode(cfg.Compose.Sudo),
		os.Geteuid() == 0,
		compose.CurrentPlatform(),
	)
}

func buildWaiter(cfg *config.Config, a *app) (readiness.Waiter, error) {
	delay := readiness.NewDelayWaiter()
	if readiness.Mode(cfg.Readiness.Mode) != readiness.ModeHealth {
		return delay, nil
	}

	interval, _ := cfg.HealthInterval()
	timeout, _ := cfg.HealthTimeout()
	insp, err := readiness.NewDockerInspector(cfg.Readiness.Health.DockerHost, cfg.Readiness.Health.Project)
	if err != nil {
		return nil, fmt.Errorf("health readiness: %w", err)
	}
	a.closers = append(a.closers, insp.Close)

	return &readiness.HealthWaiter{
		Inspector: insp,
		Interval:  interval,
		Timeout:   timeout,
		Fallback:  delay,
	}, nil
}

func openLogFile() *os.File {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(config.Dir, "devstack.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return f
}
