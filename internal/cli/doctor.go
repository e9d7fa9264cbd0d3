package cli

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/coopcredit/devstack/internal/compose"
	"github.com/coopcredit/devstack/internal/composefile"
	"github.com/coopcredit/devstack/internal/config"
	"github.com/coopcredit/devstack/internal/plan"
	"github.com/coopcredit/devstack/internal/readiness"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check devstack prerequisites, plan and compose file",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

// doctor prints one line per check and remembers whether any failed.
type doctor struct {
	w     io.Writer
	allOK bool
}

func (d *doctor) check(label string, ok bool, hint string) bool {
	if ok {
		fmt.Fprintf(d.w, "✅ %s\n", label)
	} else {
		fmt.Fprintf(d.w, "❌ %s: %s\n", label, hint)
		d.allOK = false
	}
	return ok
}

func (d *doctor) warn(msg string) {
	fmt.Fprintf(d.w, "⚠️  %s\n", msg)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	d := &doctor{w: cmd.OutOrStdout(), allOK: true}
	ctx := cmd.Context()

	// 1. config
	cfg, cfgErr := loadConfig()
	d.check("config valid", cfgErr == nil, fmt.Sprintf("%v", cfgErr))
	if cfgErr != nil {
		cfg = config.Defaults()
	}

	// 2. collaborator binaries
	base := baseCommand(cfg)
	for _, bin := range uniqueBinaries(base) {
		_, err := exec.LookPath(bin)
		d.check(bin+" installed", err == nil, "install "+bin+" or set compose.command")
	}
	checkVersion(ctx, d, base)

	// 3. plan
	p, planErr := plan.Load(planName(cfg))
	if !d.check(fmt.Sprintf("plan %q valid", planName(cfg)), planErr == nil, fmt.Sprintf("%v", planErr)) {
		p = nil
	}

	// 4. compose file
	path, err := composefile.Locate(cfg.Compose.ProjectDir, cfg.Compose.File)
	if d.check("compose file found", err == nil, fmt.Sprintf("%v", err)) {
		f, err := composefile.Load(ctx, path)
		if d.check("compose file parses ("+path+")", err == nil, fmt.Sprintf("%v", err)) && p != nil {
			checkPlanAgainst(d, f, p)
		}
	}

	// 5. docker daemon, only needed for health polling
	if readiness.Mode(cfg.Readiness.Mode) == readiness.ModeHealth {
		checkDaemon(ctx, d, cfg)
	}

	fmt.Fprintln(d.w)
	if d.allOK {
		fmt.Fprintln(d.w, "All checks passed. devstack is ready.")
	} else {
		fmt.Fprintln(d.w, "Some checks failed. Fix the issues above before running devstack.")
	}
	return nil
}

func checkPlanAgainst(d *doctor, f *composefile.File, p *plan.Plan) {
	r := composefile.Check(f, p)
	d.check("all plan units defined in compose file", r.OK(), fmt.Sprintf("missing: %v", r.MissingUnits))
	for _, w := range r.OrderWarnings {
		d.warn(w)
	}
	if len(r.Unplanned) > 0 {
		d.warn(fmt.Sprintf("services not started by plan %q: %v", p.Name, r.Unplanned))
	}
}

func checkVersion(ctx context.Context, d *doctor, base []string) {
	vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	v, err := compose.Version(vctx, base)
	if !d.check("collaborator version readable", err == nil, fmt.Sprintf("%v", err)) {
		return
	}
	d.check(fmt.Sprintf("collaborator version %s supported", v), compose.Supported(v), "need "+compose.MinVersion)
}

func checkDaemon(ctx context.Context, d *doctor, cfg *config.Config) {
	insp, err := readiness.NewDockerInspector(cfg.Readiness.Health.DockerHost, cfg.Readiness.Health.Project)
	if !d.check("docker client configured", err == nil, fmt.Sprintf("%v", err)) {
		return
	}
	defer insp.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = insp.Ping(pingCtx)
	d.check("docker daemon reachable", err == nil, fmt.Sprintf("%v (check DOCKER_HOST or permissions)", err))
}

// uniqueBinaries returns the executables in argv worth looking up: sudo and
// the compose command itself, skipping plugin subcommands like "compose".
func uniqueBinaries(argv []string) []string {
	if len(argv) == 0 {
		return nil
	}
	bins := []string{argv[0]}
	if argv[0] == "sudo" && len(argv) > 1 {
		bins = append(bins, argv[1])
	}
	return bins
}
