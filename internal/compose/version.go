package compose

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MinVersion is the oldest collaborator release that reads compose-spec files.
const MinVersion = ">= 1.27.0"

// VersionArgs returns the arguments that print the bare collaborator version.
func VersionArgs() []string {
	return []string{"version", "--short"}
}

// ParseVersion parses `version --short` output such as "1.29.2" or "v2.24.5-desktop.1".
func ParseVersion(out string) (*semver.Version, error) {
	s := strings.TrimSpace(out)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", s, err)
	}
	return v, nil
}

// Supported reports whether v satisfies MinVersion.
func Supported(v *semver.Version) bool {
	c, err := semver.NewConstraint(MinVersion)
	if err != nil {
		return false
	}
	// Prerelease suffixes like -desktop.1 would otherwise fail the range check.
	core, _ := v.SetPrerelease("")
	return c.Check(&core)
}

// Version runs the collaborator's version command without any sudo prefix.
func Version(ctx context.Context, base []string) (*semver.Version, error) {
	argv := base
	if len(argv) > 1 && argv[0] == "sudo" {
		argv = argv[1:]
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty base command")
	}
	args := append(append([]string{}, argv[1:]...), VersionArgs()...)

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("running %s version: %w", argv[0], err)
	}
	return ParseVersion(stdout.String())
}
