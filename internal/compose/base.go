package compose

import "runtime"

// DefaultCommand is the collaborator binary used when none is configured.
const DefaultCommand = "docker-compose"

// Platform is the operating-system family the process runs on.
type Platform int

const (
	PlatformUnix Platform = iota
	PlatformWindows
)

// CurrentPlatform returns the platform family of the running binary.
func CurrentPlatform() Platform {
	return PlatformFor(runtime.GOOS)
}

// PlatformFor maps a GOOS value to its platform family.
func PlatformFor(goos string) Platform {
	if goos == "windows" {
		return PlatformWindows
	}
	return PlatformUnix
}

// SudoMode controls the privilege-elevation prefix.
type SudoMode string

const (
	SudoAuto   SudoMode = "auto"
	SudoAlways SudoMode = "always"
	SudoNever  SudoMode = "never"
)

// ResolveBaseCommand returns the token sequence every invocation starts with.
// Windows never elevates; elsewhere an unprivileged process is prefixed
// with sudo.
func ResolveBaseCommand(privileged bool, platform Platform) []string {
	return ResolveBaseCommandWith([]string{DefaultCommand}, SudoAuto, privileged, platform)
}

// ResolveBaseCommandWith is ResolveBaseCommand with a configured command and
// sudo policy. An empty command falls back to DefaultCommand.
func ResolveBaseCommandWith(command []string, mode SudoMode, privileged bool, platform Platform) []string {
	if len(command) == 0 {
		command = []string{DefaultCommand}
	}
	base := append([]string(nil), command...)

	if platform == PlatformWindows {
		return base
	}
	switch mode {
	case SudoNever:
		return base
	case SudoAlways:
		return append([]string{"sudo"}, base...)
	}
	if privileged {
		return base
	}
	return append([]string{"sudo"}, base...)
}
