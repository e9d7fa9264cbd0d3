// Package assets provides the embedded deployment plan definitions.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed plans/*.yaml
var plansFS embed.FS

// ErrNotFound reports an asset missing from every lookup location.
var ErrNotFound = errors.New("asset not found")

// configDir is the directory name used for project and user overrides.
const configDir = ".devstack"

// LoadPlan returns the content of a plan YAML by name.
// Override lookup order: project .devstack/plans/ > user ~/.devstack/plans/ > embedded.
func LoadPlan(name string) ([]byte, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid plan name %q", name)
	}
	return loadWithOverride("plans", name+".yaml", plansFS)
}

// PlanNames returns the sorted, de-duplicated names of all resolvable plans.
func PlanNames() ([]string, error) {
	set := map[string]struct{}{}

	entries, err := fs.ReadDir(plansFS, "plans")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		addYAMLName(set, e)
	}
	for _, dir := range overrideDirs("plans") {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			addYAMLName(set, e)
		}
	}

	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func addYAMLName(set map[string]struct{}, e fs.DirEntry) {
	if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
		return
	}
	set[strings.TrimSuffix(e.Name(), ".yaml")] = struct{}{}
}

// overrideDirs returns the project and user override directories, highest
// priority first.
func overrideDirs(dir string) []string {
	dirs := []string{filepath.Join(configDir, dir)}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, configDir, dir))
	}
	return dirs
}

func loadWithOverride(dir, filename string, embedded embed.FS) ([]byte, error) {
	for _, d := range overrideDirs(dir) {
		if data, err := os.ReadFile(filepath.Join(d, filename)); err == nil {
			return data, nil
		}
	}

	// embed.FS paths always use forward slashes.
	data, err := embedded.ReadFile(path.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", dir, filename, ErrNotFound)
	}
	return data, nil
}
