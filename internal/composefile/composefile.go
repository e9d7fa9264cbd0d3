// Package composefile reads the compose file a plan is deployed from and
// checks the plan against the services it declares.
package composefile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyInput  = errors.New("compose file is empty")
	ErrInvalidYAML = errors.New("invalid YAML syntax")
	ErrNoServices  = errors.New("compose file must define at least one service")
	ErrNotFound    = errors.New("no compose file found")
)

// ParseError wraps errors with context about where parsing failed.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DefaultNames are the file names docker-compose looks for, in order.
var DefaultNames = []string{
	"compose.yaml",
	"compose.yml",
	"docker-compose.yml",
	"docker-compose.yaml",
}

// Service is the part of a compose service the plan checks need.
type Service struct {
	Name           string
	DependsOn      []string
	HasHealthcheck bool
}

// File is a parsed compose file.
type File struct {
	Path     string
	Services map[string]Service
}

// Locate returns file joined to dir when set, otherwise the first default
// compose file found in dir.
func Locate(dir, file string) (string, error) {
	if file != "" {
		if filepath.IsAbs(file) {
			return file, nil
		}
		return filepath.Join(dir, file), nil
	}
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNotFound, dir)
}

// Load reads and parses the compose file at path.
func Load(ctx context.Context, path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading compose file: %w", err)
	}
	f, err := Parse(ctx, data)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}
	f.Path = path
	return f, nil
}

// Parse parses compose YAML without touching the filesystem.
func Parse(ctx context.Context, content []byte) (*File, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, &ParseError{Message: "compose file is empty", Err: ErrEmptyInput}
	}

	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil || dict == nil {
		return nil, &ParseError{Message: "invalid YAML syntax", Err: ErrInvalidYAML}
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("devstack", false)
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return nil, &ParseError{Message: err.Error(), Err: ErrInvalidYAML}
	}
	if len(project.Services) == 0 {
		return nil, &ParseError{Message: "no services defined", Err: ErrNoServices}
	}

	f := &File{Services: make(map[string]Service, len(project.Services))}
	for name, svc := range project.Services {
		s := Service{
			Name:           name,
			HasHealthcheck: svc.HealthCheck != nil && !svc.HealthCheck.Disable,
		}
		for dep := range svc.DependsOn {
			s.DependsOn = append(s.DependsOn, dep)
		}
		sort.Strings(s.DependsOn)
		f.Services[name] = s
	}
	return f, nil
}

// ServiceNames returns the declared service names, sorted.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for n := range f.Services {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
