package readiness

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// Labels docker-compose sets on every container it creates.
const (
	labelService = "com.docker.compose.service"
	labelProject = "com.docker.compose.project"
)

// DockerInspector reads unit health from the Docker Engine API, finding a
// unit's container by its compose service label.
type DockerInspector struct {
	cli     *client.Client
	project string
}

// NewDockerInspector connects to host, or to the environment's default
// daemon when host is empty. project narrows lookups to one compose project.
func NewDockerInspector(host, project string) (*DockerInspector, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating docker client: %w", err)
	}
	return &DockerInspector{cli: cli, project: project}, nil
}

// Ping checks that the daemon is reachable.
func (d *DockerInspector) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return fmt.Errorf("pinging docker: %w", err)
	}
	return nil
}

// Close releases the client's transport.
func (d *DockerInspector) Close() error {
	return d.cli.Close()
}

func (d *DockerInspector) UnitHealth(ctx context.Context, unit string) (Health, error) {
	f := filters.NewArgs(filters.Arg("label", labelService+"="+unit))
	if d.project != "" {
		f.Add("label", labelProject+"="+d.project)
	}

	containers, err := d.cli.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return HealthUnknown, fmt.Errorf("listing containers: %w", err)
	}
	if len(containers) == 0 {
		return HealthUnknown, nil
	}

	// A scaled unit is ready when its worst replica is.
	worst := HealthHealthy
	for _, c := range containers {
		resp, err := d.cli.ContainerInspect(ctx, c.ID)
		if err != nil {
			if client.IsErrNotFound(err) {
				return HealthUnknown, nil
			}
			return HealthUnknown, fmt.Errorf("inspecting container %s: %w", c.ID, err)
		}
		if resp.State == nil {
			return HealthUnknown, nil
		}
		var health string
		if resp.State.Health != nil {
			health = string(resp.State.Health.Status)
		}
		h := classify(resp.State.Running, health)
		if rank(h) < rank(worst) {
			worst = h
		}
	}
	return worst, nil
}

// classify maps a container's running flag and health status to a Health.
func classify(running bool, health string) Health {
	if !running {
		return HealthExited
	}
	switch health {
	case "":
		return HealthNone
	case "healthy":
		return HealthHealthy
	case "unhealthy":
		return HealthUnhealthy
	default:
		return HealthStarting
	}
}

// rank orders Health from worst to best for aggregating replicas.
func rank(h Health) int {
	switch h {
	case HealthUnhealthy:
		return 0
	case HealthExited:
		return 1
	case HealthUnknown:
		return 2
	case HealthStarting:
		return 3
	case HealthNone:
		return 4
	default:
		return 5
	}
}
