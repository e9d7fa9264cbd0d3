package plan

import (
	"errors"
	"fmt"

	"github.com/coopcredit/devstack/internal/assets"
)

// Load resolves a plan by name from project/user overrides or the embedded
// defaults.
func Load(name string) (*Plan, error) {
	data, err := assets.LoadPlan(name)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, fmt.Errorf("%w: %q", ErrPlanNotFound, name)
		}
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading plan %q: %w", name, err)
	}
	return p, nil
}

// Names lists every plan name that Load can resolve.
func Names() ([]string, error) {
	return assets.PlanNames()
}
