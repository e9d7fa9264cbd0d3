package composefile

import (
	"fmt"

	"github.com/coopcredit/devstack/internal/plan"
)

// Report lists the ways a plan disagrees with a compose file.
type Report struct {
	// MissingUnits are plan units with no matching service.
	MissingUnits []string
	// OrderWarnings describe units that depend on a unit the plan starts in
	// a later step.
	OrderWarnings []string
	// Unplanned are services the plan never starts.
	Unplanned []string
}

// OK reports whether every plan unit exists. Order warnings do not count:
// the plan encodes a hand-tuned order and the runtime starts missing
// dependencies itself.
func (r Report) OK() bool {
	return len(r.MissingUnits) == 0
}

// Check compares p against f.
func Check(f *File, p *plan.Plan) Report {
	var r Report
	for i, step := range p.Steps {
		for _, unit := range step.Units {
			svc, ok := f.Services[unit]
			if !ok {
				r.MissingUnits = append(r.MissingUnits, unit)
				continue
			}
			for _, dep := range svc.DependsOn {
				if j := p.StepOf(dep); j > i {
					r.OrderWarnings = append(r.OrderWarnings, fmt.Sprintf(
						"%s (step %q) depends on %s, which starts later in step %q",
						unit, step.Group, dep, p.Steps[j].Group))
				}
			}
		}
	}
	for _, name := range f.ServiceNames() {
		if p.StepOf(name) < 0 {
			r.Unplanned = append(r.Unplanned, name)
		}
	}
	return r
}
