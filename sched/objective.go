package sched

import (
	"fmt"
)

// ApplyObjective attaches the objective selected by obj to a built
// instance. Linearization weighs latency by alpha and memory by 1-alpha.
// The feasibility objective adds no term and is only accepted when both
// bounds are fixed.
func ApplyObjective(inst *Instance, obj Objective, alpha float64) error {
	obj, err := ParseObjective(string(obj))
	if err != nil {
		return err
	}
	switch obj {
	case ObjectiveMemory:
		inst.Model.Minimize(inst.M)
	case ObjectiveLatency:
		inst.Model.Minimize(inst.L)
	case ObjectiveLinearization:
		if err := validateAlpha(alpha); err != nil {
			return err
		}
		inst.Model.Minimize(inst.L.Scale(alpha).Add(inst.M.Scale(1 - alpha)))
	case ObjectiveFeasibility:
		if !inst.MemoryFixed || !inst.LatencyFixed {
			return fmt.Errorf("%w: feasibility objective requires both latency and memory bounds", ErrInvalidConfig)
		}
	}
	return nil
}
