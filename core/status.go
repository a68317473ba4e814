// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// Status describes why an execution stopped.
type Status int

const (
	// NotTerminated means the execution may continue.
	NotTerminated Status = iota
	// MaxItersReached means the iteration limit was hit.
	MaxItersReached
	// TargetCostReached means the cost dropped to the configured target.
	TargetCostReached
	// GradToleranceReached means ‖∇𝒇‖₂ fell below the configured tolerance.
	GradToleranceReached
	// LineSearchConverged means a nested line search satisfied its
	// acceptance conditions.
	LineSearchConverged
	// Aborted means the run was interrupted (Ctrl-C).
	Aborted
)

// Terminated reports whether the status stops the execution.
func (s Status) Terminated() bool {
	return s != NotTerminated
}

func (s Status) String() string {
	switch s {
	case NotTerminated:
		return "NOT_TERMINATED"
	case MaxItersReached:
		return "MAX_ITERATIONS_REACHED"
	case TargetCostReached:
		return "TARGET_COST_REACHED"
	case GradToleranceReached:
		return "GRADIENT_TOLERANCE_REACHED"
	case LineSearchConverged:
		return "LINE_SEARCH_CONVERGED"
	case Aborted:
		return "ABORTED"
	}
	return "UNKNOWN"
}
