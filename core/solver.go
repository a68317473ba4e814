// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"math"

	"github.com/pkg/errors"
)

// ErrNotInitialized is returned when Next is called on a solver
// whose Init has not completed.
var ErrNotInitialized = errors.New("solver not initialized")

// KV carries per-iteration diagnostics emitted by a solver.
type KV map[string]any

// Iteration is what a solver hands back to the executor after Init or Next.
type Iteration[P any] struct {
	Param   P       // New iterate.
	Cost    float64 // Cost at the new iterate.
	Grad    P       // Gradient at the new iterate, if HasGrad.
	HasGrad bool
	// Terminate is set by solvers that decide termination themselves,
	// e.g. a line search that satisfied its acceptance conditions.
	Terminate Status
	KV        KV
}

// State is the per-run state owned by the executor and shared with the solver.
// The iteration counter is read-only to solvers.
type State[P any] struct {
	Param    P
	Cost     float64
	PrevCost float64
	BestCost float64
	Grad     P
	HasGrad  bool
	HasCost  bool
	Iter     uint64
	Status   Status
}

func newState[P any](x0 P) *State[P] {
	return &State[P]{
		Param:    x0,
		Cost:     math.Inf(1),
		PrevCost: math.Inf(1),
		BestCost: math.Inf(1),
	}
}

// SetCost seeds the state with a known cost value, so the solver
// does not re-evaluate the oracle at the current iterate.
func (s *State[P]) SetCost(f float64) *State[P] {
	s.Cost = f
	s.HasCost = true
	return s
}

// SetGrad seeds the state with a known gradient.
func (s *State[P]) SetGrad(g P) *State[P] {
	s.Grad = g
	s.HasGrad = true
	return s
}

// apply folds an iteration result into the state.
func (s *State[P]) apply(it *Iteration[P]) {
	s.Param = it.Param
	s.PrevCost = s.Cost
	s.Cost = it.Cost
	s.HasCost = true
	if it.Cost < s.BestCost {
		s.BestCost = it.Cost
	}
	if it.HasGrad {
		s.Grad = it.Grad
		s.HasGrad = true
	}
	if it.Terminate.Terminated() {
		s.Status = it.Terminate
	}
}

// Solver advances an iterative minimization one step at a time.
//
// Init is called once with the initial state and must leave the solver ready
// for Next. Next advances a single iteration. Both report the new iterate
// through an Iteration; failures of the oracle or of a nested solver
// terminate the step and propagate unchanged to the caller.
type Solver[P Vector[P]] interface {
	Name() string
	Init(op *Wrapper[P], state *State[P]) (*Iteration[P], error)
	Next(op *Wrapper[P], state *State[P]) (*Iteration[P], error)
}

// LineSearcher is a solver performing one-dimensional minimization along a
// configurable search direction.
type LineSearcher[P Vector[P]] interface {
	Solver[P]
	SetSearchDirection(p P)
}

// Serializable is implemented by solvers whose internal state can be
// checkpointed and restored.
type Serializable interface {
	// SolverState returns a JSON-marshalable view of the solver state.
	SolverState() any
	// RestoreSolver rebuilds the solver state from marshaled data.
	RestoreSolver(data []byte) error
}
