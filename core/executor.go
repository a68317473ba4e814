// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"math"
	"os"
	"os/signal"

	"github.com/pkg/errors"
)

// Executor drives a solver on a problem until a stopping criterion fires.
//
// It owns the evaluation-counting wrapper and the iteration state, feeds
// diagnostics to the registered observers, and optionally checkpoints the
// run. Execution is single-threaded: each call to Run drives Init and then
// Next to completion on the caller's goroutine.
type Executor[P Vector[P]] struct {
	solver  Solver[P]
	wrapper *Wrapper[P]
	state   *State[P]

	maxIters   uint64
	gradTol    float64
	targetCost float64
	ctrlc      bool

	observers  []boundObserver[P]
	check      Checkpointer
	checkEvery uint64

	initialized bool
}

type boundObserver[P Vector[P]] struct {
	observer Observer[P]
	mode     ObserveMode
}

// Result contains the final outcome of a run.
type Result[P any] struct {
	Param  P
	Cost   float64
	Grad   P
	Status Status
	Summary
}

// Summary contains the accounting of a run.
type Summary struct {
	Iters     uint64 // Number of iterations performed.
	CostEvals int    // Number of cost evaluations, nested runs included.
	GradEvals int    // Number of gradient evaluations, nested runs included.
}

// NewExecutor creates an executor for the given problem, solver and
// initial iterate. By default there is no iteration limit, no cost or
// gradient criterion, and Ctrl-C handling is enabled.
func NewExecutor[P Vector[P]](problem Problem[P], solver Solver[P], x0 P) *Executor[P] {
	return &Executor[P]{
		solver:     solver,
		wrapper:    Wrap(problem),
		state:      newState(x0),
		targetCost: math.Inf(-1),
		ctrlc:      true,
	}
}

// Configure exposes the initial state, letting the caller seed a cached
// cost or gradient before the run starts.
func (e *Executor[P]) Configure(f func(*State[P])) *Executor[P] {
	f(e.state)
	return e
}

// MaxIters limits the number of iterations. Zero means no limit.
func (e *Executor[P]) MaxIters(n uint64) *Executor[P] {
	e.maxIters = n
	return e
}

// GradTolerance stops the run once ‖∇𝒇‖₂ ≤ tol. Zero disables the criterion.
func (e *Executor[P]) GradTolerance(tol float64) *Executor[P] {
	e.gradTol = tol
	return e
}

// TargetCost stops the run once the cost drops to the target.
func (e *Executor[P]) TargetCost(target float64) *Executor[P] {
	e.targetCost = target
	return e
}

// CtrlC toggles interrupt handling. Nested runs must disable it so the
// enclosing executor retains sole control of cancellation.
func (e *Executor[P]) CtrlC(enable bool) *Executor[P] {
	e.ctrlc = enable
	return e
}

// Observe registers an observer with the given mode.
func (e *Executor[P]) Observe(obs Observer[P], mode ObserveMode) *Executor[P] {
	e.observers = append(e.observers, boundObserver[P]{obs, mode})
	return e
}

// Checkpoint saves the run state every n iterations.
func (e *Executor[P]) Checkpoint(ck Checkpointer, every uint64) *Executor[P] {
	e.check = ck
	e.checkEvery = every
	return e
}

// Wrapper exposes the evaluation-counting wrapper, so a caller driving a
// nested run can merge its counts back.
func (e *Executor[P]) Wrapper() *Wrapper[P] {
	return e.wrapper
}

// State exposes the iteration state.
func (e *Executor[P]) State() *State[P] {
	return e.state
}

// Run drives the solver until termination and reports the final result.
// Solver and oracle failures abort the run and propagate unchanged.
func (e *Executor[P]) Run() (*Result[P], error) {

	var interrupt chan os.Signal
	if e.ctrlc {
		interrupt = make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		defer signal.Stop(interrupt)
	}

	st := e.state
	if !e.initialized {
		it, err := e.solver.Init(e.wrapper, st)
		if err != nil {
			return nil, errors.WithMessage(err, e.solver.Name()+" init")
		}
		if it != nil {
			st.apply(it)
		}
		e.initialized = true
		for _, o := range e.observers {
			o.observer.ObserveInit(e.solver.Name(), st)
		}
	}

	for !st.Status.Terminated() {

		if interrupt != nil {
			select {
			case <-interrupt:
				st.Status = Aborted
			default:
			}
		}

		switch {
		case st.Status.Terminated():
		case e.maxIters > 0 && st.Iter >= e.maxIters:
			st.Status = MaxItersReached
		case st.HasCost && st.Cost <= e.targetCost:
			st.Status = TargetCostReached
		case e.gradTol > 0 && st.HasGrad && st.Grad.Norm() <= e.gradTol:
			st.Status = GradToleranceReached
		}
		if st.Status.Terminated() {
			break
		}

		st.Iter++
		it, err := e.solver.Next(e.wrapper, st)
		if err != nil {
			return nil, errors.WithMessage(err, e.solver.Name())
		}
		st.apply(it)

		for _, o := range e.observers {
			if o.mode.observe(st.Iter) {
				o.observer.ObserveIter(st, it.KV)
			}
		}

		if e.check != nil && e.checkEvery > 0 && st.Iter%e.checkEvery == 0 {
			if err := e.save(); err != nil {
				return nil, errors.WithMessage(err, "checkpoint")
			}
		}
	}

	return &Result[P]{
		Param:  st.Param,
		Cost:   st.Cost,
		Grad:   st.Grad,
		Status: st.Status,
		Summary: Summary{
			Iters:     st.Iter,
			CostEvals: e.wrapper.CostEvals,
			GradEvals: e.wrapper.GradEvals,
		},
	}, nil
}
