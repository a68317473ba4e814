// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linesearch provides one-dimensional sub-solvers locating an
// acceptable step length along a given search direction.
package linesearch

import (
	"math"

	"github.com/pkg/errors"

	"github.com/curioloop/nlcg/core"
)

var (
	// ErrNoDirection is returned when a search starts before a
	// direction has been configured.
	ErrNoDirection = errors.New("search direction not set")
	// ErrNotDescent is returned when the directional derivative at the
	// starting point is nonnegative, making the search impossible.
	ErrNotDescent = errors.New("directional derivative is nonnegative")
	// ErrSearchFailed is returned when no acceptable step can be located.
	ErrSearchFailed = errors.New("no acceptable step found")
)

const (
	defaultDecrease  = 1.0e-4
	defaultCurvature = 0.9
	defaultStepTol   = 1.0e-10
	defaultMaxStep   = 1.0e10
	defaultMaxEvals  = 50
)

// MoreThuente is a strong-Wolfe line search. Given a descent direction 𝐩
// it locates a step λ so that 𝐱′ = 𝐱 + λ𝐩 satisfies
//   - sufficient decrease: 𝒇(𝐱′) ≤ 𝒇(𝐱) + ɑ·λ·⟨∇𝒇(𝐱), 𝐩⟩
//   - curvature: |⟨∇𝒇(𝐱′), 𝐩⟩| ≤ β·|⟨∇𝒇(𝐱), 𝐩⟩|
//
// Each Next call costs one function and one gradient evaluation. When the
// bracket degenerates before both conditions hold, the best step satisfying
// the sufficient decrease is accepted with a warning diagnostic.
type MoreThuente[P core.Vector[P]] struct {
	// SufficientDecrease is the constant ɑ of the decrease condition.
	SufficientDecrease float64
	// Curvature is the constant β of the curvature condition.
	Curvature float64
	// StepTolerance is the relative width tolerance of the step bracket.
	StepTolerance float64
	// MinStep and MaxStep bound the trial steps.
	MinStep, MaxStep float64
	// InitStep is the first trial step.
	InitStep float64
	// MaxEvals limits the evaluations of a single search.
	MaxEvals int

	dir    P
	hasDir bool
	x0     P
	stp    float64
	task   scalarTask
	tol    scalarTol
	ctx    scalarCtx
	evals  int
}

// NewMoreThuente creates a search with the customary tolerances
// ɑ = 10⁻⁴, β = 0.9 and unit initial step.
func NewMoreThuente[P core.Vector[P]]() *MoreThuente[P] {
	return &MoreThuente[P]{
		SufficientDecrease: defaultDecrease,
		Curvature:          defaultCurvature,
		StepTolerance:      defaultStepTol,
		MaxStep:            defaultMaxStep,
		InitStep:           1.0,
		MaxEvals:           defaultMaxEvals,
	}
}

func (ls *MoreThuente[P]) Name() string {
	return "More-Thuente line search"
}

// SetSearchDirection configures the direction for the next run.
func (ls *MoreThuente[P]) SetSearchDirection(p P) {
	ls.dir = p
	ls.hasDir = true
}

// Init evaluates φ(0) = 𝒇(𝐱) and φ′(0) = ⟨∇𝒇(𝐱), 𝐩⟩, reusing values cached
// in the state, and primes the scalar search.
func (ls *MoreThuente[P]) Init(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	if !ls.hasDir {
		return nil, ErrNoDirection
	}

	x0 := st.Param
	f0 := st.Cost
	if !st.HasCost {
		var err error
		if f0, err = op.Cost(x0); err != nil {
			return nil, err
		}
	}
	g := st.Grad
	if !st.HasGrad {
		var err error
		if g, err = op.Gradient(x0); err != nil {
			return nil, err
		}
	}

	ls.x0 = x0
	ls.evals = 0
	ls.ctx = scalarCtx{}
	ls.tol = scalarTol{
		decrease:  ls.SufficientDecrease,
		curvature: ls.Curvature,
		stepTol:   ls.StepTolerance,
		minStep:   ls.MinStep,
		maxStep:   ls.MaxStep,
	}

	stp := math.Min(math.Max(ls.InitStep, ls.MinStep), ls.MaxStep)
	ls.stp, ls.task = scalarSearch(f0, g.Dot(ls.dir), stp, taskStart, &ls.tol, &ls.ctx)
	if ls.task&taskError > 0 {
		if ls.task == errNotDescentDir {
			return nil, ErrNotDescent
		}
		return nil, errors.WithMessage(ErrSearchFailed, ls.task.describe())
	}

	return &core.Iteration[P]{Param: x0, Cost: f0, Grad: g, HasGrad: true}, nil
}

// Next evaluates the oracle at the current trial step and feeds the values
// back into the scalar search.
func (ls *MoreThuente[P]) Next(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	if ls.task != taskEval {
		return nil, core.ErrNotInitialized
	}
	if ls.evals++; ls.MaxEvals > 0 && ls.evals > ls.MaxEvals {
		return nil, errors.WithMessage(ErrSearchFailed, "evaluation limit reached")
	}

	xt := ls.x0.Add(ls.dir.Scale(ls.stp))
	f, err := op.Cost(xt)
	if err != nil {
		return nil, err
	}
	g, err := op.Gradient(xt)
	if err != nil {
		return nil, err
	}

	ls.stp, ls.task = scalarSearch(f, g.Dot(ls.dir), ls.stp, ls.task, &ls.tol, &ls.ctx)

	it := &core.Iteration[P]{
		Param: xt, Cost: f, Grad: g, HasGrad: true,
		KV: core.KV{"step": ls.stp},
	}
	switch {
	case ls.task&taskConv > 0:
		it.Terminate = core.LineSearchConverged
	case ls.task&taskWarn > 0:
		// The step satisfies at least the sufficient decrease condition.
		it.Terminate = core.LineSearchConverged
		it.KV["warning"] = ls.task.describe()
	case ls.task&taskError > 0:
		return nil, errors.WithMessage(ErrSearchFailed, ls.task.describe())
	}
	return it, nil
}
