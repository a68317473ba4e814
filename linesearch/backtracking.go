// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"math"

	"github.com/pkg/errors"

	"github.com/curioloop/nlcg/core"
)

// Backtracking is an Armijo-type line search: starting from the initial
// step it contracts by ρ until the sufficient decrease condition holds,
// optionally also requiring the strong Wolfe curvature condition.
type Backtracking[P core.Vector[P]] struct {
	// SufficientDecrease is the constant ɑ of the decrease condition.
	SufficientDecrease float64
	// Curvature enables the curvature check when positive.
	Curvature float64
	// Contraction is the backtracking factor ρ ∈ (0, 1).
	Contraction float64
	// InitStep is the first trial step.
	InitStep float64
	// MaxEvals limits the evaluations of a single search.
	MaxEvals int

	dir    P
	hasDir bool
	x0     P
	f0     float64
	dg0    float64
	stp    float64
	evals  int
	ready  bool
}

// NewBacktracking creates a search with ɑ = 10⁻⁴, ρ = 0.9 and unit
// initial step. The curvature check is disabled.
func NewBacktracking[P core.Vector[P]]() *Backtracking[P] {
	return &Backtracking[P]{
		SufficientDecrease: defaultDecrease,
		Contraction:        0.9,
		InitStep:           1.0,
		MaxEvals:           100,
	}
}

func (ls *Backtracking[P]) Name() string {
	return "Backtracking line search"
}

// SetSearchDirection configures the direction for the next run.
func (ls *Backtracking[P]) SetSearchDirection(p P) {
	ls.dir = p
	ls.hasDir = true
}

func (ls *Backtracking[P]) Init(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	if !ls.hasDir {
		return nil, ErrNoDirection
	}
	if ls.Contraction <= 0 || ls.Contraction >= 1 {
		return nil, errors.WithMessage(ErrSearchFailed, "contraction factor out of (0,1)")
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

	dg0 := g.Dot(ls.dir)
	if dg0 >= 0 {
		return nil, ErrNotDescent
	}

	ls.x0 = x0
	ls.f0 = f0
	ls.dg0 = dg0
	ls.stp = ls.InitStep
	ls.evals = 0
	ls.ready = true

	return &core.Iteration[P]{Param: x0, Cost: f0, Grad: g, HasGrad: true}, nil
}

func (ls *Backtracking[P]) Next(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	if !ls.ready {
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

	accept := f <= ls.f0+ls.SufficientDecrease*ls.stp*ls.dg0
	it := &core.Iteration[P]{Param: xt, Cost: f, KV: core.KV{"step": ls.stp}}

	if accept {
		g, err := op.Gradient(xt)
		if err != nil {
			return nil, err
		}
		if ls.Curvature > 0 && math.Abs(g.Dot(ls.dir)) > ls.Curvature*math.Abs(ls.dg0) {
			accept = false
		}
		it.Grad, it.HasGrad = g, true
	}

	if accept {
		it.Terminate = core.LineSearchConverged
	} else {
		ls.stp *= ls.Contraction
	}
	return it, nil
}
