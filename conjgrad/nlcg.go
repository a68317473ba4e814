// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conjgrad implements the nonlinear conjugate gradient method for
// smooth unconstrained minimization.
//
// # Reference:
//
//   - Jorge Nocedal and Stephen J. Wright (2006). Numerical Optimization.
//     Springer. ISBN 0-387-30303-0.
package conjgrad

import (
	"math"

	"github.com/pkg/errors"

	"github.com/curioloop/nlcg/core"
)

// NLCG generalizes the conjugate gradient method to nonlinear objectives.
// Each step minimizes along the current direction 𝐩 with the configured
// line search, then blends the new negative gradient with 𝐩:
//
//	𝐩 ← −gₖ₊₁ + β·𝐩
//
// β is produced by the configured rule, or reset to zero when a restart
// fires. The iterate is never mutated in place: the new point, cost and
// gradient are returned through the iteration result.
type NLCG[P core.Vector[P]] struct {
	dir    P
	hasDir bool
	beta   float64

	search core.LineSearcher[P]
	rule   BetaRule[P]

	restartIter  uint64
	restartOrtho float64
}

// New creates a solver from a line search and a β rule, with restarts
// disabled and β undefined until the first completed step.
func New[P core.Vector[P]](search core.LineSearcher[P], rule BetaRule[P]) *NLCG[P] {
	return &NLCG[P]{
		beta:        math.NaN(),
		search:      search,
		rule:        rule,
		restartIter: math.MaxUint64,
	}
}

// RestartIters restarts the method every n iterations, discarding the
// accumulated direction. Zero disables the restart.
func (s *NLCG[P]) RestartIters(n uint64) *NLCG[P] {
	if n == 0 {
		n = math.MaxUint64
	}
	s.restartIter = n
	return s
}

// RestartOrthogonality restarts the method once two consecutive gradients
// are insufficiently orthogonal, that is when
//
//	|⟨gₖ₊₁, gₖ⟩| / ‖gₖ₊₁‖² ≥ ν
//
// A typical value for ν is 0.1. Nonpositive ν disables the restart.
func (s *NLCG[P]) RestartOrthogonality(v float64) *NLCG[P] {
	s.restartOrtho = v
	return s
}

// Beta reports the most recent blend coefficient, NaN before the first
// completed step.
func (s *NLCG[P]) Beta() float64 {
	return s.beta
}

func (s *NLCG[P]) Name() string {
	return "Nonlinear Conjugate Gradient"
}

// Init evaluates cost and gradient at the initial iterate and sets the
// first search direction 𝐩 = −g₀.
func (s *NLCG[P]) Init(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	x0 := st.Param
	f0, err := op.Cost(x0)
	if err != nil {
		return nil, errors.WithMessage(err, "cost evaluation")
	}
	g0, err := op.Gradient(x0)
	if err != nil {
		return nil, errors.WithMessage(err, "gradient evaluation")
	}
	s.dir = g0.Scale(-1)
	s.hasDir = true
	return &core.Iteration[P]{Param: x0, Cost: f0, Grad: g0, HasGrad: true}, nil
}

// Next advances one iteration: line search along 𝐩 from the current
// iterate, gradient re-evaluation, restart predicates, β update and
// direction update, in that order.
func (s *NLCG[P]) Next(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	if !s.hasDir {
		return nil, core.ErrNotInitialized
	}

	xk := st.Param
	fk := st.Cost
	gk := st.Grad
	if !st.HasGrad {
		var err error
		if gk, err = op.Gradient(xk); err != nil {
			return nil, errors.WithMessage(err, "gradient evaluation")
		}
	}

	// Minimize along 𝐩 with a nested run. The sub-solver borrows the
	// oracle through a fresh wrapper and never handles interrupts; its
	// evaluation counts are merged back whatever the outcome.
	s.search.SetSearchDirection(s.dir)
	sub := core.NewExecutor[P](op.Problem(), s.search, xk).
		Configure(func(ls *core.State[P]) {
			ls.SetCost(fk).SetGrad(gk)
		}).
		CtrlC(false)
	res, err := sub.Run()
	op.Consume(sub.Wrapper())
	if err != nil {
		return nil, errors.WithMessage(err, "line search")
	}

	xk1 := res.Param
	gk1, err := op.Gradient(xk1)
	if err != nil {
		return nil, errors.WithMessage(err, "gradient evaluation")
	}

	restartOrtho := false
	if s.restartOrtho > 0 {
		// Guard the division: at an exact zero gradient the predicate is
		// reported false and the outer driver detects convergence.
		if n2 := gk1.Dot(gk1); n2 > 0 {
			restartOrtho = math.Abs(gk1.Dot(gk))/n2 >= s.restartOrtho
		}
	}
	restartIter := st.Iter != 0 && st.Iter%s.restartIter == 0

	if restartIter || restartOrtho {
		s.beta = 0
	} else {
		s.beta = s.rule.Update(gk, gk1, s.dir)
	}

	s.dir = gk1.Scale(-1).Add(s.dir.Scale(s.beta))

	fk1, err := op.Cost(xk1)
	if err != nil {
		return nil, errors.WithMessage(err, "cost evaluation")
	}

	return &core.Iteration[P]{
		Param: xk1, Cost: fk1, Grad: gk1, HasGrad: true,
		KV: core.KV{
			"beta":                  s.beta,
			"restart_iter":          restartIter,
			"restart_orthogonality": restartOrtho,
		},
	}, nil
}
