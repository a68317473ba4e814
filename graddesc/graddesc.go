// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graddesc implements steepest descent: each step minimizes along
// the negative gradient with a nested line search.
package graddesc

import (
	"github.com/pkg/errors"

	"github.com/curioloop/nlcg/core"
)

// SteepestDescent minimizes along 𝐩 = −∇𝒇(𝐱) each iteration. It shares the
// line-search composition and the evaluation accounting of the conjugate
// gradient solver, which degenerates to it whenever β = 0.
type SteepestDescent[P core.Vector[P]] struct {
	search core.LineSearcher[P]
}

// New creates a solver from a line search.
func New[P core.Vector[P]](search core.LineSearcher[P]) *SteepestDescent[P] {
	return &SteepestDescent[P]{search: search}
}

func (s *SteepestDescent[P]) Name() string {
	return "Steepest Descent"
}

func (s *SteepestDescent[P]) Init(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	x0 := st.Param
	f0, err := op.Cost(x0)
	if err != nil {
		return nil, errors.WithMessage(err, "cost evaluation")
	}
	g0, err := op.Gradient(x0)
	if err != nil {
		return nil, errors.WithMessage(err, "gradient evaluation")
	}
	return &core.Iteration[P]{Param: x0, Cost: f0, Grad: g0, HasGrad: true}, nil
}

func (s *SteepestDescent[P]) Next(op *core.Wrapper[P], st *core.State[P]) (*core.Iteration[P], error) {
	xk := st.Param
	fk := st.Cost
	gk := st.Grad
	if !st.HasGrad {
		var err error
		if gk, err = op.Gradient(xk); err != nil {
			return nil, errors.WithMessage(err, "gradient evaluation")
		}
	}

	s.search.SetSearchDirection(gk.Scale(-1))
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
	fk1, err := op.Cost(xk1)
	if err != nil {
		return nil, errors.WithMessage(err, "cost evaluation")
	}

	return &core.Iteration[P]{Param: xk1, Cost: fk1, Grad: gk1, HasGrad: true}, nil
}
