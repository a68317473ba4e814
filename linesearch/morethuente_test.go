// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/nlcg/core"
	"github.com/curioloop/nlcg/dense"
)

// quadratic is 𝒇(𝐱) = ½𝐱ᵀA𝐱 − 𝐛ᵀ𝐱 with A = [[4,1],[1,3]], 𝐛 = [1,2].
type quadratic struct{}

func (quadratic) Cost(x dense.Vector) (float64, error) {
	ax0 := 4*x[0] + x[1]
	ax1 := x[0] + 3*x[1]
	return 0.5*(x[0]*ax0+x[1]*ax1) - (x[0] + 2*x[1]), nil
}

func (quadratic) Gradient(x dense.Vector) (dense.Vector, error) {
	return dense.Of(4*x[0]+x[1]-1, x[0]+3*x[1]-2), nil
}

func TestMoreThuenteFindsWolfeStep(t *testing.T) {
	x0 := dense.Of(0, 0)
	g0, _ := quadratic{}.Gradient(x0)
	f0, _ := quadratic{}.Cost(x0)
	p := g0.Scale(-1)

	ls := NewMoreThuente[dense.Vector]()
	ls.SetSearchDirection(p)

	ex := core.NewExecutor[dense.Vector](quadratic{}, ls, x0).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)
	require.Equal(t, core.LineSearchConverged, res.Status)

	// Both strong Wolfe conditions hold at the accepted point.
	dg0 := g0.Dot(p)
	stp := res.Param.Add(x0.Scale(-1)).Norm() / p.Norm()
	assert.LessOrEqual(t, res.Cost, f0+ls.SufficientDecrease*stp*dg0)
	assert.LessOrEqual(t, math.Abs(res.Grad.Dot(p)), ls.Curvature*math.Abs(dg0))
}

func TestMoreThuenteReusesCachedValues(t *testing.T) {
	x0 := dense.Of(0, 0)
	f0, _ := quadratic{}.Cost(x0)
	g0, _ := quadratic{}.Gradient(x0)

	ls := NewMoreThuente[dense.Vector]()
	ls.SetSearchDirection(g0.Scale(-1))

	ex := core.NewExecutor[dense.Vector](quadratic{}, ls, x0).
		Configure(func(st *core.State[dense.Vector]) {
			st.SetCost(f0).SetGrad(g0)
		}).
		CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)

	// Init evaluates nothing; each trial costs one cost and one gradient.
	assert.Equal(t, res.CostEvals, res.GradEvals)
	assert.Equal(t, uint64(res.CostEvals), res.Iters)
}

func TestMoreThuenteRejectsAscentDirection(t *testing.T) {
	x0 := dense.Of(0, 0)
	g0, _ := quadratic{}.Gradient(x0)

	ls := NewMoreThuente[dense.Vector]()
	ls.SetSearchDirection(g0) // uphill

	_, err := core.NewExecutor[dense.Vector](quadratic{}, ls, x0).CtrlC(false).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotDescent)
}

func TestMoreThuenteRequiresDirection(t *testing.T) {
	ls := NewMoreThuente[dense.Vector]()
	_, err := ls.Init(core.Wrap[dense.Vector](quadratic{}), &core.State[dense.Vector]{Param: dense.Of(0, 0)})
	assert.ErrorIs(t, err, ErrNoDirection)
}

func TestMoreThuenteNextBeforeInit(t *testing.T) {
	ls := NewMoreThuente[dense.Vector]()
	ls.SetSearchDirection(dense.Of(1, 0))
	_, err := ls.Next(core.Wrap[dense.Vector](quadratic{}), &core.State[dense.Vector]{Param: dense.Of(0, 0)})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

func TestMoreThuenteEvalLimit(t *testing.T) {
	x0 := dense.Of(0, 0)
	g0, _ := quadratic{}.Gradient(x0)

	ls := NewMoreThuente[dense.Vector]()
	ls.MaxEvals = 1
	// An absurdly strict curvature constant cannot be satisfied in one trial.
	ls.Curvature = 1e-12
	ls.SetSearchDirection(g0.Scale(-1))

	_, err := core.NewExecutor[dense.Vector](quadratic{}, ls, x0).CtrlC(false).Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchFailed)
}
