// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/nlcg/core"
	"github.com/curioloop/nlcg/dense"
)

func TestBacktrackingArmijo(t *testing.T) {
	x0 := dense.Of(0, 0)
	f0, _ := quadratic{}.Cost(x0)
	g0, _ := quadratic{}.Gradient(x0)
	p := g0.Scale(-1)

	ls := NewBacktracking[dense.Vector]()
	ls.SetSearchDirection(p)

	ex := core.NewExecutor[dense.Vector](quadratic{}, ls, x0).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)
	require.Equal(t, core.LineSearchConverged, res.Status)

	dg0 := g0.Dot(p)
	stp := res.Param.Norm() / p.Norm()
	assert.Less(t, stp, 1.0)
	assert.LessOrEqual(t, res.Cost, f0+ls.SufficientDecrease*stp*dg0)
}

func TestBacktrackingContractionBounds(t *testing.T) {
	ls := NewBacktracking[dense.Vector]()
	ls.Contraction = 1.5
	ls.SetSearchDirection(dense.Of(1, 0))

	_, err := ls.Init(core.Wrap[dense.Vector](quadratic{}), &core.State[dense.Vector]{Param: dense.Of(0, 0)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestBacktrackingRejectsAscentDirection(t *testing.T) {
	x0 := dense.Of(0, 0)
	g0, _ := quadratic{}.Gradient(x0)

	ls := NewBacktracking[dense.Vector]()
	ls.SetSearchDirection(g0)

	_, err := ls.Init(core.Wrap[dense.Vector](quadratic{}), &core.State[dense.Vector]{Param: x0})
	assert.ErrorIs(t, err, ErrNotDescent)
}

func TestBacktrackingNextBeforeInit(t *testing.T) {
	ls := NewBacktracking[dense.Vector]()
	ls.SetSearchDirection(dense.Of(1, 0))
	_, err := ls.Next(core.Wrap[dense.Vector](quadratic{}), &core.State[dense.Vector]{Param: dense.Of(0, 0)})
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}
