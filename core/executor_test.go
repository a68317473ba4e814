// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/nlcg/dense"
)

// normProblem is 𝒇(𝐱) = ⟨𝐱, 𝐱⟩ with ∇𝒇(𝐱) = 2𝐱.
type normProblem struct{}

func (normProblem) Cost(x dense.Vector) (float64, error) {
	return x.Dot(x), nil
}

func (normProblem) Gradient(x dense.Vector) (dense.Vector, error) {
	return x.Scale(2), nil
}

// halver moves the iterate halfway to the origin each step.
type halver struct{}

func (halver) Name() string { return "Halver" }

func (halver) Init(op *Wrapper[dense.Vector], st *State[dense.Vector]) (*Iteration[dense.Vector], error) {
	f, err := op.Cost(st.Param)
	if err != nil {
		return nil, err
	}
	g, err := op.Gradient(st.Param)
	if err != nil {
		return nil, err
	}
	return &Iteration[dense.Vector]{Param: st.Param, Cost: f, Grad: g, HasGrad: true}, nil
}

func (halver) Next(op *Wrapper[dense.Vector], st *State[dense.Vector]) (*Iteration[dense.Vector], error) {
	xn := st.Param.Scale(0.5)
	f, err := op.Cost(xn)
	if err != nil {
		return nil, err
	}
	g, err := op.Gradient(xn)
	if err != nil {
		return nil, err
	}
	return &Iteration[dense.Vector]{
		Param: xn, Cost: f, Grad: g, HasGrad: true,
		KV: KV{"halved": true},
	}, nil
}

type recorder struct {
	inits int
	iters []uint64
	kvs   []KV
}

func (r *recorder) ObserveInit(string, *State[dense.Vector]) { r.inits++ }

func (r *recorder) ObserveIter(st *State[dense.Vector], kv KV) {
	r.iters = append(r.iters, st.Iter)
	r.kvs = append(r.kvs, kv)
}

func TestExecutorMaxIters(t *testing.T) {
	ex := NewExecutor[dense.Vector](normProblem{}, halver{}, dense.Of(1, 0)).
		MaxIters(5).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)

	assert.Equal(t, MaxItersReached, res.Status)
	assert.Equal(t, uint64(5), res.Iters)
	assert.InDelta(t, 1.0/32, res.Param[0], 1e-15)
}

func TestExecutorGradTolerance(t *testing.T) {
	// ‖∇𝒇‖ = 2·2⁻ᵏ drops below 0.5 after two halvings.
	ex := NewExecutor[dense.Vector](normProblem{}, halver{}, dense.Of(1, 0)).
		GradTolerance(0.5).MaxIters(100).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)

	assert.Equal(t, GradToleranceReached, res.Status)
	assert.Equal(t, uint64(2), res.Iters)
}

func TestExecutorTargetCost(t *testing.T) {
	ex := NewExecutor[dense.Vector](normProblem{}, halver{}, dense.Of(1, 0)).
		TargetCost(0.1).MaxIters(100).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)

	assert.Equal(t, TargetCostReached, res.Status)
	assert.Equal(t, uint64(2), res.Iters)
	assert.InDelta(t, 1.0/16, res.Cost, 1e-15)
}

func TestExecutorObserveModes(t *testing.T) {
	always, sparse := &recorder{}, &recorder{}

	_, err := NewExecutor[dense.Vector](normProblem{}, halver{}, dense.Of(1, 0)).
		MaxIters(6).CtrlC(false).
		Observe(always, ObserveAlways).
		Observe(sparse, ObserveEvery(2)).
		Run()
	require.NoError(t, err)

	assert.Equal(t, 1, always.inits)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6}, always.iters)
	assert.Equal(t, []uint64{2, 4, 6}, sparse.iters)
	for _, kv := range always.kvs {
		assert.Equal(t, true, kv["halved"])
	}
}

func TestExecutorEvalAccounting(t *testing.T) {
	ex := NewExecutor[dense.Vector](normProblem{}, halver{}, dense.Of(1, 0)).
		MaxIters(4).CtrlC(false)
	res, err := ex.Run()
	require.NoError(t, err)

	// One cost and one gradient per Init and per Next.
	assert.Equal(t, 5, res.CostEvals)
	assert.Equal(t, 5, res.GradEvals)
}

type failSolver struct {
	halver
	boom error
}

func (s failSolver) Next(*Wrapper[dense.Vector], *State[dense.Vector]) (*Iteration[dense.Vector], error) {
	return nil, s.boom
}

func TestExecutorPropagatesSolverFailure(t *testing.T) {
	boom := errors.New("oracle exploded")
	_, err := NewExecutor[dense.Vector](normProblem{}, failSolver{boom: boom}, dense.Of(1, 0)).
		MaxIters(3).CtrlC(false).
		Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestWrapperConsume(t *testing.T) {
	outer := Wrap[dense.Vector](normProblem{})
	_, err := outer.Cost(dense.Of(1))
	require.NoError(t, err)

	nested := Wrap[dense.Vector](outer.Problem())
	_, err = nested.Cost(dense.Of(1))
	require.NoError(t, err)
	_, err = nested.Gradient(dense.Of(1))
	require.NoError(t, err)

	outer.Consume(nested)
	assert.Equal(t, 2, outer.CostEvals)
	assert.Equal(t, 1, outer.GradEvals)
	assert.Equal(t, 3, outer.TotalEvals())
}

func TestStateSeeding(t *testing.T) {
	st := newState(dense.Of(1, 2))
	assert.False(t, st.HasCost)
	assert.False(t, st.HasGrad)

	st.SetCost(3).SetGrad(dense.Of(4, 5))
	assert.True(t, st.HasCost)
	assert.True(t, st.HasGrad)
	assert.Equal(t, 3.0, st.Cost)
	assert.Equal(t, dense.Of(4, 5), st.Grad)
}
