// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// Problem is the oracle for a smooth unconstrained objective 𝒇 : ℝⁿ → ℝ.
// It is the only window the solvers have onto the objective.
type Problem[P any] interface {
	// Cost evaluates 𝒇(𝐱).
	Cost(x P) (float64, error)
	// Gradient evaluates ∇𝒇(𝐱).
	Gradient(x P) (P, error)
}

// Wrapper counts oracle evaluations on behalf of the executor.
// A nested solver run borrows the underlying problem through a fresh
// wrapper; Consume merges the counts it accrued back into the caller.
type Wrapper[P any] struct {
	problem   Problem[P]
	CostEvals int
	GradEvals int
}

// Wrap creates a counting wrapper around a problem.
func Wrap[P any](p Problem[P]) *Wrapper[P] {
	return &Wrapper[P]{problem: p}
}

func (w *Wrapper[P]) Cost(x P) (float64, error) {
	w.CostEvals++
	return w.problem.Cost(x)
}

func (w *Wrapper[P]) Gradient(x P) (P, error) {
	w.GradEvals++
	return w.problem.Gradient(x)
}

// Problem returns the wrapped oracle, so that a nested run
// can rewrap it without double counting.
func (w *Wrapper[P]) Problem() Problem[P] {
	return w.problem
}

// Consume merges the evaluation counts of a nested run into w.
func (w *Wrapper[P]) Consume(nested *Wrapper[P]) {
	w.CostEvals += nested.CostEvals
	w.GradEvals += nested.GradEvals
}

// TotalEvals reports the total number of oracle calls.
func (w *Wrapper[P]) TotalEvals() int {
	return w.CostEvals + w.GradEvals
}
