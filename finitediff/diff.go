// Package finitediff adapts a cost-only objective into a full oracle by
// approximating the gradient with finite differences.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
package finitediff

import (
	"math"

	"github.com/pkg/errors"

	"github.com/curioloop/nlcg/dense"
)

var (
	sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
	cubeEps = math.Pow(math.Nextafter(1, 2)-1, 1.0/3)
)

type Method int

const (
	// Forward uses the first order accuracy forward difference.
	Forward Method = iota
	// Central uses the second order accuracy central difference,
	// at twice the evaluation cost.
	Central
)

// Problem wraps an objective function without analytic gradient.
// The partial derivatives are estimated with the configured scheme, using
// the step h = RelStep·sign(xᵢ)·max(1, |xᵢ|) per coordinate.
type Problem struct {
	// Func evaluates the objective.
	Func func(x dense.Vector) float64
	// Method selects the difference scheme.
	Method Method
	// RelStep is the relative step size, selected automatically when zero
	// (√ε for Forward, ∛ε for Central).
	RelStep float64
}

func (p *Problem) Cost(x dense.Vector) (float64, error) {
	if p.Func == nil {
		return 0, errors.New("objective function is required")
	}
	return p.Func(x), nil
}

func (p *Problem) Gradient(x dense.Vector) (dense.Vector, error) {
	if p.Func == nil {
		return nil, errors.New("objective function is required")
	}

	rel := p.RelStep
	g := make(dense.Vector, len(x))

	switch p.Method {
	case Forward:
		if rel == 0 {
			rel = sqrtEps
		}
		f0 := p.Func(x)
		for i := range x {
			xt := x.Clone()
			xt[i] += relStep(rel, x[i])
			// The realized step absorbs the rounding of xᵢ + h.
			g[i] = (p.Func(xt) - f0) / (xt[i] - x[i])
		}
	case Central:
		if rel == 0 {
			rel = cubeEps
		}
		for i := range x {
			h := relStep(rel, x[i])
			lo, hi := x.Clone(), x.Clone()
			lo[i] -= h
			hi[i] += h
			g[i] = (p.Func(hi) - p.Func(lo)) / (hi[i] - lo[i])
		}
	default:
		return nil, errors.Errorf("unknown difference method %d", p.Method)
	}
	return g, nil
}

func relStep(rel, xi float64) float64 {
	h := rel * math.Max(1, math.Abs(xi))
	if xi < 0 {
		h = -h
	}
	return h
}
