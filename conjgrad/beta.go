// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conjgrad

import (
	"math"

	"github.com/curioloop/nlcg/core"
)

// BetaRule computes the blend coefficient β from the previous gradient gₖ,
// the new gradient gₖ₊₁ and the previous search direction pₖ. Rules are
// stateless; the solver imposes no constraint on the returned value.
type BetaRule[P core.Vector[P]] interface {
	Update(g, gNew, p P) float64
}

// FletcherReeves computes β = ⟨gₖ₊₁, gₖ₊₁⟩ / ⟨gₖ, gₖ⟩.
type FletcherReeves[P core.Vector[P]] struct{}

func (FletcherReeves[P]) Update(g, gNew, _ P) float64 {
	return gNew.Dot(gNew) / g.Dot(g)
}

// PolakRibiere computes β = ⟨gₖ₊₁, gₖ₊₁ − gₖ⟩ / ⟨gₖ, gₖ⟩.
// It is the common default for nonlinear conjugate gradient.
type PolakRibiere[P core.Vector[P]] struct{}

func (PolakRibiere[P]) Update(g, gNew, _ P) float64 {
	return (gNew.Dot(gNew) - gNew.Dot(g)) / g.Dot(g)
}

// PolakRibierePlus is the Polak-Ribière rule clipped at zero,
// β = 𝚖𝚊𝚡(0, βᴾᴿ), which guarantees automatic restarts.
type PolakRibierePlus[P core.Vector[P]] struct{}

func (PolakRibierePlus[P]) Update(g, gNew, p P) float64 {
	return math.Max(0, PolakRibiere[P]{}.Update(g, gNew, p))
}

// HestenesStiefel computes β = ⟨gₖ₊₁, 𝐲⟩ / ⟨pₖ, 𝐲⟩ with 𝐲 = gₖ₊₁ − gₖ.
type HestenesStiefel[P core.Vector[P]] struct{}

func (HestenesStiefel[P]) Update(g, gNew, p P) float64 {
	return (gNew.Dot(gNew) - gNew.Dot(g)) / (p.Dot(gNew) - p.Dot(g))
}

// DaiYuan computes β = ⟨gₖ₊₁, gₖ₊₁⟩ / ⟨pₖ, 𝐲⟩ with 𝐲 = gₖ₊₁ − gₖ.
type DaiYuan[P core.Vector[P]] struct{}

func (DaiYuan[P]) Update(g, gNew, p P) float64 {
	return gNew.Dot(gNew) / (p.Dot(gNew) - p.Dot(g))
}
