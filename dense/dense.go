// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dense provides a []float64 parameter type satisfying the
// solver vector capability set.
package dense

import (
	"gonum.org/v1/gonum/floats"
)

// Vector is a dense parameter vector. All operations produce new slices.
type Vector []float64

// Of builds a vector from the given values.
func Of(values ...float64) Vector {
	return Vector(values).Clone()
}

// Clone returns a copy of the vector.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// Scale returns α·𝐯.
func (v Vector) Scale(alpha float64) Vector {
	out := make(Vector, len(v))
	floats.ScaleTo(out, alpha, v)
	return out
}

// Add returns 𝐯 + 𝐰.
func (v Vector) Add(w Vector) Vector {
	out := make(Vector, len(v))
	floats.AddTo(out, v, w)
	return out
}

// Dot returns ⟨𝐯, 𝐰⟩.
func (v Vector) Dot(w Vector) float64 {
	return floats.Dot(v, w)
}

// Norm returns ‖𝐯‖₂.
func (v Vector) Norm() float64 {
	return floats.Norm(v, 2)
}
