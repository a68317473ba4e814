// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// Vector is the capability set a parameter type must provide to the solvers.
// All operations produce new values: implementations must not mutate their
// receiver or arguments, though they may fuse allocations internally.
//
//   - Scale : 𝐲 = α·𝐱
//   - Add   : 𝐲 = 𝐚 + 𝐛
//   - Dot   : ⟨𝐚, 𝐛⟩
//   - Norm  : ‖𝐚‖₂ = √⟨𝐚, 𝐚⟩
type Vector[P any] interface {
	Scale(alpha float64) P
	Add(other P) P
	Dot(other P) float64
	Norm() float64
}
