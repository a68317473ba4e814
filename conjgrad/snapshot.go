// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conjgrad

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// Snapshot is the serializable state of the solver: the current direction,
// the last β (absent while still undefined) and the restart configuration.
type Snapshot[P any] struct {
	Direction    P        `json:"direction"`
	HasDirection bool     `json:"has_direction"`
	Beta         *float64 `json:"beta,omitempty"`
	RestartIter  uint64   `json:"restart_iter"`
	RestartOrtho float64  `json:"restart_orthogonality,omitempty"`
}

// SolverState implements core.Serializable.
func (s *NLCG[P]) SolverState() any {
	snap := Snapshot[P]{
		Direction:    s.dir,
		HasDirection: s.hasDir,
		RestartIter:  s.restartIter,
		RestartOrtho: s.restartOrtho,
	}
	if !math.IsNaN(s.beta) {
		beta := s.beta
		snap.Beta = &beta
	}
	return &snap
}

// RestoreSolver implements core.Serializable.
func (s *NLCG[P]) RestoreSolver(data []byte) error {
	var snap Snapshot[P]
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.WithMessage(err, "unmarshal solver state")
	}
	s.dir = snap.Direction
	s.hasDir = snap.HasDirection
	s.restartIter = snap.RestartIter
	s.restartOrtho = snap.RestartOrtho
	if snap.Beta != nil {
		s.beta = *snap.Beta
	} else {
		s.beta = math.NaN()
	}
	if s.restartIter == 0 {
		s.restartIter = math.MaxUint64
	}
	return nil
}
