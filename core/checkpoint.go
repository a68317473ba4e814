// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Checkpointer persists and restores a run snapshot.
type Checkpointer interface {
	Save(snapshot any) error
	Load(snapshot any) error
}

// FileCheckpoint stores snapshots as a JSON file, replaced atomically
// on every save.
type FileCheckpoint struct {
	Dir  string
	Name string
}

func (c *FileCheckpoint) path() string {
	return filepath.Join(c.Dir, c.Name+".json")
}

func (c *FileCheckpoint) Save(snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.WithMessage(err, "marshal snapshot")
	}
	if c.Dir != "" {
		if err := os.MkdirAll(c.Dir, 0o755); err != nil {
			return errors.WithMessage(err, "create checkpoint dir")
		}
	}
	tmp := c.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.WithMessage(err, "write snapshot")
	}
	return errors.WithMessage(os.Rename(tmp, c.path()), "replace snapshot")
}

func (c *FileCheckpoint) Load(snapshot any) error {
	data, err := os.ReadFile(c.path())
	if err != nil {
		return errors.WithMessage(err, "read snapshot")
	}
	return errors.WithMessage(json.Unmarshal(data, snapshot), "unmarshal snapshot")
}

// runSnapshot is the serialized form of a run: the executor state plus the
// solver state for solvers implementing Serializable.
type runSnapshot[P any] struct {
	Param   P               `json:"param"`
	Cost    float64         `json:"cost"`
	HasCost bool            `json:"has_cost"`
	Grad    P               `json:"grad"`
	HasGrad bool            `json:"has_grad"`
	Iter    uint64          `json:"iter"`
	Solver  json.RawMessage `json:"solver,omitempty"`
}

func (e *Executor[P]) save() error {
	st := e.state
	snap := runSnapshot[P]{
		Param:   st.Param,
		Cost:    st.Cost,
		HasCost: st.HasCost,
		Grad:    st.Grad,
		HasGrad: st.HasGrad,
		Iter:    st.Iter,
	}
	if s, ok := e.solver.(Serializable); ok {
		raw, err := json.Marshal(s.SolverState())
		if err != nil {
			return errors.WithMessage(err, "marshal solver state")
		}
		snap.Solver = raw
	}
	return e.check.Save(&snap)
}

// Resume loads a snapshot and primes the executor to continue from it,
// skipping Init on the next Run.
func (e *Executor[P]) Resume(ck Checkpointer) error {
	var snap runSnapshot[P]
	if err := ck.Load(&snap); err != nil {
		return err
	}
	st := e.state
	st.Param = snap.Param
	st.Cost = snap.Cost
	st.HasCost = snap.HasCost
	st.Grad = snap.Grad
	st.HasGrad = snap.HasGrad
	st.Iter = snap.Iter
	if snap.Cost < st.BestCost {
		st.BestCost = snap.Cost
	}
	if s, ok := e.solver.(Serializable); ok && len(snap.Solver) > 0 {
		if err := s.RestoreSolver(snap.Solver); err != nil {
			return errors.WithMessage(err, "restore solver state")
		}
	}
	e.initialized = true
	return nil
}
