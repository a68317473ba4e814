// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"github.com/sirupsen/logrus"
)

// ObserveMode controls how often an iteration observer fires:
// ObserveNever disables it, ObserveAlways fires every iteration, and
// ObserveEvery(n) fires when the iteration count is a multiple of n.
type ObserveMode uint64

const (
	ObserveNever  ObserveMode = 0
	ObserveAlways ObserveMode = 1
)

// ObserveEvery fires the observer every n iterations.
func ObserveEvery(n uint64) ObserveMode {
	return ObserveMode(n)
}

func (m ObserveMode) observe(iter uint64) bool {
	return m > 0 && iter%uint64(m) == 0
}

// Observer receives the state and the solver diagnostics of a run.
type Observer[P Vector[P]] interface {
	ObserveInit(name string, state *State[P])
	ObserveIter(state *State[P], kv KV)
}

// LogObserver emits structured iteration logs through logrus.
type LogObserver[P Vector[P]] struct {
	Logger *logrus.Logger
}

// NewLogObserver creates an observer logging to the standard logger.
func NewLogObserver[P Vector[P]]() *LogObserver[P] {
	return &LogObserver[P]{Logger: logrus.StandardLogger()}
}

func (o *LogObserver[P]) ObserveInit(name string, state *State[P]) {
	fields := logrus.Fields{}
	if state.HasCost {
		fields["cost"] = state.Cost
	}
	if state.HasGrad {
		fields["grad_norm"] = state.Grad.Norm()
	}
	o.Logger.WithFields(fields).Info(name)
}

func (o *LogObserver[P]) ObserveIter(state *State[P], kv KV) {
	fields := logrus.Fields{
		"iter":      state.Iter,
		"cost":      state.Cost,
		"best_cost": state.BestCost,
	}
	if state.HasGrad {
		fields["grad_norm"] = state.Grad.Norm()
	}
	for k, v := range kv {
		fields[k] = v
	}
	o.Logger.WithFields(fields).Info("iteration")
}
