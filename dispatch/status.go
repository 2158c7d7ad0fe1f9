// Copyright 2026 The Lockstep Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package dispatch

import (
	"context"
	"fmt"

	"github.com/epochtools/lockstep/notify"
)

// Outcome is a convenience type alias.
type Outcome = *notify.Var[*Status]

// NewOutcome is a convenience method to allocate an Outcome.
func NewOutcome() Outcome {
	return notify.VarOf(queued)
}

// Status is reported through the [Outcome] of a scheduled task.
type Status struct {
	err error
}

// StatusFor constructs a successful status if err is nil. Otherwise,
// it returns a new Status object that reports the error.
func StatusFor(err error) *Status {
	if err == nil {
		return success
	}
	return &Status{err: err}
}

// Sentinel instances of Status.
var (
	executing = &Status{}
	queued    = &Status{}
	success   = &Status{}
)

// Completed returns true if the task has settled.
// See also [Status.Success].
func (s *Status) Completed() bool {
	return s == success || s.err != nil
}

// Err returns any error returned by the task.
func (s *Status) Err() error {
	return s.err
}

// Executing returns true if the task is acquiring its resources or
// running.
func (s *Status) Executing() bool {
	return s == executing
}

// Queued returns true if the task has not been started yet.
func (s *Status) Queued() bool {
	return s == queued
}

// Success returns true if the task completed without error.
func (s *Status) Success() bool {
	return s == success
}

func (s *Status) String() string {
	switch s {
	case executing:
		return "executing"
	case queued:
		return "queued"
	case success:
		return "success"
	default:
		return fmt.Sprintf("error: %v", s.err)
	}
}

// Wait blocks until every outcome has settled and returns the first
// error in slice order. Waiting for all outcomes, rather than
// returning at the first observed error, guarantees that none of the
// tasks still hold resource locks when Wait returns. If the context is
// canceled, Wait returns immediately with the context's error.
func Wait(ctx context.Context, outcomes []Outcome) error {
	var first error
	for _, outcome := range outcomes {
		for {
			status, changed := outcome.Get()
			if status.Completed() {
				if first == nil {
					first = status.Err()
				}
				break
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return first
}
