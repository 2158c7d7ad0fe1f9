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
	"slices"

	"github.com/epochtools/lockstep/resource"
)

// A Task is executed by a [Dispatcher] once every resource it declares
// has been locked.
type Task interface {
	// Run contains the logic associated with the task. The Access is
	// valid until Run returns.
	Run(ctx context.Context, access *Access) error
	// Resources returns the resource sets that the Task depends upon.
	Resources() Required
}

// Required declares the resources that a [Task] intends to use. Every
// declared resource is locked exclusively while the task runs; the
// split between reads and writes records intent and controls which
// fetches the [Access] will allow.
type Required struct {
	Reads  []resource.ID
	Writes []resource.ID
}

// All returns the declared resources, writes first.
func (r Required) All() []resource.ID {
	all := make([]resource.ID, 0, len(r.Writes)+len(r.Reads))
	all = append(all, r.Writes...)
	all = append(all, r.Reads...)
	return all
}

func (r Required) canRead(id resource.ID) bool {
	return slices.Contains(r.Reads, id) || slices.Contains(r.Writes, id)
}

func (r Required) canWrite(id resource.ID) bool {
	return slices.Contains(r.Writes, id)
}

// normalize removes duplicate declarations. A resource named in both
// sets is kept only in the write set, so that acquisition never takes
// the same lock twice.
func (r Required) normalize() Required {
	writes := dedup(r.Writes)
	reads := make([]resource.ID, 0, len(r.Reads))
	for _, id := range dedup(r.Reads) {
		if !slices.Contains(writes, id) {
			reads = append(reads, id)
		}
	}
	return Required{Reads: reads, Writes: writes}
}

// TaskFunc returns a [Task] that locks the given resources and then
// invokes the function callback.
func TaskFunc(req Required, fn func(ctx context.Context, access *Access) error) Task {
	return &taskFunc{fn, req.normalize()}
}

type taskFunc struct {
	fn  func(context.Context, *Access) error
	req Required
}

func (t *taskFunc) Run(ctx context.Context, access *Access) error { return t.fn(ctx, access) }
func (t *taskFunc) Resources() Required                           { return t.req }

// dedup removes duplicate ids from the input, preserving order.
func dedup(ids []resource.ID) []resource.ID {
	seen := make(map[resource.ID]struct{}, len(ids))
	ret := make([]resource.ID, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ret = append(ret, id)
	}
	return ret
}
