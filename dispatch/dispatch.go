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

/*
Package dispatch contains a coordination runtime for tasks that share
mutable resources across the iterations of a frame loop.

Tasks declare the resources they intend to read and write. A Dispatcher
owns one exclusive lock per registered resource, plus a single dispatch
lock that serializes acquisition. A task takes its locks all or
nothing: while holding the dispatch lock it try-locks every declared
resource, and if any of them is busy it lets go of everything and
waits for the busy lock to free before starting over. No task ever waits while
holding a partial set of locks, so circular waits cannot form.

A miniature simulation might look like this:

	// Resources are plain mutable values owned by the dispatcher.
	b := NewBuilder()
	pos := b.Insert(&Position{})
	vel := b.Insert(&Velocity{X: 1})
	d := b.Build()

	// A task declares its resources and receives exclusive access to
	// them while it runs.
	move := TaskFunc(Required{Reads: []resource.ID{vel}, Writes: []resource.ID{pos}},
		func(ctx context.Context, a *Access) error {
			Write[Position](a).X += Read[Velocity](a).X
			return nil
		})

	// The frame loop runs until termination is requested, then hands
	// the resources back.
	store, err := d.Run(ctx, func(ctx context.Context, d *Dispatcher, frame uint64) error {
		if frame == 100 {
			d.RequestTermination()
			return nil
		}
		return d.TaskFuture(move)(ctx)
	})

Work can also be composed with ExecuteSequential and ExecuteParallel,
or handed to an external executor through Dispatcher.Schedule. The
dispatcher never starts goroutines of its own; all concurrency comes
from the Runner the caller supplies.
*/
package dispatch
