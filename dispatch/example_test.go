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

	"github.com/epochtools/lockstep/resource"
)

type score struct{ points int }

type position struct{ x int }

type velocity struct{ dx int }

// A minimal game loop: the score rises once per frame until it crosses
// a threshold, the loop ends, and the final state is recovered from
// the store.
func ExampleDispatcher_Run() {
	ctx := context.Background()

	b := NewBuilder()
	scoreID := b.Insert(&score{})
	d := b.Build()

	tick := TaskFunc(Required{Writes: []resource.ID{scoreID}},
		func(ctx context.Context, a *Access) error {
			s := Write[score](a)
			s.points++
			if s.points > 20 {
				d.RequestTermination()
			}
			return nil
		})

	store, err := d.Run(ctx, func(ctx context.Context, d *Dispatcher, frame uint64) error {
		return d.TaskFuture(tick)(ctx)
	})
	if err != nil {
		panic(err)
	}

	s, _ := resource.Get[score](store)
	fmt.Println(s.points)
	// Output: 21
}

// Futures compose outside of the frame loop as well. The second stage
// observes the effects of the first.
func ExampleExecuteSequential() {
	ctx := context.Background()

	b := NewBuilder()
	posID := b.Insert(&position{})
	velID := b.Insert(&velocity{})
	d := b.Build()

	accelerate := d.TaskFuture(TaskFunc(Required{Writes: []resource.ID{velID}},
		func(ctx context.Context, a *Access) error {
			Write[velocity](a).dx += 2
			return nil
		}))
	move := d.TaskFuture(TaskFunc(
		Required{Reads: []resource.ID{velID}, Writes: []resource.ID{posID}},
		func(ctx context.Context, a *Access) error {
			Write[position](a).x += Read[velocity](a).dx
			return nil
		}))

	if err := ExecuteSequential(accelerate, move)(ctx); err != nil {
		panic(err)
	}

	store, err := d.ReclaimStore()
	if err != nil {
		panic(err)
	}
	p, _ := resource.Get[position](store)
	v, _ := resource.Get[velocity](store)
	fmt.Println(p.x, v.dx)
	// Output: 2 2
}
