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

// Package workgroup contains a dynamically-sized pool of worker
// goroutines.
package workgroup

import (
	"context"
	"fmt"
	"sync"
)

// A Group executes callbacks over a bounded pool of goroutines. Worker
// goroutines are started on demand and exit once no callbacks remain,
// so an idle Group consumes no resources.
type Group struct {
	ctx   context.Context
	size  int
	depth int

	mu struct {
		sync.Mutex
		running int
		waiting []func(context.Context)
	}
}

// WithSize returns a [Group] that runs up to size callbacks
// concurrently and admits up to depth deferred callbacks beyond that. A
// negative depth imposes no limit on the number of deferred callbacks.
// The context is passed to each callback and, once canceled, prevents
// new callbacks from being accepted.
func WithSize(ctx context.Context, size, depth int) *Group {
	if size < 1 {
		size = 1
	}
	return &Group{ctx: ctx, size: size, depth: depth}
}

// Go submits a callback for execution. It does not block. An error is
// returned if the Group's context has been canceled or if the number of
// deferred callbacks would exceed the Group's depth.
func (g *Group) Go(fn func(context.Context)) error {
	if err := g.ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mu.running < g.size {
		g.mu.running++
		go g.work(fn)
		return nil
	}
	if g.depth >= 0 && len(g.mu.waiting) >= g.depth {
		return fmt.Errorf("workgroup: queue depth %d exceeded", g.depth)
	}
	g.mu.waiting = append(g.mu.waiting, fn)
	return nil
}

// Len returns the number of deferred callbacks.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.mu.waiting)
}

// work invokes fn and then drains deferred callbacks until none
// remain. Exactly one work goroutine exists per increment of
// g.mu.running.
func (g *Group) work(fn func(context.Context)) {
	for {
		fn(g.ctx)

		g.mu.Lock()
		if len(g.mu.waiting) == 0 || g.ctx.Err() != nil {
			g.mu.running--
			g.mu.Unlock()
			return
		}
		fn = g.mu.waiting[0]
		g.mu.waiting = g.mu.waiting[1:]
		g.mu.Unlock()
	}
}
