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
	"sync"
	"time"

	"github.com/epochtools/lockstep/resource"
)

// An Access holds the locks acquired for a task and mediates its view
// of the resource store. It is valid from the start of [Task.Run]
// until Run returns; fetching through a released Access panics.
type Access struct {
	d      *Dispatcher
	held   []*rlock
	req    Required
	task   Task
	taskID uint64

	mu struct {
		sync.Mutex
		released bool
	}
}

// Read returns the resource of type T. The task must have declared the
// resource in its read or write set. Since every declared resource is
// held exclusively, the distinction from [Write] is one of intent.
func Read[T any](a *Access) *T {
	return a.get(resource.IDFor[T](), false).(*T)
}

// ReadNamed is the variant of [Read] for resources stored under an
// explicit name.
func ReadNamed[T any](a *Access, name string) *T {
	return a.get(resource.NamedID[T](name), false).(*T)
}

// Write returns the resource of type T. The task must have declared
// the resource in its write set.
func Write[T any](a *Access) *T {
	return a.get(resource.IDFor[T](), true).(*T)
}

// WriteNamed is the variant of [Write] for resources stored under an
// explicit name.
func WriteNamed[T any](a *Access, name string) *T {
	return a.get(resource.NamedID[T](name), true).(*T)
}

func (a *Access) get(id resource.ID, write bool) any {
	a.mu.Lock()
	released := a.mu.released
	a.mu.Unlock()
	if released {
		panic("dispatch: access used after release")
	}
	if write {
		if !a.req.canWrite(id) {
			panic(fmt.Sprintf("dispatch: resource %s was not declared for writing", id))
		}
	} else if !a.req.canRead(id) {
		panic(fmt.Sprintf("dispatch: resource %s was not declared by the task", id))
	}
	v, ok := a.d.store.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("dispatch: resource %s is not registered", id))
	}
	return v
}

// release drops every lock held by the Access. Releasing twice is a
// no-op.
func (a *Access) release() {
	a.mu.Lock()
	released := a.mu.released
	a.mu.released = true
	a.mu.Unlock()
	if released {
		return
	}
	for i := len(a.held) - 1; i >= 0; i-- {
		a.held[i].release()
	}
	a.d.events.doReleased(a.task)
	a.d.logger.Debug("released resources", "task", a.taskID)
}

// acquire locks every resource declared by the task, all or nothing.
// While holding the dispatch lock it try-locks each declared resource;
// if one of them is busy it releases everything, waits off-lock for
// the busy resource to free, and starts over. Declaring a resource
// that was never registered is a programming error and panics.
func (d *Dispatcher) acquire(ctx context.Context, id uint64, task Task) (*Access, error) {
	req := task.Resources().normalize()
	for _, rid := range req.All() {
		if _, ok := d.locks[rid]; !ok {
			panic(fmt.Sprintf("dispatch: resource %s is not registered", rid))
		}
	}

	start := time.Now()
	for {
		if err := d.dispatchLock.acquire(ctx); err != nil {
			return nil, err
		}
		blocked, held := d.tryLocks(req)
		d.dispatchLock.release()

		if blocked.IsZero() {
			d.events.doAcquired(task, time.Since(start))
			d.logger.Debug("acquired resources", "task", id, "wait", time.Since(start))
			a := &Access{d: d, held: held, req: req, task: task, taskID: id}
			return a, nil
		}

		d.events.doBlocked(task, blocked)
		d.logger.Debug("blocked on resource", "task", id, "resource", blocked.String())
		if err := d.locks[blocked].await(ctx); err != nil {
			return nil, err
		}
	}
}

// tryLocks attempts to lock every resource in req, writes first. On
// success it returns the locks now held, in acquisition order. If any
// lock is busy, everything acquired so far is released and the busy
// resource's identity is returned.
func (d *Dispatcher) tryLocks(req Required) (resource.ID, []*rlock) {
	all := req.All()
	held := make([]*rlock, 0, len(all))
	for _, id := range all {
		l := d.locks[id]
		if !l.tryAcquire() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].release()
			}
			return id, nil
		}
		held = append(held, l)
	}
	return resource.ID{}, held
}
