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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/epochtools/lockstep/notify"
	"github.com/epochtools/lockstep/resource"
)

// ErrHandlesOutstanding is returned by [Dispatcher.ReclaimStore] while
// tasks are still holding or awaiting access to resources.
var ErrHandlesOutstanding = errors.New("live resource handles outstanding")

// ErrStoreReclaimed is returned by [Dispatcher.ReclaimStore] if the
// store has already been handed back.
var ErrStoreReclaimed = errors.New("resource store already reclaimed")

// A FrameFunc is invoked once per iteration of [Dispatcher.Run].
type FrameFunc func(ctx context.Context, d *Dispatcher, frame uint64) error

// Dispatcher coordinates tasks that contend for exclusive access to
// shared resources. Instances are created by [Builder.Build].
//
// A Dispatcher is internally synchronized and is safe for concurrent
// use. It should not be copied after it has been created.
type Dispatcher struct {
	dispatchLock *rlock
	events       *Events
	locks        map[resource.ID]*rlock
	logger       *slog.Logger
	runner       Runner
	store        *resource.Store

	nextTask    atomic.Uint64
	terminating atomic.Bool

	// handles counts live uses of the resource store: tasks that have
	// been scheduled but not yet settled and futures that are
	// currently executing. The store can only be reclaimed when the
	// count is zero.
	handles struct {
		sync.Mutex
		live      int
		reclaimed bool
	}
}

// Schedule hands the task to the dispatcher's [Runner]. The task's
// result is available through the returned [Outcome].
//
// The scheduled task counts as a live handle on the resource store
// from this call until its outcome settles, so a frame loop that
// schedules background work must wait for it before terminating.
func (d *Dispatcher) Schedule(task Task) Outcome {
	id := d.nextTask.Add(1)
	outcome := notify.VarOf(queued)
	d.addHandle()
	work := func(ctx context.Context) {
		outcome.Set(executing)
		err := d.execute(ctx, id, task)
		// The handle must be gone before the outcome settles, so that
		// a caller who waits on the outcome can immediately reclaim
		// the store.
		d.dropHandle()
		outcome.Set(StatusFor(err))
	}
	if err := d.runner.Go(work); err != nil {
		d.dropHandle()
		outcome.Set(StatusFor(err))
	}
	return outcome
}

// TaskFuture returns a future that executes the task on the calling
// goroutine: it blocks until every declared resource has been locked,
// runs the task body, and releases the locks. The future must be
// invoked at most once.
func (d *Dispatcher) TaskFuture(task Task) func(context.Context) error {
	id := d.nextTask.Add(1)
	var ran atomic.Bool
	return func(ctx context.Context) error {
		if !ran.CompareAndSwap(false, true) {
			panic("dispatch: task future executed more than once")
		}
		d.addHandle()
		defer d.dropHandle()
		return d.execute(ctx, id, task)
	}
}

// Run drives the frame loop. The frame function is invoked repeatedly
// until [Dispatcher.RequestTermination] has been called, at which
// point the loop stops before the next frame and ownership of the
// resource store returns to the caller.
//
// A frame error stops the loop immediately; the store then remains
// with the dispatcher. Reclamation fails with [ErrHandlesOutstanding]
// if background tasks are still live when the loop stops.
func (d *Dispatcher) Run(ctx context.Context, frame FrameFunc) (*resource.Store, error) {
	for n := uint64(0); ; n++ {
		if d.Terminating() {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		if err := frame(ctx, d, n); err != nil {
			return nil, err
		}
		d.events.doFrame(n, time.Since(start))
		d.logger.Debug("frame complete", "frame", n)
	}
	return d.ReclaimStore()
}

// RequestTermination asks the frame loop to stop. The current frame
// still runs to completion; the loop exits before the next one.
func (d *Dispatcher) RequestTermination() {
	d.terminating.Store(true)
}

// Terminating reports whether termination has been requested.
func (d *Dispatcher) Terminating() bool {
	return d.terminating.Load()
}

// ReclaimStore ends the dispatcher's ownership of the resource store
// and returns it. It fails with [ErrHandlesOutstanding] while any task
// is live. After a successful reclaim the dispatcher must not be used;
// scheduling another task will panic.
func (d *Dispatcher) ReclaimStore() (*resource.Store, error) {
	d.handles.Lock()
	defer d.handles.Unlock()
	if d.handles.reclaimed {
		return nil, ErrStoreReclaimed
	}
	if n := d.handles.live; n > 0 {
		return nil, fmt.Errorf("%w: %d", ErrHandlesOutstanding, n)
	}
	d.handles.reclaimed = true
	return d.store, nil
}

// execute is the common path for running a task: acquire, run the
// body, release.
func (d *Dispatcher) execute(ctx context.Context, id uint64, task Task) error {
	access, err := d.acquire(ctx, id, task)
	if err != nil {
		return err
	}
	defer access.release()
	return tryRun(ctx, task, access)
}

func (d *Dispatcher) addHandle() {
	d.handles.Lock()
	defer d.handles.Unlock()
	if d.handles.reclaimed {
		panic("dispatch: resource store reclaimed")
	}
	d.handles.live++
}

func (d *Dispatcher) dropHandle() {
	d.handles.Lock()
	defer d.handles.Unlock()
	d.handles.live--
}

// tryRun invokes the task body with a panic handler.
func tryRun(ctx context.Context, task Task, access *Access) (err error) {
	// Install panic handler before executing user code.
	defer func() {
		x := recover()
		switch t := x.(type) {
		case nil:
		// Success.
		case error:
			err = t
		default:
			err = fmt.Errorf("panic in task: %v", t)
		}
	}()

	return task.Run(ctx, access)
}
