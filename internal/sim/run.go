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

package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/epochtools/lockstep/dispatch"
	"github.com/epochtools/lockstep/resource"
	"github.com/epochtools/lockstep/retry"
	"github.com/epochtools/lockstep/workgroup"
)

// Defaults applied when a scenario leaves the knobs unset.
const (
	defaultWorkers = 4

	retryBaseDelay = time.Millisecond
	retryMaxDelay  = 8 * time.Millisecond
)

// A Result reports the terminal state of a scenario run.
type Result struct {
	// Frames is the number of frames that completed.
	Frames uint64
	// Acquired counts successful lock acquisitions across all tasks.
	Acquired int64
	// Blocked counts the times a task found a resource busy and had to
	// wait. Contention makes this nondeterministic.
	Blocked int64
	// Values holds the final counter values, keyed by resource name.
	Values map[string]int64
}

// Run executes the scenario until its stop rule or frame limit fires
// and returns the terminal counter values. The scenario must have been
// validated; Run is typically handed the result of [Load] or [Parse].
func Run(ctx context.Context, sc Scenario, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	workers := sc.Workers
	if workers == 0 {
		workers = defaultWorkers
	}
	depth := sc.Depth
	if depth == 0 {
		depth = -1
	}

	var acquired, blocked atomic.Int64
	var frames atomic.Uint64

	pool := workgroup.WithSize(ctx, workers, depth)
	b := dispatch.NewBuilder()
	for _, res := range sc.Resources {
		b.InsertNamed(res.Name, &Counter{Value: res.Start})
	}
	d := b.WithRunner(pool).
		WithLogger(logger).
		WithEvents(&dispatch.Events{
			OnAcquired: func(dispatch.Task, time.Duration) { acquired.Add(1) },
			OnBlocked:  func(dispatch.Task, resource.ID) { blocked.Add(1) },
			OnFrame:    func(uint64, time.Duration) { frames.Add(1) },
		}).
		Build()

	logger.Info("scenario starting",
		"name", sc.Name,
		"resources", len(sc.Resources),
		"stages", len(sc.Stages),
		"workers", workers)

	store, err := d.Run(ctx, func(ctx context.Context, d *dispatch.Dispatcher, frame uint64) error {
		for _, stage := range sc.Stages {
			if err := runStage(ctx, d, pool, stage); err != nil {
				return fmt.Errorf("scenario %s: stage %s: %w", sc.Name, stage.Name, err)
			}
		}
		if sc.Stop != nil {
			if err := d.TaskFuture(stopTask(d, *sc.Stop))(ctx); err != nil {
				return fmt.Errorf("scenario %s: stop rule: %w", sc.Name, err)
			}
		}
		if sc.Frames > 0 && frame+1 >= sc.Frames {
			d.RequestTermination()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Frames:   frames.Load(),
		Acquired: acquired.Load(),
		Blocked:  blocked.Load(),
		Values:   make(map[string]int64, len(sc.Resources)),
	}
	for _, res := range sc.Resources {
		c, ok := resource.GetNamed[Counter](store, res.Name)
		if !ok {
			return nil, fmt.Errorf("scenario %s: resource %s missing from store", sc.Name, res.Name)
		}
		result.Values[res.Name] = c.Value
	}
	logger.Info("scenario finished",
		"name", sc.Name,
		"frames", result.Frames,
		"acquired", result.Acquired,
		"blocked", result.Blocked)
	return result, nil
}

// runStage executes one stage within the current frame. Parallel
// stages fan their systems out over the worker pool and wait for all
// of them; sequential stages run them in declaration order on the
// frame goroutine.
func runStage(ctx context.Context, d *dispatch.Dispatcher, pool *workgroup.Group, stage Stage) error {
	futures := make([]func(context.Context) error, len(stage.Systems))
	for i, sys := range stage.Systems {
		futures[i] = systemFuture(d, sys)
	}
	if stage.Parallel {
		return dispatch.ExecuteParallel(pool, futures...)(ctx)
	}
	return dispatch.ExecuteSequential(futures...)(ctx)
}

// systemFuture builds the per-frame future for one system. Flaky
// systems go through the retry loop with a fresh task future per
// attempt, so every attempt contends for the locks again.
func systemFuture(d *dispatch.Dispatcher, sys System) func(context.Context) error {
	req := dispatch.Required{}
	for _, name := range sys.Reads {
		req.Reads = append(req.Reads, resource.NamedID[Counter](name))
	}
	for _, name := range sys.Writes {
		req.Writes = append(req.Writes, resource.NamedID[Counter](name))
	}

	attempts := 0
	task := dispatch.TaskFunc(req, func(ctx context.Context, a *dispatch.Access) error {
		if attempts < sys.Flaky {
			attempts++
			return fmt.Errorf("system %s: attempt %d: %w", sys.Name, attempts, retry.ErrRetriable)
		}
		delta := sys.Add
		if sys.AddFrom != "" {
			delta += dispatch.ReadNamed[Counter](a, sys.AddFrom).Value
		}
		for _, name := range sys.Writes {
			dispatch.WriteNamed[Counter](a, name).Value += delta
		}
		return nil
	})

	if sys.Flaky == 0 && sys.Retries == 0 {
		return d.TaskFuture(task)
	}
	return func(ctx context.Context) error {
		backoff, err := retry.NewExpBackoff(retryBaseDelay, retryMaxDelay, sys.Retries)
		if err != nil {
			return err
		}
		return retry.Retry(ctx, backoff, func(ctx context.Context) error {
			return d.TaskFuture(task)(ctx)
		})
	}
}

// stopTask reads the stop rule's counter and requests termination once
// it has reached the threshold.
func stopTask(d *dispatch.Dispatcher, rule StopRule) dispatch.Task {
	id := resource.NamedID[Counter](rule.Resource)
	return dispatch.TaskFunc(dispatch.Required{Reads: []resource.ID{id}},
		func(ctx context.Context, a *dispatch.Access) error {
			if dispatch.ReadNamed[Counter](a, rule.Resource).Value >= rule.AtLeast {
				d.RequestTermination()
			}
			return nil
		})
}
