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

import "context"

// ExecuteSequential returns a future that invokes each of the futures
// in order, stopping at the first error.
func ExecuteSequential(futures ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, future := range futures {
			if err := future(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

// ExecuteParallel returns a future that starts every future through
// the runner and waits for all of them to settle. The first error, in
// argument order, is reported. Each future receives the context given
// to the combined future, not the runner's.
func ExecuteParallel(runner Runner, futures ...func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		outcomes := make([]Outcome, len(futures))
		for i, future := range futures {
			outcome := NewOutcome()
			outcomes[i] = outcome
			err := runner.Go(func(context.Context) {
				outcome.Set(executing)
				outcome.Set(StatusFor(future(ctx)))
			})
			if err != nil {
				outcome.Set(StatusFor(err))
			}
		}
		return Wait(ctx, outcomes)
	}
}
