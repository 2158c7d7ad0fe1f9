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
	"time"

	"github.com/epochtools/lockstep/resource"
)

// Events provides a [Dispatcher] with optional callbacks to observe
// lock traffic and frame progress.
//
// See [Builder.WithEvents].
type Events struct {
	OnAcquired func(task Task, wait time.Duration)
	OnBlocked  func(task Task, id resource.ID)
	OnFrame    func(frame uint64, elapsed time.Duration)
	OnReleased func(task Task)
}

func (e *Events) doAcquired(task Task, wait time.Duration) {
	if e != nil && e.OnAcquired != nil {
		e.OnAcquired(task, wait)
	}
}

func (e *Events) doBlocked(task Task, id resource.ID) {
	if e != nil && e.OnBlocked != nil {
		e.OnBlocked(task, id)
	}
}

func (e *Events) doFrame(frame uint64, elapsed time.Duration) {
	if e != nil && e.OnFrame != nil {
		e.OnFrame(frame, elapsed)
	}
}

func (e *Events) doReleased(task Task) {
	if e != nil && e.OnReleased != nil {
		e.OnReleased(task)
	}
}
