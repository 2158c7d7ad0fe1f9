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
	"log/slog"

	"github.com/epochtools/lockstep/resource"
)

// A Builder assembles the resources and collaborators of a
// [Dispatcher]. The zero value is not usable; call [NewBuilder].
type Builder struct {
	events *Events
	logger *slog.Logger
	runner Runner
	store  *resource.Store
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{store: resource.NewStore()}
}

// Insert registers a resource with the dispatcher under
// construction. The value must be a non-nil pointer. Inserting a
// second value of the same type replaces the first.
func (b *Builder) Insert(v any) resource.ID {
	return b.mustStore().Insert(v)
}

// InsertNamed registers a resource under an explicit name, allowing
// several resources of the same type to coexist.
func (b *Builder) InsertNamed(name string, v any) resource.ID {
	return b.mustStore().InsertNamed(name, v)
}

// WithEvents injects observability callbacks into the dispatcher.
func (b *Builder) WithEvents(events *Events) *Builder {
	b.events = events
	return b
}

// WithLogger sets the logger used for per-task trace output. If unset,
// the dispatcher is silent.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRunner sets the [Runner] used by [Dispatcher.Schedule]. If
// unset, tasks will be executed using [GoRunner] over
// [context.Background].
func (b *Builder) WithRunner(runner Runner) *Builder {
	b.runner = runner
	return b
}

// Build creates the Dispatcher and transfers ownership of the inserted
// resources to it. The Builder must not be used afterwards.
func (b *Builder) Build() *Dispatcher {
	store := b.mustStore()
	b.store = nil

	locks := make(map[resource.ID]*rlock, store.Len())
	for _, id := range store.IDs() {
		locks[id] = newRLock()
	}
	runner := b.runner
	if runner == nil {
		runner = GoRunner(context.Background())
	}
	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		dispatchLock: newRLock(),
		events:       b.events,
		locks:        locks,
		logger:       logger,
		runner:       runner,
		store:        store,
	}
}

func (b *Builder) mustStore() *resource.Store {
	if b.store == nil {
		panic("dispatch: Builder used after Build")
	}
	return b.store
}
