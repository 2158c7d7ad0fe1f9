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

// An rlock is an exclusive lock over a single resource. The channel
// has a capacity of one and holding the lock means having a value in
// flight, so a full channel is a held lock.
type rlock struct {
	ch chan struct{}
}

func newRLock() *rlock {
	return &rlock{ch: make(chan struct{}, 1)}
}

// acquire blocks until the lock is held or the context is canceled.
func (l *rlock) acquire(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tryAcquire takes the lock if it is free.
func (l *rlock) tryAcquire() bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// release frees the lock, waking one waiter.
func (l *rlock) release() {
	select {
	case <-l.ch:
	default:
		panic("dispatch: release of an unheld lock")
	}
}

// await blocks until the lock has been observed to be free. The lock
// is taken and immediately dropped, so the caller must still race to
// reacquire it.
func (l *rlock) await(ctx context.Context) error {
	select {
	case l.ch <- struct{}{}:
		<-l.ch
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
