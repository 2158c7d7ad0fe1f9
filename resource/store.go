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

package resource

import (
	"sort"
)

// A Store holds one value per [ID]. Values are inserted as pointers and
// fetched as pointers, so mutations made by one holder are observed by the
// next.
//
// A Store is NOT internally synchronized. The dispatch layer's lock table
// is the only serialization point for the values inside; the store itself
// must only be touched either before the frame loop starts, through an
// acquired access bundle, or after the loop has returned sole ownership.
type Store struct {
	values map[ID]any
}

// NewStore constructs an empty [Store].
func NewStore() *Store {
	return &Store{values: make(map[ID]any)}
}

// Insert registers v, which must be a non-nil pointer, under the identity
// of its pointee type and returns that [ID]. Inserting a second value with
// the same identity replaces the first.
func (s *Store) Insert(v any) ID {
	id := idOf(v, "")
	s.values[id] = v
	return id
}

// InsertNamed registers v, which must be a non-nil pointer, under the
// identity of its pointee type discriminated by name.
func (s *Store) InsertNamed(name string, v any) ID {
	id := idOf(v, name)
	s.values[id] = v
	return id
}

// Lookup returns the raw stored value for id. The dynamic type of the
// result is always a pointer to the ID's [ID.Type].
func (s *Store) Lookup(id ID) (any, bool) {
	v, ok := s.values[id]
	return v, ok
}

// Has reports whether a value is registered under id.
func (s *Store) Has(id ID) bool {
	_, ok := s.values[id]
	return ok
}

// Len returns the number of registered resources.
func (s *Store) Len() int { return len(s.values) }

// IDs returns every registered identity in a stable order.
func (s *Store) IDs() []ID {
	ids := make([]ID, 0, len(s.values))
	for id := range s.values {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Get fetches the resource of type T. It returns false if no purely
// type-keyed resource of that type is registered.
func Get[T any](s *Store) (*T, bool) {
	v, ok := s.values[IDFor[T]()]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

// GetNamed fetches the resource of type T registered under name.
func GetNamed[T any](s *Store, name string) (*T, bool) {
	v, ok := s.values[NamedID[T](name)]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}
