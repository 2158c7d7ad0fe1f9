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
	"testing"

	"github.com/stretchr/testify/require"
)

type clock struct{ tick int }

type counter struct{ value int64 }

func TestIDIdentity(t *testing.T) {
	r := require.New(t)

	r.Equal(IDFor[clock](), IDFor[clock]())
	r.NotEqual(IDFor[clock](), IDFor[counter]())
	r.NotEqual(IDFor[counter](), NamedID[counter]("gold"))
	r.NotEqual(NamedID[counter]("gold"), NamedID[counter]("wood"))
	r.Equal(NamedID[counter]("gold"), NamedID[counter]("gold"))

	r.True(ID{}.IsZero())
	r.False(IDFor[clock]().IsZero())
}

func TestIDString(t *testing.T) {
	r := require.New(t)

	r.Equal("resource.clock", IDFor[clock]().String())
	r.Equal("resource.counter:gold", NamedID[counter]("gold").String())
	r.Equal("resource.ID(zero)", ID{}.String())
}

func TestStoreRoundTrip(t *testing.T) {
	r := require.New(t)

	s := NewStore()
	id := s.Insert(&clock{tick: 3})
	r.Equal(IDFor[clock](), id)
	r.True(s.Has(id))
	r.Equal(1, s.Len())

	c, ok := Get[clock](s)
	r.True(ok)
	r.Equal(3, c.tick)

	// Mutations through the fetched pointer are visible to later fetches.
	c.tick = 9
	again, ok := Get[clock](s)
	r.True(ok)
	r.Equal(9, again.tick)

	_, ok = Get[counter](s)
	r.False(ok)
}

func TestStoreNamed(t *testing.T) {
	r := require.New(t)

	s := NewStore()
	s.InsertNamed("gold", &counter{value: 10})
	s.InsertNamed("wood", &counter{value: 20})

	gold, ok := GetNamed[counter](s, "gold")
	r.True(ok)
	r.EqualValues(10, gold.value)

	wood, ok := GetNamed[counter](s, "wood")
	r.True(ok)
	r.EqualValues(20, wood.value)

	// The unnamed identity is a different resource.
	_, ok = Get[counter](s)
	r.False(ok)
}

func TestStoreReplace(t *testing.T) {
	r := require.New(t)

	s := NewStore()
	s.Insert(&clock{tick: 1})
	s.Insert(&clock{tick: 2})

	r.Equal(1, s.Len())
	c, ok := Get[clock](s)
	r.True(ok)
	r.Equal(2, c.tick)
}

func TestStoreInsertRequiresPointer(t *testing.T) {
	r := require.New(t)

	s := NewStore()
	r.PanicsWithValue(
		"resource: Insert requires a non-nil pointer, got resource.clock",
		func() { s.Insert(clock{}) })
	r.Panics(func() { s.Insert(nil) })
	r.Panics(func() { s.Insert((*clock)(nil)) })
}

func TestStoreIDsStable(t *testing.T) {
	r := require.New(t)

	s := NewStore()
	s.InsertNamed("wood", &counter{})
	s.Insert(&clock{})
	s.InsertNamed("gold", &counter{})

	ids := s.IDs()
	r.Len(ids, 3)
	r.Equal(ids, s.IDs())

	v, ok := s.Lookup(NamedID[counter]("gold"))
	r.True(ok)
	r.IsType(&counter{}, v)
}
