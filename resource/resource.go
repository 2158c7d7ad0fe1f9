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

/*
Package resource provides stable identities for shared mutable values and a
heterogeneous [Store] that holds one value per identity.

An [ID] names a resource. Most resources are identified purely by their Go
type:

	id := resource.IDFor[WorldClock]()

When several resources share one Go type, a name disambiguates them:

	gold := resource.NamedID[Counter]("gold")
	wood := resource.NamedID[Counter]("wood")

IDs are comparable values and are used as map keys by the store and by the
dispatch layer's lock table.

A [Store] performs no locking of its own. Exclusive access to its values is
the job of the package dispatch coordination protocol; the store is only the
container.
*/
package resource

import (
	"fmt"
	"reflect"
)

// ID uniquely identifies one resource held in a [Store]. The zero ID is not
// a valid identity.
type ID struct {
	typ  reflect.Type
	name string
}

// IDFor returns the identity of the resource of type T.
func IDFor[T any]() ID {
	return ID{typ: reflect.TypeOf((*T)(nil)).Elem()}
}

// NamedID returns the identity of the resource of type T registered under
// the given name. Resources with the same type but different names are
// distinct.
func NamedID[T any](name string) ID {
	return ID{typ: reflect.TypeOf((*T)(nil)).Elem(), name: name}
}

// Type returns the Go type of the resource's value.
func (id ID) Type() reflect.Type { return id.typ }

// Name returns the discriminator name, or "" for a purely type-keyed
// resource.
func (id ID) Name() string { return id.name }

// IsZero reports whether the ID carries no identity.
func (id ID) IsZero() bool { return id.typ == nil }

func (id ID) String() string {
	if id.typ == nil {
		return "resource.ID(zero)"
	}
	if id.name == "" {
		return id.typ.String()
	}
	return fmt.Sprintf("%s:%s", id.typ, id.name)
}

// idOf derives the identity for a value passed to [Store.Insert]. The value
// must be a non-nil pointer; the identity is that of the pointee type.
func idOf(v any, name string) ID {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		panic(fmt.Sprintf("resource: Insert requires a non-nil pointer, got %T", v))
	}
	return ID{typ: rv.Type().Elem(), name: name}
}
