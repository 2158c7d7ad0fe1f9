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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helloScenario = `
name: hello-world
resources:
  - name: score
stages:
  - name: update
    systems:
      - name: tick
        writes: [score]
        add: 1
stop:
  resource: score
  at_least: 21
`

func TestParse(t *testing.T) {
	r := require.New(t)

	sc, err := Parse([]byte(helloScenario))
	r.NoError(err)
	r.Equal("hello-world", sc.Name)
	r.Len(sc.Resources, 1)
	r.Equal("score", sc.Resources[0].Name)
	r.Len(sc.Stages, 1)
	r.Len(sc.Stages[0].Systems, 1)
	r.NotNil(sc.Stop)
	r.Equal(int64(21), sc.Stop.AtLeast)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "empty payload",
			payload: "  \n\t",
			want:    "payload is empty",
		},
		{
			name:    "malformed yaml",
			payload: "name: [",
			want:    "decode",
		},
		{
			name:    "missing name",
			payload: `resources: [{name: a}]`,
			want:    "name is required",
		},
		{
			name:    "negative workers",
			payload: "name: x\nworkers: -1",
			want:    "workers must not be negative",
		},
		{
			name:    "negative queue depth",
			payload: "name: x\nqueue_depth: -2",
			want:    "queue_depth must not be negative",
		},
		{
			name:    "no resources",
			payload: "name: x",
			want:    "at least one resource is required",
		},
		{
			name:    "duplicate resource",
			payload: "name: x\nresources: [{name: a}, {name: a}]",
			want:    "duplicate resource a",
		},
		{
			name:    "no stages",
			payload: "name: x\nresources: [{name: a}]",
			want:    "at least one stage is required",
		},
		{
			name: "stage without systems",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages: [{name: s}]`,
			want: "at least one system is required",
		},
		{
			name: "duplicate stage",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages:
  - {name: s, systems: [{name: t, writes: [a]}]}
  - {name: s, systems: [{name: u, writes: [a]}]}`,
			want: "duplicate stage s",
		},
		{
			name: "duplicate system",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages:
  - {name: s, systems: [{name: t, writes: [a]}, {name: t, writes: [a]}]}`,
			want: "duplicate system t",
		},
		{
			name: "system without resources",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, add: 1}]}]`,
			want: "at least one read or write is required",
		},
		{
			name: "unknown write",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, writes: [b]}]}]`,
			want: "unknown resource b in writes",
		},
		{
			name: "unknown read",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, reads: [b], writes: [a]}]}]`,
			want: "unknown resource b in reads",
		},
		{
			name: "undeclared add_from",
			payload: `
name: x
frames: 1
resources: [{name: a}, {name: b}]
stages: [{name: s, systems: [{name: t, writes: [a], add_from: b}]}]`,
			want: "add_from b must be declared",
		},
		{
			name: "negative retries",
			payload: `
name: x
frames: 1
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, writes: [a], retries: -1}]}]`,
			want: "flaky and retries must not be negative",
		},
		{
			name: "unknown stop resource",
			payload: `
name: x
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, writes: [a]}]}]
stop: {resource: b, at_least: 1}`,
			want: "stop: unknown resource b",
		},
		{
			name: "never terminates",
			payload: `
name: x
resources: [{name: a}]
stages: [{name: s, systems: [{name: t, writes: [a]}]}]`,
			want: "a stop rule or a frame limit is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNormalized(t *testing.T) {
	a := assert.New(t)

	sc := Scenario{
		Name:      " padded ",
		Resources: []Resource{{Name: " score ", Start: 3}},
		Stages: []Stage{{
			Name:    " update ",
			Systems: []System{{Name: " tick ", Writes: []string{" score ", ""}}},
		}},
		Stop: &StopRule{Resource: " score ", AtLeast: 9},
	}
	n := sc.Normalized()
	a.Equal("padded", n.Name)
	a.Equal("score", n.Resources[0].Name)
	a.Equal(int64(3), n.Resources[0].Start)
	a.Equal("update", n.Stages[0].Name)
	a.Equal([]string{"score"}, n.Stages[0].Systems[0].Writes)
	a.Equal("score", n.Stop.Resource)

	// Normalized returns a copy; the input is untouched.
	a.Equal(" padded ", sc.Name)
	a.Equal([]string{" score ", ""}, sc.Stages[0].Systems[0].Writes)
}

func TestLoad(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "hello.yaml")
	r.NoError(os.WriteFile(path, []byte(helloScenario), 0o644))

	sc, err := Load(path)
	r.NoError(err)
	r.Equal("hello-world", sc.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	r.ErrorContains(err, "stat")

	_, err = Load(dir)
	r.ErrorContains(err, "is a directory")

	bad := filepath.Join(dir, "bad.yaml")
	r.NoError(os.WriteFile(bad, []byte("resources: [{name: a}]"), 0o644))
	_, err = Load(bad)
	r.ErrorContains(err, "name is required")
	r.ErrorContains(err, bad)
}
