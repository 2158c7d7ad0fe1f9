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

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/epochtools/lockstep/internal/sim"
)

// executeCommand runs a cobra command with args and returns captured
// output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

const scenarioFixture = `
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

func writeScenario(t *testing.T, payload string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	r := require.New(t)
	r.Equal("lockstep-sim", rootCmd.Use)

	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	r.True(names["run"], "run subcommand missing")
	r.True(names["validate"], "validate subcommand missing")
}

func TestRunCommand(t *testing.T) {
	r := require.New(t)
	path := writeScenario(t, scenarioFixture)

	out, err := executeCommand(rootCmd, "run", path)
	r.NoError(err)
	r.Contains(out, "finished after 21 frames")
	r.Contains(out, "score = 21")
}

func TestRunCommandFrameOverride(t *testing.T) {
	r := require.New(t)
	path := writeScenario(t, scenarioFixture)

	// Flag values outlive Execute, so reset for the other tests.
	t.Cleanup(func() {
		_ = runCmd.Flags().Set("frames", "0")
	})

	out, err := executeCommand(rootCmd, "run", "--frames", "3", path)
	r.NoError(err)
	r.Contains(out, "finished after 3 frames")
	r.Contains(out, "score = 3")
}

func TestRunCommandMissingFile(t *testing.T) {
	r := require.New(t)
	_, err := executeCommand(rootCmd, "run", filepath.Join(t.TempDir(), "nope.yaml"))
	r.ErrorContains(err, "stat")
}

func TestValidateCommand(t *testing.T) {
	r := require.New(t)
	path := writeScenario(t, scenarioFixture)

	out, err := executeCommand(rootCmd, "validate", path)
	r.NoError(err)
	r.Contains(out, "scenario hello-world: 1 resources, 1 stages, 1 systems")
}

func TestValidateCommandRejectsBadScenario(t *testing.T) {
	r := require.New(t)
	path := writeScenario(t, "resources: [{name: a}]")

	_, err := executeCommand(rootCmd, "validate", path)
	r.ErrorContains(err, "name is required")
}

func TestExamplesCommand(t *testing.T) {
	r := require.New(t)
	dir := t.TempDir()

	t.Cleanup(func() {
		_ = examplesCmd.Flags().Set("workers", "4")
	})

	out, err := executeCommand(rootCmd, "examples", "--workers", "2", dir)
	r.NoError(err)
	r.Contains(out, "hello-world.yaml")

	entries, err := os.ReadDir(dir)
	r.NoError(err)
	r.Len(entries, 3)

	// Every written example must be a loadable scenario with the
	// stamped worker count.
	for _, entry := range entries {
		sc, err := sim.Load(filepath.Join(dir, entry.Name()))
		r.NoError(err, entry.Name())
		r.Equal(2, sc.Workers, entry.Name())
	}
}
