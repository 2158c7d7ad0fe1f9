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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epochtools/lockstep/internal/sim"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Check a scenario file without running it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	scenario, err := sim.Load(args[0])
	if err != nil {
		return err
	}

	systems := 0
	for _, stage := range scenario.Stages {
		systems += len(stage.Systems)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "scenario %s: %d resources, %d stages, %d systems\n",
		scenario.Name, len(scenario.Resources), len(scenario.Stages), systems)
	return nil
}
