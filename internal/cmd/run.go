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
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/epochtools/lockstep/internal/sim"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario to completion",
	Long: `Run loads a scenario file, drives its frame loop until the stop
rule or frame limit fires, and prints the final counter values.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().Uint64("frames", 0, "override the scenario's frame limit")
	runCmd.Flags().Int("workers", 0, "override the scenario's worker pool size")
	_ = viper.BindPFlag("run.frames", runCmd.Flags().Lookup("frames"))
	_ = viper.BindPFlag("run.workers", runCmd.Flags().Lookup("workers"))
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	scenario, err := sim.Load(args[0])
	if err != nil {
		return err
	}
	if frames := viper.GetUint64("run.frames"); frames > 0 {
		scenario.Frames = frames
	}
	if workers := viper.GetInt("run.workers"); workers > 0 {
		scenario.Workers = workers
	}

	result, err := sim.Run(cmd.Context(), scenario, logger)
	if err != nil {
		return fmt.Errorf("run %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scenario %s finished after %d frames\n", scenario.Name, result.Frames)
	names := make([]string, 0, len(result.Values))
	for name := range result.Values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s = %d\n", name, result.Values[name])
	}
	return nil
}
