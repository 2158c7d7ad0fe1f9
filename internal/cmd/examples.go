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
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/epochtools/lockstep/fscopy"
	"github.com/epochtools/lockstep/subfs"
)

//go:embed examples
var exampleTemplates embed.FS

var examplesWorkers int

var examplesCmd = &cobra.Command{
	Use:   "examples <dir>",
	Short: "Write the built-in example scenarios to a directory",
	Long: `Examples materializes the built-in example scenarios as a starting
point for writing your own. The worker pool size is stamped into each
file before it is written.`,
	Args: cobra.ExactArgs(1),
	RunE: runExamples,
}

func init() {
	examplesCmd.Flags().IntVar(&examplesWorkers, "workers", 4, "worker pool size stamped into the examples")
	rootCmd.AddCommand(examplesCmd)
}

func runExamples(cmd *cobra.Command, args []string) error {
	templates, err := fs.Sub(exampleTemplates, "examples")
	if err != nil {
		return err
	}
	stamped := &subfs.SubstitutingFS{
		FS:       templates,
		Replacer: strings.NewReplacer("__WORKERS__", strconv.Itoa(examplesWorkers)),
	}
	if err := fscopy.Copy(stamped, args[0]); err != nil {
		return fmt.Errorf("write examples: %w", err)
	}

	names, err := fs.Glob(templates, "*.yaml")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(args[0], name))
	}
	return nil
}
