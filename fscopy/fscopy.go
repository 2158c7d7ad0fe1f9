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

// Package fscopy materializes the contents of an [fs.FS] into the OS
// filesystem.
package fscopy

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Copy writes the contents of the given FS to files within the given
// output path. Directories are created as needed and existing files
// are overwritten; entries that are neither directories nor regular
// files are skipped.
func Copy(from fs.FS, toPath string) error {
	absPath, err := filepath.Abs(toPath)
	if err != nil {
		return fmt.Errorf("%s: %w", toPath, err)
	}
	return fs.WalkDir(from, ".",
		func(walkPath string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			outPath := filepath.Join(absPath, walkPath)
			if d.IsDir() {
				if err := os.MkdirAll(outPath, 0755); err != nil {
					return fmt.Errorf("%s: %w", outPath, err)
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if err := copyFile(from, walkPath, outPath); err != nil {
				return fmt.Errorf("%s -> %s: %w", walkPath, outPath, err)
			}
			return nil
		})
}

func copyFile(from fs.FS, walkPath, outPath string) error {
	in, err := from.Open(walkPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
