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

package subfs

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestSubFS(t *testing.T) {
	r := require.New(t)

	sub := &SubstitutingFS{
		FS: &fstest.MapFS{
			"test.txt": &fstest.MapFile{
				Data: []byte("Hello __FOO__"),
			},
		},
		Replacer: strings.NewReplacer("__FOO__", "world!"),
	}

	data, err := fs.ReadFile(sub, "test.txt")
	r.NoError(err)
	r.Equal("Hello world!", string(data))

	// The reported size must match the substituted content, not the
	// original.
	info, err := fs.Stat(sub, "test.txt")
	r.NoError(err)
	r.Equal(int64(len("Hello world!")), info.Size())
}

func TestSubFSWalk(t *testing.T) {
	r := require.New(t)

	sub := &SubstitutingFS{
		FS: &fstest.MapFS{
			"dir/a.txt": &fstest.MapFile{Data: []byte("__X__")},
			"dir/b.txt": &fstest.MapFile{Data: []byte("__X__ and __X__")},
		},
		Replacer: strings.NewReplacer("__X__", "y"),
	}

	var seen []string
	err := fs.WalkDir(sub, ".", func(path string, d fs.DirEntry, err error) error {
		r.NoError(err)
		if !d.IsDir() {
			seen = append(seen, path)
		}
		return nil
	})
	r.NoError(err)
	r.Equal([]string{"dir/a.txt", "dir/b.txt"}, seen)

	data, err := fs.ReadFile(sub, "dir/b.txt")
	r.NoError(err)
	r.Equal("y and y", string(data))
}

func TestSubFSNilReplacer(t *testing.T) {
	r := require.New(t)

	sub := &SubstitutingFS{
		FS: &fstest.MapFS{
			"raw.txt": &fstest.MapFile{Data: []byte("__FOO__")},
		},
	}

	data, err := fs.ReadFile(sub, "raw.txt")
	r.NoError(err)
	r.Equal("__FOO__", string(data))
}
