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

// Package subfs substitutes placeholder strings in the contents of a
// filesystem. It is used to stamp parameters into embedded file
// templates before they are copied elsewhere.
package subfs

import (
	"io"
	"io/fs"
	"strings"
)

// SubstitutingFS wraps a filesystem and applies the Replacer to the
// contents of every regular file as it is read. Directories pass
// through untouched, so the wrapped filesystem can be traversed with
// [fs.WalkDir].
type SubstitutingFS struct {
	FS       fs.FS
	Replacer *strings.Replacer
}

var _ fs.FS = (*SubstitutingFS)(nil)

// Open implements [fs.FS].
func (s *SubstitutingFS) Open(name string) (fs.File, error) {
	file, err := s.FS.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() || s.Replacer == nil {
		return file, nil
	}
	data, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		return nil, err
	}
	return &substitutedFile{
		Reader: strings.NewReader(s.Replacer.Replace(string(data))),
		info:   info,
	}, nil
}

// substitutedFile presents replaced content with a consistent size.
type substitutedFile struct {
	*strings.Reader
	info fs.FileInfo
}

var _ fs.File = (*substitutedFile)(nil)

func (f *substitutedFile) Close() error { return nil }

func (f *substitutedFile) Stat() (fs.FileInfo, error) {
	return &substitutedInfo{FileInfo: f.info, size: f.Size()}, nil
}

type substitutedInfo struct {
	fs.FileInfo
	size int64
}

func (i *substitutedInfo) Size() int64 { return i.size }
