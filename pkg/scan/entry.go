// Copyright 2025 walteh LLC
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

package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📄 EntryKind discriminates what a scanned path is
type EntryKind int

const (
	KindUnsupported EntryKind = iota
	KindFile
	KindDirectory
)

// String returns a string representation of EntryKind
func (k EntryKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unsupported"
	}
}

// Entry is one scanned filesystem path. It is immutable after construction.
type Entry struct {
	name string
	path string
	kind EntryKind
}

// 🏭 NewEntry creates an entry; path must be absolute
func NewEntry(name, path string, kind EntryKind) (*Entry, error) {
	if !filepath.IsAbs(path) {
		return nil, errors.Errorf("file system entry path must be an absolute path: %s", path)
	}
	return &Entry{name: name, path: path, kind: kind}, nil
}

func (e *Entry) Name() string      { return e.name }
func (e *Entry) Path() string      { return e.path }
func (e *Entry) Kind() EntryKind   { return e.kind }
func (e *Entry) IsFile() bool      { return e.kind == KindFile }
func (e *Entry) IsDirectory() bool { return e.kind == KindDirectory }

// 🏭 EntryFactory turns raw walk results into entries
type EntryFactory struct{}

// 📝 Create builds an entry and warns about unsupported kinds
func (f EntryFactory) Create(ctx context.Context, name, path string, kind EntryKind) (*Entry, error) {
	logger := zerolog.Ctx(ctx)

	if kind == KindUnsupported {
		logger.Warn().Str("path", path).Msgf("unsupported file type: '%s'", filepath.Base(path))
	}
	logger.Trace().Str("path", path).Stringer("kind", kind).Msg("scanned entry")

	return NewEntry(name, path, kind)
}

func kindOf(path string) (EntryKind, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return KindUnsupported, errors.Errorf("reading file info: %w", err)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := os.Stat(path)
		if err != nil {
			// dangling link
			return KindUnsupported, nil
		}
		info = target
	}

	return kindFromMode(info.Mode()), nil
}

func kindFromMode(mode fs.FileMode) EntryKind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindUnsupported
	}
}
