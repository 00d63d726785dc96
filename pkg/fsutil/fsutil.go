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

// Package fsutil is the filesystem boundary used by the copier and the repository.
package fsutil

import (
	"context"
	"io"
	"io/fs"
	"os"

	"gitlab.com/tozd/go/errors"
)

// Default values for file modes
const (
	DefaultFileMode fs.FileMode = 0o644
	DefaultDirMode  fs.FileMode = 0o755
)

// 💾 FileSystem handles all mutating and probing file system operations
type FileSystem interface {
	// Probing
	Exists(ctx context.Context, path string) (bool, error)
	IsDir(ctx context.Context, path string) (bool, error)
	ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error)

	// Directory operations
	EnsureDir(ctx context.Context, path string) error
	Remove(ctx context.Context, path string) error

	// File operations
	CopyFile(ctx context.Context, src, dst string, force bool) error
	Rename(ctx context.Context, oldPath, newPath string) error
}

// 🔧 OS implements FileSystem on top of the os package
type OS struct{}

var _ FileSystem = OS{}

// 🏭 New returns the operating system file system
func New() OS {
	return OS{}
}

func (OS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, errors.Errorf("checking existence of %s: %w", path, err)
}

func (OS) IsDir(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, errors.Errorf("checking directory %s: %w", path, err)
	}
	return info.IsDir(), nil
}

func (OS) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Errorf("reading directory %s: %w", path, err)
	}
	return entries, nil
}

func (OS) EnsureDir(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, DefaultDirMode); err != nil {
		return errors.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

func (OS) Remove(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return errors.Errorf("removing %s: %w", path, err)
	}
	return nil
}

func (OS) Rename(ctx context.Context, oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return errors.Errorf("renaming %s to %s: %w", oldPath, newPath, err)
	}
	return nil
}

// 📋 CopyFile copies src to dst; without force an existing dst is an error
func (OS) CopyFile(ctx context.Context, src, dst string, force bool) error {
	source, err := os.Open(src)
	if err != nil {
		return errors.Errorf("opening source file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading source file info: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if force {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	destination, err := os.OpenFile(dst, flags, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating destination file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return errors.Errorf("copying file content: %w", err)
	}

	if err := destination.Close(); err != nil {
		return errors.Errorf("closing destination file: %w", err)
	}

	return nil
}
