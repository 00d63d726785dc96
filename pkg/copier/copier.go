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

// Package copier materializes a template manifest on disk.
package copier

import (
	"context"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/fsutil"
	"github.com/walteh/tb/pkg/loader"
	"github.com/walteh/tb/pkg/template"
)

// DefaultConcurrency bounds parallel filesystem work when Options leaves it unset.
const DefaultConcurrency = 16

// Options configure a Copier.
type Options struct {
	FileSystem  fsutil.FileSystem
	Loader      loader.Loader
	Concurrency int
}

// 📦 Copier copies template entries to their destinations
type Copier struct {
	fs          fsutil.FileSystem
	loader      loader.Loader
	concurrency int
}

// 🏭 New creates a copier, filling in defaults for unset options
func New(opts Options) (*Copier, error) {
	if opts.Concurrency < 0 {
		return nil, &errs.ArgumentError{Argument: "concurrency", Reason: "must not be negative"}
	}

	c := &Copier{
		fs:          opts.FileSystem,
		loader:      opts.Loader,
		concurrency: opts.Concurrency,
	}
	if c.fs == nil {
		c.fs = fsutil.New()
	}
	if c.loader == nil {
		c.loader = loader.Stub{}
	}
	if c.concurrency == 0 {
		c.concurrency = DefaultConcurrency
	}
	return c, nil
}

// 🚀 CopyTemplate creates every needed directory, then copies every file.
// Without force an existing destination file fails the copy.
func (c *Copier) CopyTemplate(ctx context.Context, tmpl *template.Template, force bool) error {
	logger := zerolog.Ctx(ctx)

	dirs := directories(tmpl)
	files := tmpl.Files()

	for _, e := range tmpl.Entries {
		if !e.IsFile() && !e.IsDirectory() {
			logger.Debug().Str("source", e.Source).Msg("skipping unsupported entry")
		}
	}

	logger.Debug().
		Str("template", tmpl.Name).
		Int("directories", len(dirs)).
		Int("files", len(files)).
		Bool("force", force).
		Msg("copying template")

	if err := c.ensureDirs(ctx, dirs); err != nil {
		return err
	}

	return c.copyFiles(ctx, files, force)
}

func (c *Copier) ensureDirs(ctx context.Context, dirs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := c.fs.EnsureDir(gctx, dir); err != nil {
				return &errs.FileSystemOperationError{Operation: errs.OperationMkdir, Destination: dir, Cause: err}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("creating directories: %w", err)
	}
	return nil
}

func (c *Copier) copyFiles(ctx context.Context, files []*template.Entry, force bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	total := len(files)
	var done atomic.Int64

	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := c.fs.CopyFile(gctx, file.Source, file.Destination, force); err != nil {
				return &errs.FileSystemOperationError{Operation: errs.OperationCopy, Destination: file.Destination, Cause: err}
			}

			n := done.Add(1)
			c.loader.Update(loader.UpdateProps{SuffixText: loader.FormatProgress(int(n), total)})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Errorf("copying files: %w", err)
	}
	return nil
}

// directories returns the parent of every file plus every directory entry, sorted and unique
func directories(tmpl *template.Template) []string {
	set := make(map[string]struct{})
	for _, e := range tmpl.Entries {
		switch {
		case e.IsFile():
			set[filepath.Dir(e.Destination)] = struct{}{}
		case e.IsDirectory():
			set[e.Destination] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for dir := range set {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}
