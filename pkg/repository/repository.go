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

// Package repository stores templates as directories under one storage root.
package repository

import (
	"context"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/copier"
	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/fsutil"
	"github.com/walteh/tb/pkg/template"
	"github.com/walteh/tb/pkg/transaction"
)

// stagingPrefix marks directories that hold a template while it is being replaced
const stagingPrefix = ".tb-old-"

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9-_]+$`)

// ✅ ValidName reports whether name can be used as a template name
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Options configure a Repository.
type Options struct {
	StoragePath string
	FileSystem  fsutil.FileSystem
	Copier      *copier.Copier
}

// SaveOptions tune Save.
type SaveOptions struct {
	Force bool
}

// CopyOptions tune Copy.
type CopyOptions struct {
	Force bool
}

// 🗄️ Repository saves, extracts, deletes and lists templates
type Repository struct {
	storage string
	fs      fsutil.FileSystem
	copier  *copier.Copier
}

// 🏭 New creates a repository rooted at opts.StoragePath
func New(opts Options) (*Repository, error) {
	if opts.StoragePath == "" {
		return nil, &errs.ArgumentError{Argument: "storage path", Reason: "is required"}
	}
	if !filepath.IsAbs(opts.StoragePath) {
		return nil, &errs.ArgumentError{Argument: "storage path", Reason: "must be absolute"}
	}

	r := &Repository{
		storage: filepath.Clean(opts.StoragePath),
		fs:      opts.FileSystem,
		copier:  opts.Copier,
	}
	if r.fs == nil {
		r.fs = fsutil.New()
	}
	if r.copier == nil {
		c, err := copier.New(copier.Options{FileSystem: r.fs})
		if err != nil {
			return nil, errors.Errorf("creating copier: %w", err)
		}
		r.copier = c
	}
	return r, nil
}

// StoragePath returns the storage root.
func (r *Repository) StoragePath() string {
	return r.storage
}

// Path returns the directory a template is stored in.
func (r *Repository) Path(name string) string {
	return filepath.Join(r.storage, name)
}

// Exists reports whether a template directory exists.
func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	return r.fs.Exists(ctx, r.Path(name))
}

// EnsureStorage creates the storage root if needed.
func (r *Repository) EnsureStorage(ctx context.Context) error {
	if err := r.fs.EnsureDir(ctx, r.storage); err != nil {
		return &errs.FileSystemOperationError{Operation: errs.OperationMkdir, Destination: r.storage, Cause: err}
	}
	return nil
}

// 💾 Save writes tmpl into storage.
//
// An existing template is only replaced with force. The old copy is moved
// aside first and restored if writing the new one fails.
func (r *Repository) Save(ctx context.Context, tmpl *template.Template, opts SaveOptions) error {
	logger := zerolog.Ctx(ctx).With().Str("template", tmpl.Name).Logger()
	templatePath := r.Path(tmpl.Name)

	exists, err := r.fs.Exists(ctx, templatePath)
	if err != nil {
		return errors.Errorf("checking template: %w", err)
	}

	if !exists {
		tx, err := transaction.New(
			func(ctx context.Context) error {
				if err := r.fs.EnsureDir(ctx, templatePath); err != nil {
					return &errs.FileSystemOperationError{Operation: errs.OperationMkdir, Destination: templatePath, Cause: err}
				}
				return r.copier.CopyTemplate(ctx, tmpl, opts.Force)
			},
			transaction.WithCommit(func(ctx context.Context) error {
				logger.Debug().Str("path", templatePath).Msg("template saved")
				return nil
			}),
			transaction.WithRollback(func(ctx context.Context) error {
				return r.fs.Remove(ctx, templatePath)
			}),
		)
		if err != nil {
			return err
		}
		return tx.Run(ctx)
	}

	if !opts.Force {
		return &errs.TemplateExistsError{Name: tmpl.Name}
	}

	staging := filepath.Join(r.storage, stagingPrefix+uuid.NewString())
	moved := false

	tx, err := transaction.New(
		func(ctx context.Context) error {
			if err := r.fs.Rename(ctx, templatePath, staging); err != nil {
				return &errs.FileSystemOperationError{Operation: errs.OperationRename, Destination: staging, Cause: err}
			}
			moved = true
			if err := r.fs.EnsureDir(ctx, templatePath); err != nil {
				return &errs.FileSystemOperationError{Operation: errs.OperationMkdir, Destination: templatePath, Cause: err}
			}
			return r.copier.CopyTemplate(ctx, tmpl, true)
		},
		transaction.WithCommit(func(ctx context.Context) error {
			logger.Debug().Str("staging", staging).Msg("template replaced, removing previous version")
			return r.fs.Remove(ctx, staging)
		}),
		transaction.WithRollback(func(ctx context.Context) error {
			if !moved {
				return nil
			}
			logger.Debug().Str("staging", staging).Msg("restoring previous version")
			if err := r.fs.Remove(ctx, templatePath); err != nil {
				return err
			}
			return r.fs.Rename(ctx, staging, templatePath)
		}),
	)
	if err != nil {
		return err
	}
	return tx.Run(ctx)
}

// 📤 Copy extracts tmpl into tmpl.Destination.
// If extraction fails, every path it created is removed again.
func (r *Repository) Copy(ctx context.Context, tmpl *template.Template, opts CopyOptions) error {
	if len(tmpl.Entries) == 0 {
		return &errs.TemplateNotFoundError{Name: tmpl.Name}
	}

	created, err := r.newPaths(ctx, tmpl)
	if err != nil {
		return err
	}

	tx, err := transaction.New(
		func(ctx context.Context) error {
			return r.copier.CopyTemplate(ctx, tmpl, opts.Force)
		},
		transaction.WithCommit(func(ctx context.Context) error {
			zerolog.Ctx(ctx).Debug().Str("template", tmpl.Name).Str("destination", tmpl.Destination).Msg("template copied")
			return nil
		}),
		transaction.WithRollback(func(ctx context.Context) error {
			var rerr error
			for _, p := range created {
				if err := r.fs.Remove(ctx, p); err != nil {
					rerr = errors.Join(rerr, err)
				}
			}
			return rerr
		}),
	)
	if err != nil {
		return err
	}
	return tx.Run(ctx)
}

// newPaths returns the top-most paths an extraction of tmpl will create
func (r *Repository) newPaths(ctx context.Context, tmpl *template.Template) ([]string, error) {
	known := make(map[string]bool)
	exists := func(p string) (bool, error) {
		if v, ok := known[p]; ok {
			return v, nil
		}
		v, err := r.fs.Exists(ctx, p)
		if err != nil {
			return false, err
		}
		known[p] = v
		return v, nil
	}

	tops := make(map[string]struct{})
	for _, e := range tmpl.Entries {
		if !e.IsFile() && !e.IsDirectory() {
			continue
		}

		top := ""
		for cur := e.Destination; ; {
			ok, err := exists(cur)
			if err != nil {
				return nil, errors.Errorf("checking destination: %w", err)
			}
			if ok {
				break
			}
			top = cur
			parent := filepath.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}

		if top != "" {
			tops[top] = struct{}{}
		}
	}

	out := make([]string, 0, len(tops))
	for p := range tops {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

// 🗑️ Delete removes one template
func (r *Repository) Delete(ctx context.Context, name string) error {
	templatePath := r.Path(name)

	exists, err := r.fs.Exists(ctx, templatePath)
	if err != nil {
		return &errs.FileSystemOperationError{Operation: errs.OperationDelete, Destination: templatePath, Cause: err}
	}
	if !exists {
		return &errs.TemplateNotFoundError{Name: name}
	}

	if err := r.fs.Remove(ctx, templatePath); err != nil {
		return &errs.FileSystemOperationError{Operation: errs.OperationDelete, Destination: templatePath, Cause: err}
	}

	zerolog.Ctx(ctx).Debug().Str("template", name).Msg("template deleted")
	return nil
}

// 🗑️ DeleteMany deletes every name it can and reports the rest together
func (r *Repository) DeleteMany(ctx context.Context, names []string) error {
	var failures []error
	for _, name := range names {
		if err := r.Delete(ctx, name); err != nil {
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return &errs.AggregateError{Message: "failed to delete templates", Errors: failures}
	}
	return nil
}

// 📋 List returns the sorted names of stored templates
func (r *Repository) List(ctx context.Context) ([]string, error) {
	exists, err := r.fs.IsDir(ctx, r.storage)
	if err != nil {
		return nil, &errs.FileSystemOperationError{Operation: errs.OperationList, Destination: r.storage, Cause: err}
	}
	if !exists {
		return nil, &errs.NoTemplatesFoundError{}
	}

	entries, err := r.fs.ReadDir(ctx, r.storage)
	if err != nil {
		return nil, &errs.FileSystemOperationError{Operation: errs.OperationList, Destination: r.storage, Cause: err}
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() || !ValidName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}

	if len(names) == 0 {
		return nil, &errs.NoTemplatesFoundError{}
	}

	sort.Strings(names)
	return names, nil
}
