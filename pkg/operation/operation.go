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

package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/fsutil"
	"github.com/walteh/tb/pkg/loader"
	"github.com/walteh/tb/pkg/repository"
	"github.com/walteh/tb/pkg/resolve"
	"github.com/walteh/tb/pkg/scan"
	"github.com/walteh/tb/pkg/template"
)

// 🎯 Operator is what the CLI drives
type Operator interface {
	// Save stores sources as a named template
	Save(ctx context.Context, props SaveProps) error
	// Get extracts a template into a destination directory
	Get(ctx context.Context, props GetProps) error
	// Delete removes templates
	Delete(ctx context.Context, props DeleteProps) error
	// List returns the stored template names
	List(ctx context.Context) ([]string, error)
}

// SaveOptions are the save flags.
type SaveOptions struct {
	Force           bool
	PreserveLastDir bool
	Recursive       bool
	Exclude         []string
}

// SaveProps describe a save.
type SaveProps struct {
	TemplateName string
	Source       []string
	Options      SaveOptions
}

// GetProps describe an extraction. An empty Destination means the working directory.
type GetProps struct {
	TemplateName string
	Destination  string
	Force        bool
}

// DeleteProps name the templates to delete.
type DeleteProps struct {
	TemplateNames []string
}

// 🔧 Options contains the collaborators of the service
type Options struct {
	// Repository stores the templates
	Repository *repository.Repository
	// FileSystem checks sources during validation
	FileSystem fsutil.FileSystem
	// Loader shows progress
	Loader loader.Loader
	// WorkingDir resolves relative sources and destinations
	WorkingDir string
	// DefaultExclude is added to the exclude patterns of every save
	DefaultExclude []string
}

// 🏭 New creates a new service with the given options
func New(opts Options) (*Service, error) {
	if opts.Repository == nil {
		return nil, errors.Errorf("repository is required")
	}

	s := &Service{
		repo:           opts.Repository,
		fs:             opts.FileSystem,
		loader:         opts.Loader,
		workingDir:     opts.WorkingDir,
		defaultExclude: opts.DefaultExclude,
	}
	if s.fs == nil {
		s.fs = fsutil.New()
	}
	if s.loader == nil {
		s.loader = loader.Stub{}
	}
	if s.workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		s.workingDir = wd
	}
	s.entries = template.EntryFactory{WorkingDir: s.workingDir}

	return s, nil
}

// 🎮 Service implements Operator
type Service struct {
	repo           *repository.Repository
	fs             fsutil.FileSystem
	loader         loader.Loader
	workingDir     string
	defaultExclude []string

	entries  template.EntryFactory
	template template.Factory
}

var _ Operator = (*Service)(nil)

func (s *Service) scanner() *scan.Scanner {
	return scan.NewScanner(scan.WithWorkingDir(s.workingDir))
}

// 💾 Save validates and prepares props, scans the sources and stores the result
func (s *Service) Save(ctx context.Context, props SaveProps) error {
	logger := zerolog.Ctx(ctx).With().Str("template", props.TemplateName).Logger()

	if err := validateSave(props); err != nil {
		return err
	}

	props.Options.Exclude = append(append([]string(nil), s.defaultExclude...), props.Options.Exclude...)
	props = prepareSave(ctx, s.fs, s.workingDir, props)

	if err := validateSources(ctx, s.fs, s.workingDir, props); err != nil {
		return err
	}

	if err := s.repo.EnsureStorage(ctx); err != nil {
		return err
	}

	exists, err := s.repo.Exists(ctx, props.TemplateName)
	if err != nil {
		return errors.Errorf("checking template: %w", err)
	}
	if exists && !props.Options.Force {
		return &errs.TemplateExistsError{Name: props.TemplateName}
	}

	s.loader.Start(fmt.Sprintf("Saving template %s", props.TemplateName))

	scanned, err := s.scanner().Scan(ctx, props.Source, scan.Options{Exclude: props.Options.Exclude})
	if err != nil {
		s.loader.Fail("Scanning sources failed")
		return errors.Errorf("scanning sources: %w", err)
	}

	entries, err := s.entries.CreateMany(ctx, template.CreateManyProps{
		Entries:      scanned,
		Source:       props.Source,
		Destination:  s.repo.StoragePath(),
		TemplateName: props.TemplateName,
		Options:      template.Options{PreserveLastDir: props.Options.PreserveLastDir},
	})
	if err != nil {
		s.loader.Fail("Resolving destinations failed")
		return err
	}

	if len(entries) == 0 && !props.Options.Force {
		s.loader.Fail("Nothing to save")
		return &errs.ValidationError{Field: "source", Reason: "no files or directories matched; use --force to save an empty template"}
	}

	tmpl := s.template.Create(template.Props{
		Name:        props.TemplateName,
		Source:      props.Source,
		Destination: s.repo.Path(props.TemplateName),
		Entries:     entries,
	})

	logger.Debug().Int("entries", len(entries)).Strs("source", props.Source).Msg("saving template")

	if err := s.repo.Save(ctx, tmpl, repository.SaveOptions{Force: props.Options.Force}); err != nil {
		s.loader.Fail(fmt.Sprintf("Saving template %s failed", props.TemplateName))
		return err
	}

	s.loader.Succeed(fmt.Sprintf("Template %s saved", props.TemplateName))
	return nil
}

// 📤 Get extracts a stored template
func (s *Service) Get(ctx context.Context, props GetProps) error {
	if err := validateName(props.TemplateName); err != nil {
		return err
	}

	destination := props.Destination
	if destination == "" {
		destination = "."
	}
	destination = resolve.Absolute(s.workingDir, destination)

	exists, err := s.repo.Exists(ctx, props.TemplateName)
	if err != nil {
		return errors.Errorf("checking template: %w", err)
	}
	if !exists {
		return &errs.TemplateNotFoundError{Name: props.TemplateName}
	}

	s.loader.Start(fmt.Sprintf("Copying template %s", props.TemplateName))

	source := []string{filepath.Join(resolve.Escape(s.repo.Path(props.TemplateName)), "**")}

	scanned, err := s.scanner().Scan(ctx, source, scan.Options{})
	if err != nil {
		s.loader.Fail("Reading template failed")
		return errors.Errorf("scanning template: %w", err)
	}

	entries, err := s.entries.CreateMany(ctx, template.CreateManyProps{
		Entries:     scanned,
		Source:      source,
		Destination: destination,
	})
	if err != nil {
		s.loader.Fail("Resolving destinations failed")
		return err
	}

	tmpl := s.template.Create(template.Props{
		Name:        props.TemplateName,
		Source:      []string{s.repo.Path(props.TemplateName)},
		Destination: destination,
		Entries:     entries,
	})

	if err := s.repo.Copy(ctx, tmpl, repository.CopyOptions{Force: props.Force}); err != nil {
		s.loader.Fail(fmt.Sprintf("Copying template %s failed", props.TemplateName))
		return err
	}

	s.loader.Succeed(fmt.Sprintf("Template %s copied to %s", props.TemplateName, destination))
	return nil
}

// 🗑️ Delete removes every named template it can
func (s *Service) Delete(ctx context.Context, props DeleteProps) error {
	if len(props.TemplateNames) == 0 {
		return &errs.ValidationError{Field: "template name", Reason: "at least one template name is required"}
	}
	for _, name := range props.TemplateNames {
		if err := validateName(name); err != nil {
			return err
		}
	}

	return s.repo.DeleteMany(ctx, props.TemplateNames)
}

// 📋 List returns stored template names
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.repo.List(ctx)
}
