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

// Package resolve maps scanned paths onto destination paths.
package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/walteh/tb/pkg/errs"
	"gitlab.com/tozd/go/errors"
)

// 📦 ResolvedSourcePattern is a source pattern in absolute normalized form
type ResolvedSourcePattern struct {
	ParentPath      string // glob-free prefix, absolute
	OriginalPattern string // full pattern, absolute
	Literal         bool   // pattern has no glob syntax
}

// ResolveOptions tune a single Resolve call.
type ResolveOptions struct {
	// DestinationSubpath is joined onto the destination root. Defaults to ".".
	DestinationSubpath string
	// PreserveLastSourceDir keeps the last directory of a glob pattern's
	// concrete prefix. Literal sources are never prefixed.
	PreserveLastSourceDir bool
}

// Option configures a DestinationResolver.
type Option func(*resolverOptions)

type resolverOptions struct {
	workingDir string
}

// WithWorkingDir sets the directory relative source patterns resolve against.
func WithWorkingDir(dir string) Option {
	return func(o *resolverOptions) {
		o.workingDir = dir
	}
}

// DestinationResolver computes where a scanned path lands under a destination root.
type DestinationResolver struct {
	patterns        []ResolvedSourcePattern
	destinationRoot string
}

// 🏭 NewDestinationResolver resolves and sorts the source patterns once
func NewDestinationResolver(sources []string, destinationRoot string, opts ...Option) (*DestinationResolver, error) {
	o := &resolverOptions{}
	for _, opt := range opts {
		opt(o)
	}

	if o.workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Errorf("getting working directory: %w", err)
		}
		o.workingDir = wd
	}

	return &DestinationResolver{
		patterns:        ResolveSourcePatterns(o.workingDir, sources),
		destinationRoot: destinationRoot,
	}, nil
}

// 📋 ResolveSourcePatterns normalizes patterns against dir, most specific first.
// Ties on parent length keep literal paths ahead of globs, then input order.
func ResolveSourcePatterns(dir string, sources []string) []ResolvedSourcePattern {
	resolved := make([]ResolvedSourcePattern, 0, len(sources))
	for _, source := range sources {
		pattern := Pattern(dir, source)
		resolved = append(resolved, ResolvedSourcePattern{
			ParentPath:      GlobParent(pattern),
			OriginalPattern: pattern,
			Literal:         !IsGlob(pattern),
		})
	}

	sort.SliceStable(resolved, func(i, j int) bool {
		a, b := resolved[i], resolved[j]
		if len(a.ParentPath) != len(b.ParentPath) {
			return len(a.ParentPath) > len(b.ParentPath)
		}
		return a.Literal && !b.Literal
	})

	return resolved
}

// Patterns returns the resolved patterns in match order. OriginalPattern keeps
// its escapes; ParentPath is a plain filesystem path.
func (r *DestinationResolver) Patterns() []ResolvedSourcePattern {
	return append([]ResolvedSourcePattern(nil), r.patterns...)
}

// 🎯 Resolve returns the destination path for target.
//
// Given sources ["/projects/*.ts", "/projects/utils/**"] and root "/var/storage":
//
//	Resolve("/projects/utils/helpers.ts", {DestinationSubpath: "backup"})
//	// -> /var/storage/backup/helpers.ts
//	Resolve("/projects/utils/helpers.ts", {DestinationSubpath: "backup", PreserveLastSourceDir: true})
//	// -> /var/storage/backup/utils/helpers.ts
func (r *DestinationResolver) Resolve(target string, opts ResolveOptions) (string, error) {
	subpath := opts.DestinationSubpath
	if subpath == "" {
		subpath = "."
	}

	for _, p := range r.patterns {
		if !strings.HasPrefix(target, p.ParentPath) {
			continue
		}

		ok, err := Match(p.OriginalPattern, target)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}

		finalSubpath := subpath
		if opts.PreserveLastSourceDir && !p.Literal {
			finalSubpath = filepath.Join(subpath, filepath.Base(p.ParentPath))
		}

		rel, err := filepath.Rel(p.ParentPath, target)
		if err != nil {
			return "", errors.Errorf("relating %s to %s: %w", target, p.ParentPath, err)
		}

		return filepath.Join(r.destinationRoot, finalSubpath, rel), nil
	}

	patterns := r.Patterns()
	tried := make([]string, 0, len(patterns))
	for _, p := range patterns {
		tried = append(tried, p.OriginalPattern)
	}

	return "", &errs.NoMatchingPatternError{Target: target, Patterns: tried}
}
