// Package scan walks source patterns and yields the matching filesystem entries.
package scan

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/resolve"
)

// Options control a single scan.
type Options struct {
	// Exclude patterns are matched against the absolute path and the
	// working-dir-relative path of every candidate.
	Exclude []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkingDir sets the directory relative patterns resolve against.
func WithWorkingDir(dir string) Option {
	return func(s *Scanner) {
		s.workingDir = dir
	}
}

// 🔍 Scanner expands glob patterns into filesystem entries
type Scanner struct {
	workingDir string
	factory    EntryFactory
}

// NewScanner creates a scanner. Without WithWorkingDir it uses the process working directory.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// 📋 Scan collects every entry matched by sources
func (s *Scanner) Scan(ctx context.Context, sources []string, opts Options) ([]*Entry, error) {
	var entries []*Entry
	err := s.Walk(ctx, sources, opts, func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// 🚶 Walk calls fn once per matched path, in walk order per pattern.
// A path matched by more than one pattern is reported once.
func (s *Scanner) Walk(ctx context.Context, sources []string, opts Options, fn func(*Entry) error) error {
	if len(sources) == 0 {
		return &errs.ArgumentError{Argument: "source", Reason: "must contain at least one pattern"}
	}
	for _, source := range sources {
		if source == "" {
			return &errs.ArgumentError{Argument: "source", Reason: "must not contain empty patterns"}
		}
	}

	wd, err := s.dir()
	if err != nil {
		return err
	}

	w := &walker{
		ctx:      ctx,
		wd:       wd,
		excludes: opts.Exclude,
		factory:  s.factory,
		seen:     make(map[string]struct{}),
		fn:       fn,
	}

	for _, source := range sources {
		pattern := resolve.Pattern(wd, source)
		if resolve.IsGlob(pattern) {
			err = w.glob(pattern)
		} else {
			err = w.literal(resolve.Unescape(pattern))
		}
		if err != nil {
			return err
		}
	}

	zerolog.Ctx(ctx).Debug().Int("entries", len(w.seen)).Strs("sources", sources).Msg("scan complete")

	return nil
}

func (s *Scanner) dir() (string, error) {
	if s.workingDir != "" {
		return s.workingDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

type walker struct {
	ctx      context.Context
	wd       string
	excludes []string
	factory  EntryFactory
	seen     map[string]struct{}
	fn       func(*Entry) error
}

func (w *walker) literal(path string) error {
	kind, err := kindOf(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			zerolog.Ctx(w.ctx).Debug().Str("path", path).Msg("literal source does not exist")
			return nil
		}
		return err
	}
	return w.emit(filepath.Base(path), path, kind)
}

func (w *walker) glob(pattern string) error {
	root, rest := resolve.Split(pattern)

	err := doublestar.GlobWalk(os.DirFS(root), rest, func(p string, d fs.DirEntry) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		// the glob-free base itself is never a match
		if p == "." {
			return nil
		}

		path := filepath.Join(root, filepath.FromSlash(p))

		kind := kindFromMode(d.Type())
		if d.Type()&fs.ModeSymlink != 0 {
			k, err := kindOf(path)
			if err != nil {
				return err
			}
			kind = k
		}

		return w.emit(d.Name(), path, kind)
	})
	if err != nil {
		return errors.Errorf("walking pattern %s: %w", pattern, err)
	}
	return nil
}

func (w *walker) emit(name, path string, kind EntryKind) error {
	if _, ok := w.seen[path]; ok {
		return nil
	}

	excluded, err := w.excluded(path)
	if err != nil {
		return err
	}
	if excluded {
		zerolog.Ctx(w.ctx).Trace().Str("path", path).Msg("excluded")
		return nil
	}

	w.seen[path] = struct{}{}

	entry, err := w.factory.Create(w.ctx, name, path, kind)
	if err != nil {
		return err
	}
	return w.fn(entry)
}

func (w *walker) excluded(path string) (bool, error) {
	if len(w.excludes) == 0 {
		return false, nil
	}

	rel, err := filepath.Rel(w.wd, path)
	if err != nil {
		rel = ""
	}

	for _, pattern := range w.excludes {
		ok, err := resolve.Match(pattern, path)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if rel == "" {
			continue
		}
		ok, err = resolve.Match(pattern, rel)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}
