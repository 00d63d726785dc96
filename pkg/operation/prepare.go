package operation

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/fsutil"
	"github.com/walteh/tb/pkg/repository"
	"github.com/walteh/tb/pkg/resolve"
)

// prepareSave expands bare exclude names and turns plain directory sources into globs
func prepareSave(ctx context.Context, fsys fsutil.FileSystem, wd string, props SaveProps) SaveProps {
	props.Options.Exclude = prepareExclude(props.Options.Exclude)
	props.Source = prepareSource(ctx, fsys, wd, props.Source, props.Options.Recursive)

	zerolog.Ctx(ctx).Debug().
		Strs("source", props.Source).
		Strs("exclude", props.Options.Exclude).
		Msg("prepared save")

	return props
}

// prepareSource keeps globs as written. A source naming an existing path is
// escaped, so brackets or braces in real file names are not read as globs.
func prepareSource(ctx context.Context, fsys fsutil.FileSystem, wd string, sources []string, recursive bool) []string {
	out := make([]string, 0, len(sources))
	for _, source := range sources {
		path := resolve.Absolute(wd, source)

		exists, err := fsys.Exists(ctx, path)
		if err != nil || !exists {
			if resolve.IsGlob(source) {
				out = append(out, source)
			} else {
				out = append(out, filepath.Clean(source))
			}
			continue
		}

		isDir, err := fsys.IsDir(ctx, path)
		if err != nil || !isDir {
			out = append(out, resolve.Escape(filepath.Clean(source)))
			continue
		}

		if recursive {
			out = append(out, filepath.Join(resolve.Escape(filepath.Clean(source)), "**"))
		} else {
			out = append(out, filepath.Join(resolve.Escape(filepath.Clean(source)), "*"))
		}
	}
	return out
}

// prepareExclude turns "node_modules" into "**/node_modules/**" and "**/node_modules".
// Path excludes are cleaned, so "./project/config.json" matches the
// working-dir-relative path "project/config.json".
func prepareExclude(exclude []string) []string {
	out := make([]string, 0, len(exclude))
	for _, pattern := range exclude {
		switch {
		case pattern == "":
			out = append(out, pattern)
		case strings.ContainsAny(pattern, "./*"):
			out = append(out, filepath.Clean(pattern))
		default:
			out = append(out, "**/"+pattern+"/**", "**/"+pattern)
		}
	}
	return out
}

func validateName(name string) error {
	if !repository.ValidName(name) {
		return &errs.ValidationError{Field: "template name", Value: name, Reason: "may only contain letters, digits, '-' and '_'"}
	}
	return nil
}

func validateSave(props SaveProps) error {
	if err := validateName(props.TemplateName); err != nil {
		return err
	}

	if len(props.Source) == 0 {
		return &errs.ValidationError{Field: "source", Reason: "at least one source is required"}
	}

	seen := make(map[string]struct{}, len(props.Source))
	for _, source := range props.Source {
		if source == "" {
			return &errs.ValidationError{Field: "source", Reason: "sources must not be empty"}
		}
		if _, ok := seen[source]; ok {
			return &errs.ValidationError{Field: "source", Value: source, Reason: "duplicate source paths detected"}
		}
		seen[source] = struct{}{}
		if !doublestar.ValidatePattern(filepath.ToSlash(source)) {
			return &errs.ValidationError{Field: "source", Value: source, Reason: "malformed glob pattern"}
		}
	}

	for _, pattern := range props.Options.Exclude {
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return &errs.ValidationError{Field: "exclude", Value: pattern, Reason: "malformed glob pattern"}
		}
	}

	return nil
}

// validateSources reports plain sources that do not exist or are empty directories.
// Empty directories are tolerated with force, missing paths never are.
func validateSources(ctx context.Context, fsys fsutil.FileSystem, wd string, props SaveProps) error {
	var invalid, empty []string

	for _, source := range props.Source {
		pattern := resolve.Pattern(wd, source)
		path := resolve.Unescape(pattern)
		if resolve.IsGlob(pattern) {
			// a glob is checked through its concrete prefix
			path = resolve.GlobParent(pattern)
		}

		exists, err := fsys.Exists(ctx, path)
		if err != nil {
			return err
		}
		if !exists {
			invalid = append(invalid, source)
			continue
		}

		isDir, err := fsys.IsDir(ctx, path)
		if err != nil {
			return err
		}
		if !isDir {
			continue
		}

		children, err := fsys.ReadDir(ctx, path)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			empty = append(empty, source)
		}
	}

	if len(invalid) > 0 || (len(empty) > 0 && !props.Options.Force) {
		return &errs.SourceValidationError{EmptyDirs: empty, InvalidPaths: invalid}
	}
	return nil
}
