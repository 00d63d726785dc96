// Package template builds the in-memory manifest of a template: which source
// path lands at which destination path.
package template

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/resolve"
	"github.com/walteh/tb/pkg/scan"
)

// 📄 Entry is one source path and the destination it is copied to
type Entry struct {
	Source      string
	Destination string
	Kind        scan.EntryKind
}

func (e *Entry) IsFile() bool      { return e.Kind == scan.KindFile }
func (e *Entry) IsDirectory() bool { return e.Kind == scan.KindDirectory }

// 📦 Template is the manifest built for one save or get operation
type Template struct {
	Name        string
	Source      []string
	Destination string
	Entries     []*Entry
}

// Files returns the file entries in manifest order.
func (t *Template) Files() []*Entry {
	return t.filter(scan.KindFile)
}

// Directories returns the directory entries in manifest order.
func (t *Template) Directories() []*Entry {
	return t.filter(scan.KindDirectory)
}

func (t *Template) filter(kind scan.EntryKind) []*Entry {
	var out []*Entry
	for _, e := range t.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Props are the parts a Template is assembled from.
type Props struct {
	Name        string
	Source      []string
	Destination string
	Entries     []*Entry
}

// 🏭 Factory assembles templates
type Factory struct{}

// Create aggregates props into a Template.
func (Factory) Create(props Props) *Template {
	return &Template{
		Name:        props.Name,
		Source:      props.Source,
		Destination: props.Destination,
		Entries:     props.Entries,
	}
}

// Options tune how destinations are computed.
type Options struct {
	PreserveLastDir bool
}

// CreateManyProps describe a batch of scanned entries to place under Destination.
type CreateManyProps struct {
	Entries      []*scan.Entry
	Source       []string
	Destination  string
	TemplateName string
	Options      Options
}

// 🏭 EntryFactory turns scanned entries into template entries
type EntryFactory struct {
	// WorkingDir resolves relative Source patterns. Empty means the process working directory.
	WorkingDir string
}

// 📝 CreateMany resolves the destination of every named entry.
// The template name becomes the destination subpath.
func (f EntryFactory) CreateMany(ctx context.Context, props CreateManyProps) ([]*Entry, error) {
	var opts []resolve.Option
	if f.WorkingDir != "" {
		opts = append(opts, resolve.WithWorkingDir(f.WorkingDir))
	}

	resolver, err := resolve.NewDestinationResolver(props.Source, props.Destination, opts...)
	if err != nil {
		return nil, errors.Errorf("creating destination resolver: %w", err)
	}

	subpath := props.TemplateName
	if subpath == "" {
		subpath = "."
	}

	entries := make([]*Entry, 0, len(props.Entries))
	for _, scanned := range props.Entries {
		if scanned.Name() == "" {
			continue
		}

		dest, err := resolver.Resolve(scanned.Path(), resolve.ResolveOptions{
			DestinationSubpath:    subpath,
			PreserveLastSourceDir: props.Options.PreserveLastDir,
		})
		if err != nil {
			return nil, errors.Errorf("resolving destination for %s: %w", scanned.Path(), err)
		}

		entries = append(entries, &Entry{
			Source:      scanned.Path(),
			Destination: dest,
			Kind:        scanned.Kind(),
		})
	}

	zerolog.Ctx(ctx).Debug().
		Str("template", props.TemplateName).
		Int("entries", len(entries)).
		Msg("template entries created")

	return entries, nil
}
