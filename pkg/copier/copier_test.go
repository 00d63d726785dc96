package copier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/loader"
	"github.com/walteh/tb/pkg/scan"
	"github.com/walteh/tb/pkg/template"
	"github.com/walteh/tb/pkg/testutils"
)

func manifest(src, dst string) *template.Template {
	return template.Factory{}.Create(template.Props{
		Name:        "t",
		Source:      []string{src + "/**"},
		Destination: dst,
		Entries: []*template.Entry{
			{Source: filepath.Join(src, "empty"), Destination: filepath.Join(dst, "empty"), Kind: scan.KindDirectory},
			{Source: filepath.Join(src, "a.txt"), Destination: filepath.Join(dst, "a.txt"), Kind: scan.KindFile},
			{Source: filepath.Join(src, "nested", "b.txt"), Destination: filepath.Join(dst, "nested", "b.txt"), Kind: scan.KindFile},
			{Source: filepath.Join(src, "sock"), Destination: filepath.Join(dst, "sock"), Kind: scan.KindUnsupported},
		},
	})
}

func TestCopyTemplate(t *testing.T) {
	ctx := testutils.Context(t)
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	testutils.WriteFiles(t, src, map[string]string{
		"empty/":       "",
		"a.txt":        "a",
		"nested/b.txt": "b",
	})

	rec := &loader.Recorder{}
	c, err := New(Options{Loader: rec, Concurrency: 2})
	require.NoError(t, err)

	require.NoError(t, c.CopyTemplate(ctx, manifest(src, dst), false), "copy should succeed")

	assert.Equal(t, map[string]string{"a.txt": "a", "nested/b.txt": "b"}, testutils.ReadFiles(t, dst))
	assert.DirExists(t, filepath.Join(dst, "empty"))
	assert.NoFileExists(t, filepath.Join(dst, "sock"), "unsupported entries are not copied")
	assert.Contains(t, rec.Snapshot(), "update ✅ 2/2 (100%)")
}

func TestCopyTemplateForce(t *testing.T) {
	ctx := testutils.Context(t)
	src := t.TempDir()
	dst := t.TempDir()
	testutils.WriteFiles(t, src, map[string]string{"a.txt": "new", "nested/b.txt": "b"})
	testutils.WriteFiles(t, dst, map[string]string{"a.txt": "old"})

	c, err := New(Options{})
	require.NoError(t, err)

	err = c.CopyTemplate(ctx, manifest(src, dst), false)
	var fsErr *errs.FileSystemOperationError
	require.ErrorAs(t, err, &fsErr, "existing file without force should fail")
	assert.Equal(t, errs.OperationCopy, fsErr.Operation)
	assert.Equal(t, filepath.Join(dst, "a.txt"), fsErr.Destination)
	assert.ErrorIs(t, err, os.ErrExist)

	require.NoError(t, c.CopyTemplate(ctx, manifest(src, dst), true), "force should overwrite")
	content, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestCopyTemplateInjectedFailure(t *testing.T) {
	ctx := testutils.Context(t)
	src := t.TempDir()
	dst := t.TempDir()
	testutils.WriteFiles(t, src, map[string]string{"a.txt": "a", "nested/b.txt": "b"})

	boom := errors.New("disk full")
	fsys := testutils.FailCopyTo("b.txt", boom)

	c, err := New(Options{FileSystem: fsys, Concurrency: 1})
	require.NoError(t, err)

	err = c.CopyTemplate(ctx, manifest(src, dst), false)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, errs.KindFileSystem, errs.KindOf(err))
}

func TestNewRejectsNegativeConcurrency(t *testing.T) {
	_, err := New(Options{Concurrency: -1})
	assert.Equal(t, errs.KindArgument, errs.KindOf(err))
}

func TestDirectories(t *testing.T) {
	tmpl := manifest("/src", "/dst")
	assert.Equal(t, []string{"/dst", "/dst/empty", "/dst/nested"}, directories(tmpl))
}
