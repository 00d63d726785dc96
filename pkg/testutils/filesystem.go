// Package testutils holds helpers shared by package tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tb/pkg/fsutil"
)

// 🧪 MockFileSystem delegates to the real filesystem but lets tests fail CopyFile.
// Every CopyFile call must have a matching expectation; Return(nil) means "really copy".
type MockFileSystem struct {
	mock.Mock
	fsutil.OS
}

var _ fsutil.FileSystem = (*MockFileSystem)(nil)

func (m *MockFileSystem) CopyFile(ctx context.Context, src, dst string, force bool) error {
	args := m.Called(ctx, src, dst, force)
	if err := args.Error(0); err != nil {
		return err
	}
	return m.OS.CopyFile(ctx, src, dst, force)
}

// FailCopyTo returns a MockFileSystem whose CopyFile fails with err for
// destinations whose base name is name. Every other copy goes through.
func FailCopyTo(name string, err error) *MockFileSystem {
	m := &MockFileSystem{}
	m.On("CopyFile", mock.Anything, mock.Anything, mock.MatchedBy(func(dst string) bool {
		return filepath.Base(dst) == name
	}), mock.Anything).Return(err)
	m.On("CopyFile", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

// Context returns a background context carrying a test logger.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// WriteFiles creates files below dir. Keys are slash separated relative
// paths, values the content. A key ending in "/" creates an empty directory.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if name[len(name)-1] == '/' {
			require.NoError(t, os.MkdirAll(path, fsutil.DefaultDirMode), "creating directory")
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), fsutil.DefaultDirMode), "creating parent directory")
		require.NoError(t, os.WriteFile(path, []byte(content), fsutil.DefaultFileMode), "writing file")
	}
}

// ReadFiles returns every regular file below dir keyed by its slash separated relative path.
func ReadFiles(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err, "reading tree")
	return out
}
