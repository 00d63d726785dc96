package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tb/pkg/errs"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configFile, storage, debug = "", "", false
	})
}

// 🧪 TestRoundTrip drives the whole command tree against temp directories
func TestRoundTrip(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	storageDir := t.TempDir()
	sourceDir := t.TempDir()
	destDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(sourceDir, "src", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "src", "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "src", "nested", "b.txt"), []byte("b"), 0o644))

	execute := func(args ...string) error {
		_, cmd := newRootCmd()
		cmd.SetArgs(append([]string{"--storage", storageDir}, args...))
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		return cmd.ExecuteContext(context.Background())
	}

	require.NoError(t, execute("save", "demo", filepath.Join(sourceDir, "src"), "-r"))
	assert.DirExists(t, filepath.Join(storageDir, "demo"))

	err := execute("save", "demo", filepath.Join(sourceDir, "src"), "-r")
	assert.Equal(t, errs.KindTemplateExists, errs.KindOf(err))

	require.NoError(t, execute("get", "demo", destDir))
	got, err := os.ReadFile(filepath.Join(destDir, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(got))

	require.NoError(t, execute("ls"))
	require.NoError(t, execute("rm", "demo"))
	assert.NoDirExists(t, filepath.Join(storageDir, "demo"))

	err = execute("get", "demo", destDir)
	assert.Equal(t, errs.KindTemplateNotFound, errs.KindOf(err))
}

func TestRelativeStorageRejected(t *testing.T) {
	resetFlags(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	_, cmd := newRootCmd()
	cmd.SetArgs([]string{"--storage", "relative", "list"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	err := cmd.ExecuteContext(context.Background())
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}

func TestSetupLogging(t *testing.T) {
	resetFlags(t)

	ctx := setupLogging(context.Background())
	assert.Equal(t, zerolog.WarnLevel, zerolog.Ctx(ctx).GetLevel())

	debug = true
	ctx = setupLogging(context.Background())
	assert.Equal(t, zerolog.DebugLevel, zerolog.Ctx(ctx).GetLevel())
}

func TestFormatVersion(t *testing.T) {
	out := FormatVersion(&VersionInfo{Version: "v1.2.3", Revision: "abc", Modified: true, GoVersion: "go1.23.5", Platform: "linux/amd64"})
	assert.Contains(t, out, "Version:   v1.2.3")
	assert.Contains(t, out, "Revision:  abc (modified)")
	assert.Contains(t, out, "Platform:  linux/amd64")
}
