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

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tb/pkg/errs"
)

const (
	cwd     = "/root"
	storage = "/root/.local/share/tb"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		sources []string
		root    string
		target  string
		opts    ResolveOptions
		want    string
	}{
		{
			name:    "preserve_last_dir_with_subpath",
			sources: []string{"./project/**"},
			root:    "/dest",
			target:  "/root/project/dir",
			opts:    ResolveOptions{DestinationSubpath: "sub", PreserveLastSourceDir: true},
			want:    "/dest/sub/project/dir",
		},
		{
			name:    "without_preserve",
			sources: []string{"./project/**"},
			root:    "/dest",
			target:  "/root/project/dir",
			opts:    ResolveOptions{DestinationSubpath: "sub"},
			want:    "/dest/sub/dir",
		},
		{
			name:    "default_subpath",
			sources: []string{"./project/**"},
			root:    "/dest",
			target:  "/root/project/a/b.txt",
			want:    "/dest/a/b.txt",
		},
		{
			name:    "into_storage",
			sources: []string{"./project/*"},
			root:    storage,
			target:  "/root/project/index.html",
			opts:    ResolveOptions{DestinationSubpath: "my-template"},
			want:    storage + "/my-template/index.html",
		},
		{
			name:    "explicit_file_is_not_prefixed",
			sources: []string{"./last-dir/**", "./last-dir/file.txt"},
			root:    "/dest",
			target:  "/root/last-dir/file.txt",
			opts:    ResolveOptions{PreserveLastSourceDir: true},
			want:    "/dest/file.txt",
		},
		{
			name:    "glob_sibling_of_explicit_file_is_prefixed",
			sources: []string{"./last-dir/**", "./last-dir/file.txt"},
			root:    "/dest",
			target:  "/root/last-dir/nested/dir/file.txt",
			opts:    ResolveOptions{PreserveLastSourceDir: true},
			want:    "/dest/last-dir/nested/dir/file.txt",
		},
		{
			name:    "specific_pattern_wins_regardless_of_order",
			sources: []string{"./projects/**", "./projects/utils/*", "./projects/utils/helpers/**"},
			root:    "/dest",
			target:  "/root/projects/utils/helpers/array.ts",
			opts:    ResolveOptions{PreserveLastSourceDir: true},
			want:    "/dest/helpers/array.ts",
		},
		{
			name:    "single_level_pattern_for_direct_child",
			sources: []string{"./projects/**", "./projects/utils/*", "./projects/utils/helpers/**"},
			root:    "/dest",
			target:  "/root/projects/utils/helper.ts",
			opts:    ResolveOptions{PreserveLastSourceDir: true},
			want:    "/dest/utils/helper.ts",
		},
		{
			name:    "falls_back_to_broader_pattern",
			sources: []string{"./projects/utils/*", "./projects/**"},
			root:    "/dest",
			target:  "/root/projects/utils/deep/x.ts",
			opts:    ResolveOptions{PreserveLastSourceDir: true},
			want:    "/dest/projects/utils/deep/x.ts",
		},
		{
			name:    "absolute_sources_with_backup_subpath",
			sources: []string{"/projects/*.ts", "/projects/utils/**"},
			root:    "/var/storage",
			target:  "/projects/utils/helpers.ts",
			opts:    ResolveOptions{DestinationSubpath: "backup"},
			want:    "/var/storage/backup/helpers.ts",
		},
		{
			name:    "absolute_sources_with_backup_subpath_preserved",
			sources: []string{"/projects/*.ts", "/projects/utils/**"},
			root:    "/var/storage",
			target:  "/projects/utils/helpers.ts",
			opts:    ResolveOptions{DestinationSubpath: "backup", PreserveLastSourceDir: true},
			want:    "/var/storage/backup/utils/helpers.ts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewDestinationResolver(tt.sources, tt.root, WithWorkingDir(cwd))
			require.NoError(t, err, "creating resolver should succeed")

			got, err := r.Resolve(tt.target, tt.opts)
			require.NoError(t, err, "resolve should succeed")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNoMatch(t *testing.T) {
	r, err := NewDestinationResolver([]string{"./project/*.ts"}, "/dest", WithWorkingDir(cwd))
	require.NoError(t, err)

	_, err = r.Resolve("/root/other/file.ts", ResolveOptions{})
	var noMatch *errs.NoMatchingPatternError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, "/root/other/file.ts", noMatch.Target)
	assert.Equal(t, []string{"/root/project/*.ts"}, noMatch.Patterns)

	patterns := r.Patterns()
	require.Len(t, patterns, 1)
	assert.Equal(t, "/root/project", patterns[0].ParentPath)
	patterns[0].ParentPath = "changed"
	assert.Equal(t, "/root/project", r.Patterns()[0].ParentPath, "callers get a copy")
}

func TestResolveWorkingDirWithGlobMeta(t *testing.T) {
	tests := []struct {
		name   string
		wd     string
		source string
		target string
		want   string
	}{
		{
			name:   "brackets",
			wd:     "/home/me/data[1]",
			source: "project/**",
			target: "/home/me/data[1]/project/src/a.ts",
			want:   "/dest/tmpl/src/a.ts",
		},
		{
			name:   "braces",
			wd:     "/home/me/my{proj}",
			source: "./project/*.ts",
			target: "/home/me/my{proj}/project/a.ts",
			want:   "/dest/tmpl/a.ts",
		},
		{
			name:   "literal_file",
			wd:     "/home/me/v*2?",
			source: "config/app.json",
			target: "/home/me/v*2?/config/app.json",
			want:   "/dest/tmpl/app.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewDestinationResolver([]string{tt.source}, "/dest", WithWorkingDir(tt.wd))
			require.NoError(t, err)

			got, err := r.Resolve(tt.target, ResolveOptions{DestinationSubpath: "tmpl"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	r, err := NewDestinationResolver([]string{"project/**"}, "/dest", WithWorkingDir("/home/me/data[1]"))
	require.NoError(t, err)
	_, err = r.Resolve("/home/me/data1/project/a.ts", ResolveOptions{})
	assert.Error(t, err, "brackets in the working dir are not a character class")
}

func TestResolveSourcePatternsOrder(t *testing.T) {
	got := ResolveSourcePatterns(cwd, []string{
		"./a/**",
		"./a/b/*",
		"./a/file.txt",
		"./a/*.md",
	})

	var order []string
	for _, p := range got {
		order = append(order, p.OriginalPattern)
	}

	assert.Equal(t, []string{
		"/root/a/b/*",
		"/root/a/file.txt",
		"/root/a/**",
		"/root/a/*.md",
	}, order)
	assert.Equal(t, "/root/a", got[1].ParentPath)
	assert.True(t, got[1].Literal)
}

func TestGlobHelpers(t *testing.T) {
	tests := []struct {
		pattern string
		parent  string
		glob    bool
	}{
		{pattern: "/root/project/**", parent: "/root/project", glob: true},
		{pattern: "/root/project/*.{ts,js}", parent: "/root/project", glob: true},
		{pattern: "/root/project/src/[ab].ts", parent: "/root/project/src", glob: true},
		{pattern: "/root/project/file.txt", parent: "/root/project", glob: false},
		{pattern: "/root/a/?/b", parent: "/root/a", glob: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.parent, GlobParent(tt.pattern))
			assert.Equal(t, tt.glob, IsGlob(tt.pattern))
		})
	}

	assert.Equal(t, "/root/x", Absolute("/root", "./x/"))
	assert.Equal(t, "/abs/y", Absolute("/root", "/abs/./y"))
}

func TestEscape(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		escaped string
	}{
		{name: "plain", path: "/root/project", escaped: "/root/project"},
		{name: "brackets", path: "/data[1]/tb", escaped: `/data\[1\]/tb`},
		{name: "braces_and_stars", path: "/my{proj}/*?", escaped: `/my\{proj\}/\*\?`},
		{name: "backslash", path: `/a\b`, escaped: `/a\\b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			escaped := Escape(tt.path)
			assert.Equal(t, tt.escaped, escaped)
			assert.Equal(t, tt.path, Unescape(escaped), "round trip")
			assert.False(t, IsGlob(escaped), "escaped paths carry no glob syntax")

			ok, err := Match(escaped, tt.path)
			require.NoError(t, err)
			assert.True(t, ok, "escaped path matches itself")
		})
	}

	assert.Equal(t, "/data[1]/tb", GlobParent(Escape("/data[1]/tb")+"/**"))
}

func TestPattern(t *testing.T) {
	assert.Equal(t, `/w\[1\]/src/**`, Pattern("/w[1]", "src/**"))
	assert.Equal(t, `/w\[1\]/src/a.txt`, Pattern("/w[1]", "./src/a.txt"))
	assert.Equal(t, "/abs/*.ts", Pattern("/w[1]", "/abs/*.ts"))
	assert.Equal(t, "/w/src", Pattern("/w", "src/"))
}
