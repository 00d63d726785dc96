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
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// globMeta are the characters doublestar treats as pattern syntax
const globMeta = "*?[{"

// escapable are the characters Escape prefixes with a backslash
const escapable = "\\*?[]{}"

// 🔍 IsGlob reports whether the pattern contains unescaped glob syntax
func IsGlob(pattern string) bool {
	pattern = filepath.ToSlash(pattern)
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && escapes() {
			i++
			continue
		}
		if strings.IndexByte(globMeta, pattern[i]) >= 0 {
			return true
		}
	}
	return false
}

// 🛡️ Escape quotes glob syntax in a concrete path so doublestar matches it literally.
// Backslash is the path separator on Windows, so paths are returned unchanged there.
func Escape(path string) string {
	if !escapes() {
		return path
	}
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		if strings.IndexByte(escapable, path[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(path[i])
	}
	return b.String()
}

// Unescape reverses Escape.
func Unescape(pattern string) string {
	if !escapes() || !strings.Contains(pattern, "\\") {
		return pattern
	}
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i++
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}

func escapes() bool {
	return filepath.Separator != '\\'
}

// ✂️ Split cuts a pattern at the last slash before its first unescaped glob
// character. base is an unescaped filesystem path ready for os.DirFS, rest is
// the pattern below it. It follows doublestar.SplitPattern but unescapes every
// escape Escape adds, backslashes included.
func Split(pattern string) (base, rest string) {
	pattern = filepath.ToSlash(filepath.Clean(pattern))

	splitIdx := -1
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c == '\\' && escapes() {
			i++
		} else if c == '/' {
			splitIdx = i
		} else if strings.IndexByte(globMeta, c) >= 0 {
			break
		}
	}

	switch {
	case splitIdx == 0:
		return string(filepath.Separator), pattern[1:]
	case splitIdx > 0:
		return filepath.FromSlash(Unescape(pattern[:splitIdx])), pattern[splitIdx+1:]
	default:
		return ".", pattern
	}
}

// 📁 GlobParent returns the glob-free directory prefix of a pattern as a
// filesystem path. For a plain path it is the parent directory.
func GlobParent(pattern string) string {
	base, _ := Split(pattern)
	return base
}

// 🎯 Absolute resolves a possibly relative filesystem path against dir and cleans it
func Absolute(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// 🧩 Pattern turns a source into an absolute pattern. The working directory
// is escaped so only the source itself contributes glob syntax. A source
// without unescaped glob syntax names exactly one path and is escaped whole.
func Pattern(dir, source string) string {
	if !IsGlob(source) {
		return Escape(Absolute(dir, Unescape(source)))
	}
	if filepath.IsAbs(source) {
		return filepath.Clean(source)
	}
	return filepath.Join(Escape(dir), source)
}

// ✅ Match reports whether the path matches the pattern. Both are
// compared with forward slashes so Windows separators behave.
func Match(pattern, path string) (bool, error) {
	ok, err := doublestar.Match(filepath.ToSlash(pattern), filepath.ToSlash(path))
	if err != nil {
		return false, errors.Errorf("matching %q against %q: %w", path, pattern, err)
	}
	return ok, nil
}
