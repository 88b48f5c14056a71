// Copyright © 2024 The moqls authors

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterExcludes_ByName(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"tests/AssemblyInfo.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"AssemblyInfo.cs"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_ByDirectory(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"obj/Debug/Generated.cs",
		"obj/Release/sub/Deep.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"obj"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_GlobPattern(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"tests/Foo.g.cs",
		"tests/Bar.g.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"*.g.cs"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_DoubleStar(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"tests/generated/a/One.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"tests/generated/**"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_MultiplePatterns(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"bin/Out.cs",
		"tests/AssemblyInfo.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"bin", "AssemblyInfo.cs"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_NoMatches(t *testing.T) {
	paths := []string{
		"tests/FooTests.cs",
		"lib/Helpers.cs",
	}
	result := filterExcludes(paths, []string{"nonexistent"})
	assert.Equal(t, []string{"tests/FooTests.cs", "lib/Helpers.cs"}, result)
}

func TestFilterExcludes_EmptyExcludes(t *testing.T) {
	paths := []string{"tests/FooTests.cs"}
	result := filterExcludes(paths, nil)
	assert.Equal(t, []string{"tests/FooTests.cs"}, result)
}

func TestMatchesAny_FullPath(t *testing.T) {
	assert.True(t, matchesAny("tests/FooTests.cs", []string{"tests/*.cs"}))
	assert.False(t, matchesAny("lib/FooTests.cs", []string{"tests/*.cs"}))
}

func TestMatchesAny_BaseName(t *testing.T) {
	assert.True(t, matchesAny("deep/nested/AssemblyInfo.cs", []string{"AssemblyInfo.cs"}))
}

func TestMatchesAny_Component(t *testing.T) {
	assert.True(t, matchesAny("project/obj/Generated.cs", []string{"obj"}))
	assert.False(t, matchesAny("project/object/Model.cs", []string{"obj"}))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t,
		[]string{"a/Foo.cs", "b/Bar.cs"},
		dedupe([]string{"a/Foo.cs", "b/Bar.cs", "a/./Foo.cs", "b/Bar.cs"}))
}

// writeTree creates files (relative slash paths) below a temp dir and
// returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	return dir
}

func TestExpandArgs_Recursive(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"FooTests.cs":          "",
		"sub/BarTests.cs":      "",
		"sub/deeper/Baz.cs":    "",
		"sub/readme.md":        "",
		"obj/Debug/Temp.g.cs":  "",
		"notes/FooTests.cs.md": "",
	})
	files, err := expandArgs([]string{dir + "/..."}, []string{"obj"})
	require.NoError(t, err)
	rel := relAll(t, dir, files)
	assert.ElementsMatch(t, []string{"FooTests.cs", "sub/BarTests.cs", "sub/deeper/Baz.cs"}, rel)
}

func TestExpandArgs_Glob(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"a/FooTests.cs":   "",
		"a/b/BarTests.cs": "",
		"a/Helpers.cs":    "",
	})
	files, err := expandArgs([]string{filepath.ToSlash(dir) + "/**/*Tests.cs"}, nil)
	require.NoError(t, err)
	rel := relAll(t, dir, files)
	assert.ElementsMatch(t, []string{"a/FooTests.cs", "a/b/BarTests.cs"}, rel)
}

func TestExpandArgs_GlobNoMatch(t *testing.T) {
	dir := t.TempDir()
	_, err := expandArgs([]string{filepath.ToSlash(dir) + "/*.cs"}, nil)
	assert.ErrorContains(t, err, "no files match")
}

func TestExpandArgs_PlainAndDuplicate(t *testing.T) {
	files, err := expandArgs([]string{"FooTests.cs", "./FooTests.cs", "Bar.cs"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"FooTests.cs", "Bar.cs"}, files)
}

func relAll(t *testing.T, dir string, files []string) []string {
	t.Helper()
	out := make([]string, 0, len(files))
	for _, f := range files {
		r, err := filepath.Rel(dir, f)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(r))
	}
	return out
}
