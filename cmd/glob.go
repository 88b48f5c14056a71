// Copyright © 2024 The moqls authors

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const sourceExt = ".cs"

// expandArgs expands arguments into the list of files to check. A pattern
// ending with "/..." names every .cs file below a directory, an argument
// containing glob metacharacters is matched with doublestar (so "**" spans
// directories), and anything else passes through unchanged. Files matching
// an exclude pattern are dropped and duplicates are removed.
func expandArgs(args []string, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		switch {
		case strings.HasSuffix(arg, "/...") || arg == "...":
			dir := strings.TrimSuffix(strings.TrimSuffix(arg, "..."), "/")
			if dir == "" {
				dir = "."
			}
			files, err := findSourceFiles(dir)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			out = append(out, files...)
		case strings.ContainsAny(arg, "*?[{"):
			files, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			if len(files) == 0 {
				return nil, fmt.Errorf("%s: no files match", arg)
			}
			out = append(out, files...)
		default:
			out = append(out, arg)
		}
	}
	return dedupe(filterExcludes(out, excludes)), nil
}

func findSourceFiles(root string) ([]string, error) {
	pattern := filepath.ToSlash(filepath.Join(root, "**", "*"+sourceExt))
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
}

// filterExcludes removes paths matching any exclude pattern.
func filterExcludes(paths []string, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	var out []string
	for _, p := range paths {
		if !matchesAny(p, excludes) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether path matches a pattern as a whole, by its base
// name, or by any one of its directory components.
func matchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	parts := strings.Split(slashed, "/")
	for _, pat := range patterns {
		pat = filepath.ToSlash(pat)
		if ok, _ := doublestar.Match(pat, slashed); ok {
			return true
		}
		for _, part := range parts {
			if ok, _ := doublestar.Match(pat, part); ok {
				return true
			}
		}
	}
	return false
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		clean := filepath.Clean(p)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, p)
	}
	return out
}
