package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNoInput is returned when no file argument was given.
var ErrNoInput = errors.New("no input files")

// ExpandGlobs expands file paths, directories and glob patterns into a
// sorted unique list of regular files. A directory contributes the regular
// files directly inside it.
func ExpandGlobs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, ErrNoInput
	}

	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
		}
	}

	for _, pattern := range patterns {
		if hasGlobMeta(pattern) {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				return nil, fmt.Errorf("pattern %q: %w", pattern, err)
			}
			n := 0
			for _, match := range matches {
				if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
					add(match)
					n++
				}
			}
			if n == 0 {
				return nil, fmt.Errorf("no files match pattern %q", pattern)
			}
			continue
		}

		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(pattern)
			continue
		}

		entries, err := os.ReadDir(pattern)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", pattern, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				add(filepath.Join(pattern, entry.Name()))
			}
		}
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	slices.Sort(files)
	return files, nil
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}
