package parser

import (
	"fmt"
	"path/filepath"
)

// ExpandGlobs expands a list of file paths and glob patterns into a deduplicated
// list of input files. Argument order is preserved so that logs given as
// "ALL.TXT.1 ALL.TXT" are read oldest first; matches of a single pattern come
// back in lexical order. Patterns that don't match any files are returned as-is
// (the caller should handle file-not-found errors).
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			// Keep the literal path for a clear file-not-found error later
			add(pattern)
			continue
		}

		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
