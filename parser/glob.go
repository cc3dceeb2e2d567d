package parser

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/mlwelles/graphqlOpsGen/config"
)

// ExpandGlobs resolves a glob set to the sorted list of matching files.
//
// Inclusion patterns are expanded against the filesystem; a file survives if no
// exclusion pattern matches it. Exclusion patterns that are not absolute are
// also tried against the path relative to root, so "!**/*.d.ts" works no matter
// where the tree lives. A pattern matching nothing is not an error.
func ExpandGlobs(set config.GlobSet, root string) ([]string, error) {
	excludes := set.Excludes()
	for _, p := range excludes {
		if !doublestar.ValidatePathPattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, pattern := range set.Includes() {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			m = filepath.Clean(m)
			if seen[m] {
				continue
			}
			seen[m] = true
			excluded, err := isExcluded(m, root, excludes)
			if err != nil {
				return nil, err
			}
			if !excluded {
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func isExcluded(path, root string, excludes []string) (bool, error) {
	var rel string
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	for _, p := range excludes {
		ok, err := doublestar.PathMatch(p, path)
		if err != nil {
			return false, fmt.Errorf("matching %q: %w", p, err)
		}
		if ok {
			return true, nil
		}
		if rel == "" || filepath.IsAbs(p) {
			continue
		}
		if ok, _ := doublestar.PathMatch(p, rel); ok {
			return true, nil
		}
	}
	return false, nil
}
