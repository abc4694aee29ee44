package corpus

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Discover returns the sorted, deduplicated absolute paths of regular files
// matching any of the given glob patterns. Patterns support "**".
func Discover(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	for _, pattern := range patterns {
		pattern, err := absPattern(pattern)
		if err != nil {
			return nil, err
		}

		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, err
		}

		for _, m := range matches {
			abs, err := filepath.Abs(m)
			if err != nil {
				continue
			}
			info, err := os.Stat(abs)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if !seen[abs] {
				seen[abs] = true
				result = append(result, abs)
			}
		}
	}

	slices.Sort(result)
	return result, nil
}

// WatchDirs returns the static directory prefixes of the patterns, the
// directories a watcher must observe to see new matching files.
func WatchDirs(patterns []string) []string {
	seen := make(map[string]bool)
	var dirs []string

	for _, pattern := range patterns {
		if p, err := absPattern(pattern); err == nil {
			pattern = p
		}
		dir := staticPrefix(pattern)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// staticPrefix returns the longest directory path before the first glob character.
func staticPrefix(pattern string) string {
	for i, c := range pattern {
		if c == '*' || c == '?' || c == '[' || c == '{' {
			return filepath.Dir(pattern[:i])
		}
	}
	// No glob characters: pattern is a literal file path; watch its directory.
	return filepath.Dir(pattern)
}

// Matches reports whether path matches any of the patterns.
func Matches(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if p, err := absPattern(pattern); err == nil {
			pattern = p
		}
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
		// Match treats ** the same on every platform.
		if strings.Contains(pattern, "**") {
			if ok, _ := doublestar.Match(filepath.ToSlash(pattern), filepath.ToSlash(path)); ok {
				return true
			}
		}
	}
	return false
}

func absPattern(pattern string) (string, error) {
	if filepath.IsAbs(pattern) {
		return pattern, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, pattern), nil
}
