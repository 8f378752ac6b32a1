package discovery

import (
	"path/filepath"
	"strings"
)

// Filter filters sources by name pattern
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the paths whose base name matches pattern.
// Supports wildcards like "*A.cpp" or "*1520*"; a pattern without wildcards matches as a substring.
func (f *Filter) FilterByName(paths []string, pattern string) []string {
	if pattern == "" {
		return paths
	}

	var filtered []string
	for _, path := range paths {
		if matchName(filepath.Base(path), pattern) {
			filtered = append(filtered, path)
		}
	}
	return filtered
}

func matchName(name, pattern string) bool {
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}

	// Looser fallback: every literal part of the pattern appears in order.
	if !strings.Contains(pattern, "*") {
		return false
	}
	rest := name
	matchedAny := false
	for _, part := range strings.Split(pattern, "*") {
		if part == "" {
			continue
		}
		i := strings.Index(rest, part)
		if i < 0 {
			return false
		}
		rest = rest[i+len(part):]
		matchedAny = true
	}
	return matchedAny
}
