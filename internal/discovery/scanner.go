package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Scanner finds contestant sources in a directory tree
type Scanner struct {
	skipDirs map[string]bool
	isSource func(path string) bool
}

// NewScanner creates a new Scanner. isSource decides which files are sources.
func NewScanner(skipDirs []string, isSource func(path string) bool) *Scanner {
	skipMap := make(map[string]bool)
	for _, dir := range skipDirs {
		skipMap[dir] = true
	}
	return &Scanner{skipDirs: skipMap, isSource: isSource}
}

// Scan finds all sources below root, sorted by path
func (s *Scanner) Scan(root string) ([]string, error) {
	var sources []string

	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %s", root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			name := d.Name()
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if s.skipDirs[name] {
				return filepath.SkipDir
			}
			return nil
		}

		if s.isSource(path) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(sources)
	return sources, nil
}
