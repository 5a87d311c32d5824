// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindOptions narrows which files FindDefinitionFiles returns.
type FindOptions struct {
	// Extensions lists accepted suffixes, compared case-insensitively.
	Extensions []string
	// Include, when non-empty, keeps only files matching at least one glob.
	Include []string
	// Exclude drops files (and whole directories) matching any glob.
	Exclude []string
}

// ValidatePatterns reports the first malformed glob in opts.
func (o FindOptions) ValidatePatterns() error {
	for _, p := range append(append([]string{}, o.Include...), o.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return nil
}

// FindDefinitionFiles recursively searches rootPath for definition sources.
// Globs are matched against the slash-separated path relative to rootPath.
// Files named index.<ext> are aggregation entry points, not definitions, and
// are skipped. A subdirectory that cannot be read is skipped with a warning;
// only a failure on rootPath itself is an error. The result is sorted.
func FindDefinitionFiles(rootPath string, opts FindOptions) ([]string, []string, error) {
	if len(opts.Extensions) == 0 {
		panic("extensions must not be empty")
	}
	if err := opts.ValidatePatterns(); err != nil {
		return nil, nil, err
	}

	var files, warnings []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			warnings = append(warnings, fmt.Sprintf("skipping unreadable path %s: %v", path, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(rootPath, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != rootPath && matchAny(opts.Exclude, rel) {
				return fs.SkipDir
			}
			return nil
		}

		if !hasExtension(d.Name(), opts.Extensions) || isIndexFile(d.Name()) {
			return nil
		}
		if matchAny(opts.Exclude, rel) {
			return nil
		}
		if len(opts.Include) > 0 && !matchAny(opts.Include, rel) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	if err != nil {
		return nil, warnings, err
	}

	sort.Strings(files)
	return files, warnings, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		// Patterns are validated up front, so ErrBadPattern cannot occur.
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func isIndexFile(name string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == "index"
}
