// Package pathfilter matches file paths against include and exclude globs.
//
// Patterns use doublestar syntax ("**/*.md", "drafts/**") and are matched
// against the slash-separated path relative to a root, then against the
// base name.
package pathfilter

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExcludes are skipped in every directory walk.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/.DS_Store",
	"**/node_modules/**",
	"**/*.tmp",
}

// Filter decides which files under Root are wanted.
type Filter struct {
	Root    string
	Include []string
	Exclude []string
}

// New validates the patterns and returns a filter rooted at root.
// DefaultExcludes are always added.
func New(root string, include, exclude []string) (*Filter, error) {
	f := &Filter{Root: root}
	for _, p := range include {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid include pattern %q", p)
		}
		f.Include = append(f.Include, p)
	}
	for _, p := range append(append([]string{}, DefaultExcludes...), exclude...) {
		p = filepath.ToSlash(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
		f.Exclude = append(f.Exclude, p)
	}
	return f, nil
}

// Match reports whether the file at path is included and not excluded.
// An empty include list includes everything.
func (f *Filter) Match(path string) bool {
	rel, base, ok := f.rel(path)
	if !ok {
		return false
	}
	if matchAny(f.Exclude, rel, base) {
		return false
	}
	return len(f.Include) == 0 || matchAny(f.Include, rel, base)
}

// SkipDir reports whether a walk should not descend into dir.
func (f *Filter) SkipDir(dir string) bool {
	rel, base, ok := f.rel(dir)
	if !ok || rel == "." {
		return false
	}
	// "x/**" patterns match anything below x, so probe with a child path.
	return matchAny(f.Exclude, rel+"/_", base)
}

func (f *Filter) rel(path string) (string, string, bool) {
	rel, err := filepath.Rel(f.Root, path)
	if err != nil {
		return "", "", false
	}
	return filepath.ToSlash(rel), filepath.Base(path), true
}

func matchAny(patterns []string, rel, base string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}
	return false
}
