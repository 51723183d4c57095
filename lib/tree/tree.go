// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
)

// Root is the relative path of the extraction root itself.
const Root = "."

// PathSet is a set of relative paths.
type PathSet map[string]struct{}

// NewPathSet returns a set holding paths.
func NewPathSet(paths ...string) PathSet {
	set := make(PathSet, len(paths))
	for _, path := range paths {
		set.Add(path)
	}
	return set
}

// Add inserts path into the set.
func (s PathSet) Add(path string) {
	s[path] = struct{}{}
}

// Contains reports whether path is in the set.
func (s PathSet) Contains(path string) bool {
	_, ok := s[path]
	return ok
}

// Len returns the number of paths in the set.
func (s PathSet) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same paths.
func (s PathSet) Equal(other PathSet) bool {
	if len(s) != len(other) {
		return false
	}
	for path := range s {
		if !other.Contains(path) {
			return false
		}
	}
	return true
}

// Difference returns the paths in s that are not in other.
func (s PathSet) Difference(other PathSet) PathSet {
	result := make(PathSet)
	for path := range s {
		if !other.Contains(path) {
			result.Add(path)
		}
	}
	return result
}

// Sorted returns the paths in lexical order.
func (s PathSet) Sorted() []string {
	paths := make([]string, 0, len(s))
	for path := range s {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Enumerate walks root and returns every entry beneath it, relative to
// root. Symlinks are not followed; an unreadable directory is an error.
func Enumerate(root string) (PathSet, error) {
	set := make(PathSet)
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		set.Add(filepath.ToSlash(relative))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating %s: %w", root, err)
	}
	return set, nil
}
