// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
)

// T is the subset of testing.TB the helpers need.
type T interface {
	Helper()
	Fatalf(format string, args ...any)
}

// WriteFile creates root/relative with data and mode, creating parent
// directories with mode 0755.
//
//	testutil.WriteFile(t, root, "usr/lib/modules/6.1/foo.ko", data, 0644)
func WriteFile(t T, root, relative string, data []byte, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", relative, err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		t.Fatalf("writing %s: %v", relative, err)
	}
	// WriteFile honors the umask; tests comparing modes need the exact
	// value.
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", relative, err)
	}
	return path
}

// Mkdir creates root/relative and any missing parents.
func Mkdir(t T, root, relative string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("creating %s: %v", relative, err)
	}
	return path
}

// Symlink creates root/relative pointing at target. The target is
// stored verbatim and need not exist.
func Symlink(t T, root, relative, target string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(relative))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", relative, err)
	}
	if err := os.Symlink(target, path); err != nil {
		t.Fatalf("symlinking %s -> %s: %v", relative, target, err)
	}
	return path
}

// Chmod sets the permission bits of root/relative.
func Chmod(t T, root, relative string, mode os.FileMode) {
	t.Helper()
	if err := os.Chmod(filepath.Join(root, filepath.FromSlash(relative)), mode); err != nil {
		t.Fatalf("chmod %s: %v", relative, err)
	}
}

// ReadFile returns the contents of root/relative.
func ReadFile(t T, root, relative string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relative)))
	if err != nil {
		t.Fatalf("reading %s: %v", relative, err)
	}
	return data
}
