// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestEnumerate(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "boot", "efi", "EFI"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "boot", "efi", "EFI", "shimx64.efi"), []byte("pe"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "usr", "share"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	// A dangling symlink pointing outside the root must be recorded,
	// not followed.
	if err := os.Symlink("/nonexistent/target", filepath.Join(root, "usr", "share", "link")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	set, err := Enumerate(root)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}

	want := []string{
		".",
		"boot",
		"boot/efi",
		"boot/efi/EFI",
		"boot/efi/EFI/shimx64.efi",
		"usr",
		"usr/share",
		"usr/share/link",
	}
	if got := set.Sorted(); !slices.Equal(got, want) {
		t.Errorf("Enumerate = %v, want %v", got, want)
	}
}

func TestEnumerateEmptyRoot(t *testing.T) {
	set, err := Enumerate(t.TempDir())
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if got := set.Sorted(); !slices.Equal(got, []string{Root}) {
		t.Errorf("Enumerate(empty) = %v, want [.]", got)
	}
}

func TestEnumerateDoesNotFollowDirectorySymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	if err := os.WriteFile(filepath.Join(outside, "secret"), nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Symlink(outside, filepath.Join(root, "escape")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	set, err := Enumerate(root)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if set.Contains("escape/secret") {
		t.Error("Enumerate followed a directory symlink")
	}
	if !set.Contains("escape") {
		t.Error("Enumerate did not record the symlink itself")
	}
}

func TestEnumerateMissingRoot(t *testing.T) {
	if _, err := Enumerate(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("Enumerate should fail for a missing root")
	}
}

func TestPathSetAlgebra(t *testing.T) {
	left := NewPathSet(".", "a", "a/b", "only-left")
	right := NewPathSet(".", "a", "a/b", "only-right")

	if left.Equal(right) {
		t.Error("sets with different members reported equal")
	}
	if got := left.Difference(right).Sorted(); !slices.Equal(got, []string{"only-left"}) {
		t.Errorf("left - right = %v", got)
	}
	if got := right.Difference(left).Sorted(); !slices.Equal(got, []string{"only-right"}) {
		t.Errorf("right - left = %v", got)
	}

	same := NewPathSet("a/b", "a", ".", "only-left")
	if !left.Equal(same) {
		t.Error("sets with the same members in different order reported unequal")
	}
	if left.Len() != 4 {
		t.Errorf("Len = %d, want 4", left.Len())
	}
}
