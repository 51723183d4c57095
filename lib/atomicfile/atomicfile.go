// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write replaces the content of the existing file at path with data.
// The permission, setuid, setgid and sticky bits of the original file
// are preserved.
func Write(path string, data []byte) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	temporaryPath := file.Name()

	// A failed step removes the temporary file.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary file for %s: %w", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary file for %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary file for %s: %w", path, err)
	}

	return install(temporaryPath, path, info.Mode())
}

// Replace renames replacementPath over path, giving the replacement the
// permission, setuid, setgid and sticky bits path had. replacementPath must be in the same
// directory (or at least on the same filesystem) as path.
func Replace(path, replacementPath string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return install(replacementPath, path, info.Mode())
}

// SiblingPath returns an unused path in the same directory as path,
// named after it with the given suffix and a random component. Nothing
// exists at the returned path when this function returns.
func SiblingPath(path, suffix string) (string, error) {
	file, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+suffix+"-*")
	if err != nil {
		return "", fmt.Errorf("reserving name beside %s: %w", path, err)
	}
	name := file.Name()
	file.Close()
	if err := os.Remove(name); err != nil {
		return "", fmt.Errorf("releasing reserved name %s: %w", name, err)
	}
	return name, nil
}

func install(temporaryPath, path string, mode os.FileMode) error {
	if err := os.Chmod(temporaryPath, mode&(os.ModePerm|os.ModeSetuid|os.ModeSetgid|os.ModeSticky)); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("setting mode on replacement for %s: %w", path, err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming replacement into place at %s: %w", path, err)
	}

	// Sync the parent directory so the rename is durable.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}
