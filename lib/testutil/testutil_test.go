// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestTreeHelpers(t *testing.T) {
	root := t.TempDir()
	WriteFile(t, root, "usr/share/doc/readme", []byte("hello"), 0640)
	Mkdir(t, root, "var/empty")
	Symlink(t, root, "usr/bin/alias", "../share/doc/readme")

	info, err := os.Stat(filepath.Join(root, "usr/share/doc/readme"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %o, want 0640", info.Mode().Perm())
	}
	if got := string(ReadFile(t, root, "usr/bin/alias")); got != "hello" {
		t.Errorf("read through symlink = %q, want hello", got)
	}
	target, err := os.Readlink(filepath.Join(root, "usr/bin/alias"))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "../share/doc/readme" {
		t.Errorf("symlink target = %q", target)
	}

	Chmod(t, root, "var/empty", 0700)
	info, err = os.Stat(filepath.Join(root, "var/empty"))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0700 {
		t.Errorf("var/empty: dir=%v mode=%o", info.IsDir(), info.Mode().Perm())
	}
}

func TestScript(t *testing.T) {
	path := Script(t, "greet", `echo "hello $1"`)
	if !filepath.IsAbs(path) || filepath.Base(path) != "greet" {
		t.Fatalf("Script returned %q", path)
	}
	output, err := exec.Command(path, "world").Output()
	if err != nil {
		t.Fatalf("running script: %v", err)
	}
	if strings.TrimSpace(string(output)) != "hello world" {
		t.Errorf("output = %q", output)
	}
}
