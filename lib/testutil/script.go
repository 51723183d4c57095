// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Script writes body as an executable /bin/sh script named name in a
// fresh temporary directory and returns its absolute path. The shebang
// line is added; body is the script text after it.
//
//	dpkgDeb := testutil.Script(t, "dpkg-deb", `mkdir -p "$3/usr" && echo hi > "$3/usr/hello"`)
func Script(t testing.TB, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("writing script %s: %v", name, err)
	}
	return path
}
