// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for sbdiff packages.
//
// [WriteFile], [Mkdir], [Symlink] and [Chmod] build small directory
// trees that stand in for extracted packages. Paths are given relative
// to a root, slash-separated, exactly as they appear in a package
// listing; parent directories are created as needed.
//
// [Script] writes an executable shell script into a fresh temporary
// directory and returns its path. Tests use it to fake the external
// extractors and signing tools, so no test depends on dpkg-deb,
// rpm2cpio, cpio, or pesign being installed.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no sbdiff-internal dependencies.
package testutil
