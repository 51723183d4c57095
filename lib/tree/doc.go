// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tree enumerates extraction roots into path sets.
//
// [Enumerate] records every entry under a root (directories, regular
// files, symlinks, device nodes) as a slash-separated path relative to
// the root, including the root itself as "." and every intermediate
// directory. Symlinks are recorded, never followed. The filesystem is
// not modified.
//
// A [PathSet] is compared by set equality only; [PathSet.Sorted]
// exists for deterministic iteration and diagnostics.
package tree
