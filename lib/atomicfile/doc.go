// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package atomicfile replaces files inside an extraction root without
// ever exposing a partially written result.
//
// Signature stripping rewrites extracted files in place. [Write] puts
// new content next to the target (temporary file in the same
// directory, fsync, rename into place, fsync parent directory) and
// [Replace] renames a file produced by an external tool over the
// target. Both carry the target's permission bits, including setuid,
// setgid and sticky, over to the new inode, so the tree still
// describes the package after normalization.
//
// [SiblingPath] reserves an unused name beside a target for tools that
// insist on creating their own output file.
package atomicfile
