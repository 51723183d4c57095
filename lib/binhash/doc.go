// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for artifact files.
//
// sbdiff hashes the two input artifacts before extracting them. Two
// byte-identical inputs are still fully extracted and compared (the
// comparison is the point of the tool), but the identity is reported
// as a warning since it usually means the wrong file was passed.
//
// The API surface:
//
//   - [HashFile] -- streams a file through BLAKE3-256, returning a
//     [32]byte digest with constant memory usage regardless of file size
//   - [FormatDigest] -- converts a digest to its hex string form, used
//     in log output
//   - [SameContent] -- reports whether two files hash identically
//
// This package has no dependencies on other sbdiff packages.
package binhash
