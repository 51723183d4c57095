// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package extract materializes the payload of a .deb or .rpm artifact
// into a private directory.
//
// The format is inferred strictly from the file suffix by
// [ParseFormat]. [Extractor.Extract] creates a fresh extraction root
// named after the artifact under its work directory, then delegates to
// the distribution's own tooling:
//
//   - .deb: dpkg-deb -x <artifact> <root>
//   - .rpm: rpm2cpio <artifact> | cpio -idm --quiet --no-absolute-filenames
//
// For .rpm the cpio stream flows from rpm2cpio to cpio through a pipe
// and is never held in memory. cpio runs with its working directory
// set to the root, so the process's own working directory is never
// changed.
//
// An extraction failure leaves the partially populated root in place
// for inspection; its path is part of the returned error. [Remove]
// deletes a root, restoring owner write permission on directories that
// the archive created read-only.
package extract
