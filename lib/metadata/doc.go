// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata compares POSIX file metadata between corresponding
// entries of two extraction roots.
//
// [Lstat] reads the raw st_mode, owner, group, size and device number
// of an entry without following symlinks. [Compare] reports one
// [Difference] per differing attribute among mode, uid and gid (plus
// the device number for device nodes). Size is deliberately not part
// of [Compare]: signature stripping and decompression change sizes,
// so size equality is only meaningful for entries that undergo no
// normalization, which is what [SameSize] is for.
package metadata
