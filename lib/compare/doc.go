// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compare decides whether two packaged artifacts carry the
// same code once signatures are set aside.
//
// [Engine.Run] extracts both artifacts, checks that the two trees hold
// exactly the same set of paths, and then compares every path as a
// [Unit]:
//
//  1. differing file types are a mismatch;
//  2. differing mode, owner, or group (and device numbers for device
//     nodes) are a mismatch;
//  3. directories match; symlinks match when their targets are
//     textually equal; other non-regular entries match on metadata
//     alone and are never opened;
//  4. regular files pass through [Engine.Normalize], which peels
//     compression layers and strips signatures according to the
//     file's logical name, and are then compared byte for byte. A
//     layer that neither side decodes, or a module trailer malformed
//     identically on both sides, is left in place; when only one side
//     is malformed the file is a content mismatch.
//
// Mismatches are accumulated and reported as they are found; only
// failures that prevent comparison (extraction, unexpected I/O) end
// the run early. A structural mismatch stops the run before any file
// content is read.
//
// Normalization rewrites files inside the extraction roots. Both roots
// are removed after a full match unless [Engine.Keep] is set, and are
// always left in place after a mismatch.
package compare
