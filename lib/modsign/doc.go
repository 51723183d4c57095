// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package modsign removes appended signatures from Linux kernel
// modules.
//
// A signed module is the unsigned module followed by a trailer:
//
//	+-----------------+--------+--------+-----------+------------------+--------+
//	| module content  | signer | key id | signature | module_signature | marker |
//	+-----------------+--------+--------+-----------+------------------+--------+
//	                                                      12 bytes        28 bytes
//
// The marker is the literal "~Module signature appended~\n". The
// 12-byte module_signature describes the variable-length fields before
// it:
//
//	offset  size  field
//	0       1     algo        (unused, zero for PKCS#7)
//	1       1     hash        (unused)
//	2       1     id_type     (unused)
//	3       1     signer_len
//	4       1     key_id_len
//	5       3     padding
//	8       4     sig_len     (big-endian)
//
// Stripping keeps the content and discards everything after it.
// A file that does not end in the marker is unsigned and is left
// untouched, which makes stripping idempotent.
//
// The layout is the kernel's own (scripts/sign-file.c, struct
// module_signature in include/linux/module_signature.h). If the kernel
// ever changes it, [Strip] fails with a [*TrailerError] when the
// declared lengths do not fit the file instead of returning a
// truncated module.
package modsign
