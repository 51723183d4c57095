// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package report writes the human-readable verdict of a comparison:
// one line per discrepancy, warnings, and the final "Match!".
//
// Styling goes through a lipgloss renderer bound to the output writer.
// Color is enabled only when the caller says the writer is a terminal;
// otherwise the ASCII profile is forced and every line is plain text,
// so piped output and tests see exactly the words below.
//
//	warning: hello_1.0_amd64.deb and rebuilt/hello_1.0_amd64.deb are byte-identical
//	only in left: usr/lib/debug
//	usr/bin/hello: mode differs: 0100755 != 0100775
//	boot/grubx64.efi: content differs
//	3 discrepancies
//	Match!
package report
