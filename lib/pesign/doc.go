// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pesign removes Authenticode signatures from PE executables
// (EFI applications, EFI-stub kernel images).
//
// Signature inspection and removal are delegated to an external tool
// behind the [Tool] interface; [Pesign] implements it with the pesign
// program. [Strip] runs the removal loop: while the tool reports a
// signature, remove the outermost one into a sibling file and rename
// it over the original. A binary signed N times takes exactly N
// removals; an unsigned binary is never rewritten.
//
// A tool that keeps reporting signatures after [MaxPasses] removals is
// broken (or the binary is not what it claims to be); [Strip] returns
// [ErrNotConverging] rather than looping forever.
package pesign
