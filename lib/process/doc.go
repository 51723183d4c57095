// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for sbdiff. It
// centralizes the mapping from the error returned by run() to the
// process exit status:
//
//   - nil exits 0.
//   - An error implementing ExitCode() int (see [ExitError]) exits with
//     that code without printing anything; the command has already
//     written its own diagnostics.
//   - Any other error is written to stderr as "error: ..." and exits 1.
package process
