// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"io"
	"os"
)

const (
	// ExitMatch is the status for a run whose artifacts matched.
	ExitMatch = 0

	// ExitFailure is the status for every failure: mismatch, unreadable
	// input, unsupported format, extraction failure, usage error.
	ExitFailure = 1
)

// ExitError signals a non-zero exit code without printing an extra
// error message.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// Exit terminates the process with the status [Code] assigns to err,
// writing the error to stderr when it carries no exit code of its own.
func Exit(err error) {
	os.Exit(Code(err, os.Stderr))
}

// Code maps err to an exit status. Errors without an ExitCode method
// are reported on stderr before returning [ExitFailure].
func Code(err error, stderr io.Writer) int {
	if err == nil {
		return ExitMatch
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return ExitFailure
}
