// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package toolexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SystemDirectories are searched after PATH.
var SystemDirectories = []string{"/usr/bin", "/usr/sbin", "/bin", "/sbin"}

// FindBinary resolves a tool by name, checking PATH first and then
// [SystemDirectories]. A name containing a path separator is checked
// for existence and returned unchanged.
func FindBinary(name string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return name, nil
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	for _, directory := range SystemDirectories {
		candidate := filepath.Join(directory, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found on PATH or in %s", name, strings.Join(SystemDirectories, ", "))
}

// Error describes a failed tool invocation.
type Error struct {
	// Command is the tool name followed by its arguments.
	Command string

	// Stderr is the trimmed standard error output of the tool.
	Stderr string

	// Err is the underlying exec error (usually *exec.ExitError).
	Err error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s", e.Command, e.Stderr)
	}
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitStatus returns the tool's exit status, or -1 when the tool did
// not run to completion (not found, killed by a signal).
func (e *Error) ExitStatus() int {
	var exitError *exec.ExitError
	if errors.As(e.Err, &exitError) {
		return exitError.ExitCode()
	}
	return -1
}

// Output resolves binary, runs it with args in dir (empty for the
// current directory) and returns its standard output. Standard error
// is captured and included in the returned [*Error].
func Output(ctx context.Context, binary string, args []string, dir string) ([]byte, error) {
	command, stderr, err := prepare(ctx, binary, args, dir)
	if err != nil {
		return nil, err
	}

	var stdout bytes.Buffer
	command.Stdout = &stdout
	if err := command.Run(); err != nil {
		return nil, newError(binary, args, stderr, err)
	}
	return stdout.Bytes(), nil
}

// Run is [Output] for tools whose standard output is not needed.
func Run(ctx context.Context, binary string, args []string, dir string) error {
	_, err := Output(ctx, binary, args, dir)
	return err
}

// Pipe runs producer with its standard output connected to the
// standard input of consumer, as the shell does for "producer |
// consumer". The consumer runs in dir. The stream is never held in
// this process. The parent's copies of both pipe ends are closed before
// either tool is waited on, so the consumer sees end of stream as soon
// as the producer exits. When both tools fail, both errors are
// returned joined.
func Pipe(ctx context.Context, producer string, producerArgs []string, consumer string, consumerArgs []string, dir string) error {
	producerCommand, producerStderr, err := prepare(ctx, producer, producerArgs, "")
	if err != nil {
		return err
	}
	consumerCommand, consumerStderr, err := prepare(ctx, consumer, consumerArgs, dir)
	if err != nil {
		return err
	}

	reader, writer, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("creating pipe from %s to %s: %w", producer, consumer, err)
	}
	producerCommand.Stdout = writer
	consumerCommand.Stdin = reader

	if err := consumerCommand.Start(); err != nil {
		reader.Close()
		writer.Close()
		return newError(consumer, consumerArgs, consumerStderr, err)
	}
	reader.Close()

	producerErr := producerCommand.Start()
	writer.Close()
	if producerErr == nil {
		producerErr = producerCommand.Wait()
	}
	consumerErr := consumerCommand.Wait()

	var errs []error
	if producerErr != nil {
		errs = append(errs, newError(producer, producerArgs, producerStderr, producerErr))
	}
	if consumerErr != nil {
		errs = append(errs, newError(consumer, consumerArgs, consumerStderr, consumerErr))
	}
	return errors.Join(errs...)
}

func prepare(ctx context.Context, binary string, args []string, dir string) (*exec.Cmd, *bytes.Buffer, error) {
	binaryPath, err := FindBinary(binary)
	if err != nil {
		return nil, nil, err
	}

	var stderr bytes.Buffer
	command := exec.CommandContext(ctx, binaryPath, args...)
	command.Dir = dir
	command.Stderr = &stderr
	return command, &stderr, nil
}

func newError(binary string, args []string, stderr *bytes.Buffer, err error) *Error {
	return &Error{
		Command: strings.TrimSpace(binary + " " + strings.Join(args, " ")),
		Stderr:  strings.TrimSpace(stderr.String()),
		Err:     err,
	}
}
