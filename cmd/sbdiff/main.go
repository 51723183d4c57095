// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// sbdiff verifies that two builds of a package carry the same code.
//
// Given two .deb or .rpm artifacts, typically an upstream build whose
// boot-chain binaries carry secure-boot signatures and a local rebuild
// without them, sbdiff extracts both, checks that they contain the same
// paths with the same ownership and permissions, and compares every
// file after removing signature material: embedded Authenticode
// signatures from EFI executables and kernel images, and the appended
// signature of kernel modules. Compressed files are compared by their
// decompressed content.
//
// Every discrepancy is printed on stdout, one per line. A full match
// prints "Match!" and exits 0; anything else exits 1. Structured logs
// go to stderr.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/sbdiff/lib/compare"
	"github.com/bureau-foundation/sbdiff/lib/config"
	"github.com/bureau-foundation/sbdiff/lib/extract"
	"github.com/bureau-foundation/sbdiff/lib/pesign"
	"github.com/bureau-foundation/sbdiff/lib/process"
	"github.com/bureau-foundation/sbdiff/lib/report"
	"github.com/bureau-foundation/sbdiff/lib/version"
)

func main() {
	process.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) error {
	var (
		keep       bool
		configPath string
		workDir    string
		verbose    bool
	)

	flagSet := pflag.NewFlagSet("sbdiff", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&keep, "keep", false, "keep both extraction roots after a match (they are always kept after a mismatch)")
	flagSet.StringVar(&configPath, "config", "", "path to the YAML configuration file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&workDir, "work-dir", "", "directory in which extraction roots are created (default: from config, else the current directory)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log every normalization step")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other binaries.
	if len(args) > 0 && args[0] == "--version" {
		if len(args) > 1 && (args[1] == "--verbose" || args[1] == "-v") {
			fmt.Fprintf(stdout, "sbdiff %s\n", version.Full())
			return nil
		}
		version.Fprint(stdout, "sbdiff")
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(stdout, flagSet)
			return nil
		}
		return fmt.Errorf("%w (see sbdiff --help)", err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	positional := flagSet.Args()
	if len(positional) != 2 {
		return fmt.Errorf("expected two artifacts, got %d (usage: sbdiff <left-artifact> <right-artifact> [flags])", len(positional))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if workDir != "" {
		cfg.WorkDir = workDir
	}

	logger := newLogger(stderr, verbose)

	left, err := extract.NewArtifact(positional[0])
	if err != nil {
		return err
	}
	right, err := extract.NewArtifact(positional[1])
	if err != nil {
		return err
	}
	// Reject an unsupported format before either artifact is extracted.
	for _, artifact := range []extract.Artifact{left, right} {
		if err := artifact.CheckFormat(); err != nil {
			return err
		}
	}

	engine := &compare.Engine{
		Extractor: &extract.Extractor{
			WorkDir: cfg.WorkDir,
			Tools:   cfg.Tools,
			Logger:  logger,
		},
		Signer:  pesign.Pesign{Binary: cfg.Tools.Pesign},
		Classes: compare.NewClasses(cfg.Classes),
		Report:  report.New(stdout, isTerminal(stdout)),
		Logger:  logger,
		Keep:    keep,
	}

	result, err := engine.Run(context.Background(), left, right)
	if err != nil {
		logRoots(logger, result)
		return err
	}
	if !result.Match() {
		logRoots(logger, result)
		return &process.ExitError{Code: process.ExitFailure}
	}
	return nil
}

func logRoots(logger *slog.Logger, result compare.Result) {
	for _, root := range []string{result.LeftRoot, result.RightRoot} {
		if root != "" {
			logger.Info("extraction root left for inspection", "root", root)
		}
	}
}

// newLogger writes text records when w is a terminal and JSON records
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `sbdiff: verify that two package builds carry the same code.

Extracts both artifacts, requires identical path sets and file metadata,
and compares every file after removing signatures (EFI executables,
kernel images, kernel modules) and decompressing .xz, .gz, .zst and .lz4
files. Supported formats: .deb (dpkg-deb) and .rpm (rpm2cpio and cpio).

Usage:
  sbdiff <left-artifact> <right-artifact> [flags]

Examples:
  # Compare an upstream-signed shim package against a local rebuild
  sbdiff pool/shim-signed_1.40_amd64.deb build/shim-signed_1.40_amd64.deb

  # Keep the extracted trees for inspection after a match
  sbdiff --keep upstream/kernel-core-6.8.rpm rebuild/kernel-core-6.8.rpm

Exit status is 0 when the artifacts match and 1 otherwise.

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
