// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/sbdiff/lib/config"
	"github.com/bureau-foundation/sbdiff/lib/toolexec"
)

// Format is the packaging format of an artifact.
type Format int

const (
	// FormatUnsupported is any suffix other than the ones below.
	FormatUnsupported Format = iota

	// FormatDeb is a Debian binary package (.deb).
	FormatDeb

	// FormatRPM is an RPM binary package (.rpm).
	FormatRPM
)

// String returns the conventional file suffix without the dot, or
// "unsupported".
func (f Format) String() string {
	switch f {
	case FormatDeb:
		return "deb"
	case FormatRPM:
		return "rpm"
	default:
		return "unsupported"
	}
}

// ParseFormat infers the format from the suffix of path. Matching is
// exact: "foo.DEB" and "foo.deb.bak" are unsupported.
func ParseFormat(path string) Format {
	switch filepath.Ext(path) {
	case ".deb":
		return FormatDeb
	case ".rpm":
		return FormatRPM
	default:
		return FormatUnsupported
	}
}

// UnsupportedFormatError is returned when an artifact's suffix names
// no known packaging format.
type UnsupportedFormatError struct {
	Path   string
	Suffix string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Suffix == "" {
		return fmt.Sprintf("%s: unsupported package format (no file suffix; want .deb or .rpm)", e.Path)
	}
	return fmt.Sprintf("%s: unsupported package format %q (want .deb or .rpm)", e.Path, e.Suffix)
}

// Artifact is one input package.
type Artifact struct {
	// Path is the artifact path as given on the command line.
	Path string

	// Format is inferred from Path's suffix.
	Format Format
}

// NewArtifact checks that path exists and is a regular file, and
// resolves its format. An unsupported suffix is not an error here;
// [Extractor.Extract] reports it.
func NewArtifact(path string) (Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Artifact{}, fmt.Errorf("input artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return Artifact{}, fmt.Errorf("input artifact %s: not a regular file (%s)", path, info.Mode().Type())
	}
	return Artifact{Path: path, Format: ParseFormat(path)}, nil
}

// CheckFormat returns an [*UnsupportedFormatError] when the artifact's
// suffix names no known format.
func (a Artifact) CheckFormat() error {
	if a.Format == FormatUnsupported {
		return &UnsupportedFormatError{Path: a.Path, Suffix: filepath.Ext(a.Path)}
	}
	return nil
}

// ExtractionError wraps a failed extraction together with the root
// left behind for inspection.
type ExtractionError struct {
	Artifact Artifact
	Root     string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s into %s: %v", e.Artifact.Path, e.Root, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor unpacks artifacts under WorkDir.
type Extractor struct {
	// WorkDir is where extraction roots are created. Empty means the
	// current directory.
	WorkDir string

	// Tools names the external extractors.
	Tools config.ToolsConfig

	Logger *slog.Logger
}

// Extract unpacks artifact into a new directory and returns its
// absolute path.
func (x *Extractor) Extract(ctx context.Context, artifact Artifact) (string, error) {
	if err := artifact.CheckFormat(); err != nil {
		return "", err
	}

	source, err := filepath.Abs(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", artifact.Path, err)
	}

	workDir := x.WorkDir
	if workDir == "" {
		workDir = "."
	}
	root, err := os.MkdirTemp(workDir, filepath.Base(artifact.Path)+".*")
	if err != nil {
		return "", fmt.Errorf("creating extraction root for %s: %w", artifact.Path, err)
	}
	if root, err = filepath.Abs(root); err != nil {
		return "", fmt.Errorf("resolving extraction root: %w", err)
	}

	x.Logger.Debug("extracting artifact",
		"artifact", artifact.Path,
		"format", artifact.Format.String(),
		"root", root,
	)

	switch artifact.Format {
	case FormatDeb:
		err = x.extractDeb(ctx, source, root)
	case FormatRPM:
		err = x.extractRPM(ctx, source, root)
	}
	if err != nil {
		return root, &ExtractionError{Artifact: artifact, Root: root, Err: err}
	}
	return root, nil
}

func (x *Extractor) extractDeb(ctx context.Context, source, root string) error {
	return toolexec.Run(ctx, orDefault(x.Tools.DpkgDeb, "dpkg-deb"), []string{"-x", source, root}, "")
}

func (x *Extractor) extractRPM(ctx context.Context, source, root string) error {
	return toolexec.Pipe(ctx,
		orDefault(x.Tools.RPM2Cpio, "rpm2cpio"), []string{source},
		orDefault(x.Tools.Cpio, "cpio"), []string{"-idm", "--quiet", "--no-absolute-filenames"},
		root)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Remove deletes an extraction root. Directories are made owner
// writable first, since archives may create read-only directories
// whose entries os.RemoveAll could not otherwise unlink.
func Remove(root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// RemoveAll reports anything that stays unreachable.
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		if info.Mode().Perm()&0700 != 0700 {
			if err := os.Chmod(path, info.Mode().Perm()|0700); err != nil {
				return fmt.Errorf("making %s writable: %w", path, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := os.RemoveAll(root); err != nil {
		return fmt.Errorf("removing %s: %w", root, err)
	}
	return nil
}

