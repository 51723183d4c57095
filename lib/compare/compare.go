// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/sbdiff/lib/binhash"
	"github.com/bureau-foundation/sbdiff/lib/extract"
	"github.com/bureau-foundation/sbdiff/lib/metadata"
	"github.com/bureau-foundation/sbdiff/lib/pesign"
	"github.com/bureau-foundation/sbdiff/lib/report"
	"github.com/bureau-foundation/sbdiff/lib/tree"
)

// Kind classifies a mismatch.
type Kind string

const (
	KindStructure Kind = "structure"
	KindType      Kind = "type"
	KindMetadata  Kind = "metadata"
	KindSymlink   Kind = "symlink"
	KindContent   Kind = "content"
)

// Mismatch is one discrepancy between the two trees.
type Mismatch struct {
	// Path is slash-separated and relative to the extraction roots.
	Path   string
	Kind   Kind
	Detail string
}

func (m Mismatch) String() string {
	return m.Path + ": " + m.Detail
}

// Result is the outcome of a completed comparison.
type Result struct {
	// Identical is set when the two input artifacts were
	// byte-identical before extraction.
	Identical bool

	// StructureMatch is false when the path sets differed; no file
	// content was compared in that case.
	StructureMatch bool

	Mismatches []Mismatch

	// LeftRoot and RightRoot are the extraction roots. They are
	// empty after a successful run that removed them.
	LeftRoot  string
	RightRoot string
}

// Match reports whether the artifacts are equivalent.
func (r Result) Match() bool {
	return r.StructureMatch && len(r.Mismatches) == 0
}

// Unit is one path compared across both trees. Normalization replaces
// Left, Right and Name as it peels layers off; Path never changes.
type Unit struct {
	// Path is the slash-separated path relative to the roots. It
	// identifies the unit in diagnostics.
	Path string

	// Left and Right are the absolute paths of the files currently
	// being compared.
	Left  string
	Right string

	// Name is the logical name used for classification. It starts
	// as Path and loses each compression suffix that is unwrapped.
	Name string
}

// Extractor materializes an artifact into a directory.
type Extractor interface {
	Extract(ctx context.Context, artifact extract.Artifact) (string, error)
}

// Engine compares two artifacts.
type Engine struct {
	Extractor Extractor

	// Signer inspects and removes PE signatures. Nil means the
	// pesign program found on PATH.
	Signer pesign.Tool

	Classes Classes
	Report  *report.Printer
	Logger  *slog.Logger

	// Keep leaves the extraction roots in place after a match.
	Keep bool
}

// Run compares left and right. Discrepancies are reported and
// returned in the Result; the error is reserved for failures that
// prevented the comparison from completing. Extraction roots created
// before such a failure are left in place and named in the Result.
func (e *Engine) Run(ctx context.Context, left, right extract.Artifact) (Result, error) {
	var result Result

	identical, leftDigest, rightDigest, err := binhash.SameContent(left.Path, right.Path)
	if err != nil {
		return result, fmt.Errorf("hashing inputs: %w", err)
	}
	if identical {
		result.Identical = true
		e.Report.Warning("%s and %s are byte-identical", left.Path, right.Path)
		e.Logger.Warn("input artifacts are identical", "digest", binhash.FormatDigest(leftDigest))
	} else {
		e.Logger.Debug("input artifacts differ",
			"left_digest", binhash.FormatDigest(leftDigest),
			"right_digest", binhash.FormatDigest(rightDigest),
		)
	}

	result.LeftRoot, err = e.Extractor.Extract(ctx, left)
	if err != nil {
		return result, err
	}
	result.RightRoot, err = e.Extractor.Extract(ctx, right)
	if err != nil {
		return result, err
	}

	leftPaths, err := tree.Enumerate(result.LeftRoot)
	if err != nil {
		return result, err
	}
	rightPaths, err := tree.Enumerate(result.RightRoot)
	if err != nil {
		return result, err
	}
	e.Logger.Info("extracted artifacts",
		"left_root", result.LeftRoot,
		"left_paths", leftPaths.Len(),
		"right_root", result.RightRoot,
		"right_paths", rightPaths.Len(),
	)

	if !leftPaths.Equal(rightPaths) {
		e.reportStructure(&result, "left", leftPaths.Difference(rightPaths))
		e.reportStructure(&result, "right", rightPaths.Difference(leftPaths))
		e.Report.Summary(len(result.Mismatches))
		return result, e.Report.Err()
	}
	result.StructureMatch = true

	for _, path := range leftPaths.Sorted() {
		unit := Unit{
			Path:  path,
			Left:  filepath.Join(result.LeftRoot, filepath.FromSlash(path)),
			Right: filepath.Join(result.RightRoot, filepath.FromSlash(path)),
			Name:  path,
		}
		mismatches, err := e.CompareUnit(ctx, &unit)
		if err != nil {
			return result, fmt.Errorf("comparing %s: %w", path, err)
		}
		for _, mismatch := range mismatches {
			e.Report.Mismatch(mismatch.Path, mismatch.Detail)
		}
		result.Mismatches = append(result.Mismatches, mismatches...)
	}

	if !result.Match() {
		e.Report.Summary(len(result.Mismatches))
		return result, e.Report.Err()
	}

	if !e.Keep {
		for _, root := range []*string{&result.LeftRoot, &result.RightRoot} {
			if err := extract.Remove(*root); err != nil {
				e.Logger.Warn("could not remove extraction root", "root", *root, "error", err)
				continue
			}
			*root = ""
		}
	}
	e.Report.Match()
	return result, e.Report.Err()
}

func (e *Engine) reportStructure(result *Result, side string, paths tree.PathSet) {
	for _, path := range paths.Sorted() {
		if path == tree.Root {
			continue
		}
		e.Report.OnlyIn(side, path)
		result.Mismatches = append(result.Mismatches, Mismatch{
			Path:   path,
			Kind:   KindStructure,
			Detail: "only in " + side,
		})
	}
}

// CompareUnit compares one path present in both trees and returns its
// mismatches. An error means the comparison could not be carried out.
func (e *Engine) CompareUnit(ctx context.Context, unit *Unit) ([]Mismatch, error) {
	leftInfo, err := metadata.Lstat(unit.Left)
	if err != nil {
		return nil, err
	}
	rightInfo, err := metadata.Lstat(unit.Right)
	if err != nil {
		return nil, err
	}

	// The raw mode carries the type bits, so a type change would
	// otherwise surface as an opaque mode difference.
	if leftInfo.Type() != rightInfo.Type() {
		return []Mismatch{{
			Path:   unit.Path,
			Kind:   KindType,
			Detail: fmt.Sprintf("file type differs: %s != %s", leftInfo.Type(), rightInfo.Type()),
		}}, nil
	}

	if differences := metadata.Compare(leftInfo, rightInfo); len(differences) > 0 {
		mismatches := make([]Mismatch, 0, len(differences))
		for _, difference := range differences {
			mismatches = append(mismatches, Mismatch{
				Path:   unit.Path,
				Kind:   KindMetadata,
				Detail: difference.String(),
			})
		}
		return mismatches, nil
	}

	switch leftInfo.Type() {
	case metadata.TypeDirectory:
		return nil, nil
	case metadata.TypeSymlink:
		return compareSymlinks(unit)
	case metadata.TypeRegular:
	default:
		// Devices, FIFOs and sockets have no content to read.
		return nil, nil
	}

	changed, err := e.Normalize(ctx, unit)
	if err != nil {
		var mismatch *contentError
		if errors.As(err, &mismatch) {
			return []Mismatch{{Path: unit.Path, Kind: KindContent, Detail: mismatch.Error()}}, nil
		}
		return nil, err
	}

	if !changed && !metadata.SameSize(leftInfo, rightInfo) {
		return []Mismatch{{
			Path:   unit.Path,
			Kind:   KindContent,
			Detail: fmt.Sprintf("content differs (size %d != %d)", leftInfo.Size, rightInfo.Size),
		}}, nil
	}

	same, err := sameContent(unit.Left, unit.Right)
	if err != nil {
		return nil, err
	}
	if !same {
		return []Mismatch{{Path: unit.Path, Kind: KindContent, Detail: "content differs"}}, nil
	}
	return nil, nil
}

func compareSymlinks(unit *Unit) ([]Mismatch, error) {
	leftTarget, err := os.Readlink(unit.Left)
	if err != nil {
		return nil, fmt.Errorf("reading symlink: %w", err)
	}
	rightTarget, err := os.Readlink(unit.Right)
	if err != nil {
		return nil, fmt.Errorf("reading symlink: %w", err)
	}
	if leftTarget != rightTarget {
		return []Mismatch{{
			Path:   unit.Path,
			Kind:   KindSymlink,
			Detail: fmt.Sprintf("symlink target differs: %s != %s", leftTarget, rightTarget),
		}}, nil
	}
	return nil, nil
}

const compareBufferSize = 64 * 1024

// sameContent streams both files and reports whether they are
// byte-equal.
func sameContent(leftPath, rightPath string) (bool, error) {
	left, err := os.Open(leftPath)
	if err != nil {
		return false, err
	}
	defer left.Close()
	right, err := os.Open(rightPath)
	if err != nil {
		return false, err
	}
	defer right.Close()

	leftBuffer := make([]byte, compareBufferSize)
	rightBuffer := make([]byte, compareBufferSize)
	for {
		leftCount, leftErr := io.ReadFull(left, leftBuffer)
		rightCount, rightErr := io.ReadFull(right, rightBuffer)
		if leftErr != nil && leftErr != io.EOF && leftErr != io.ErrUnexpectedEOF {
			return false, fmt.Errorf("reading %s: %w", leftPath, leftErr)
		}
		if rightErr != nil && rightErr != io.EOF && rightErr != io.ErrUnexpectedEOF {
			return false, fmt.Errorf("reading %s: %w", rightPath, rightErr)
		}
		if !bytes.Equal(leftBuffer[:leftCount], rightBuffer[:rightCount]) {
			return false, nil
		}
		if leftErr != nil || rightErr != nil {
			// Equal chunks and at least one side at EOF: both are.
			return true, nil
		}
	}
}
