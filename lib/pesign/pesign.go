// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pesign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/bureau-foundation/sbdiff/lib/atomicfile"
	"github.com/bureau-foundation/sbdiff/lib/toolexec"
)

// MaxPasses bounds the number of removals [Strip] performs on one file.
const MaxPasses = 64

// ErrNotConverging is returned when signatures remain after MaxPasses
// removals.
var ErrNotConverging = errors.New("signature removal did not converge")

// NoSignaturesSentinel is what pesign -S prints for an unsigned binary.
const NoSignaturesSentinel = "No signatures found."

// Tool inspects and removes PE signatures.
type Tool interface {
	// HasSignatures reports whether path carries at least one
	// embedded signature.
	HasSignatures(ctx context.Context, path string) (bool, error)

	// RemoveSignature writes input without its outermost signature to
	// output. output does not exist when this is called.
	RemoveSignature(ctx context.Context, input, output string) error
}

// Pesign implements [Tool] with the pesign program.
type Pesign struct {
	// Binary is the pesign executable name or path. Empty means
	// "pesign".
	Binary string
}

func (p Pesign) binary() string {
	if p.Binary == "" {
		return "pesign"
	}
	return p.Binary
}

// HasSignatures runs "pesign -S -i path". Any output other than the
// no-signatures sentinel means a signature is present.
func (p Pesign) HasSignatures(ctx context.Context, path string) (bool, error) {
	output, err := toolexec.Output(ctx, p.binary(), []string{"-S", "-i", path}, "")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(output)) != NoSignaturesSentinel, nil
}

// RemoveSignature runs "pesign -r -u 0 -i input -o output".
func (p Pesign) RemoveSignature(ctx context.Context, input, output string) error {
	return toolexec.Run(ctx, p.binary(), []string{"-r", "-u", "0", "-i", input, "-o", output}, "")
}

// Strip removes every signature from the PE file at path, in place,
// and returns the number of removals performed.
func Strip(ctx context.Context, tool Tool, path string, logger *slog.Logger) (int, error) {
	removed := 0
	for {
		signed, err := tool.HasSignatures(ctx, path)
		if err != nil {
			return removed, fmt.Errorf("inspecting signatures of %s: %w", path, err)
		}
		if !signed {
			return removed, nil
		}
		if removed >= MaxPasses {
			return removed, fmt.Errorf("%s: %w after %d removals", path, ErrNotConverging, removed)
		}

		output, err := atomicfile.SiblingPath(path, ".unsigned")
		if err != nil {
			return removed, err
		}
		if err := tool.RemoveSignature(ctx, path, output); err != nil {
			os.Remove(output)
			return removed, fmt.Errorf("removing signature %d from %s: %w", removed+1, path, err)
		}
		if err := atomicfile.Replace(path, output); err != nil {
			return removed, err
		}
		removed++
		logger.Debug("removed PE signature", "path", path, "pass", removed)
	}
}
