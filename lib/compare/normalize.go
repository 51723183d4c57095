// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bureau-foundation/sbdiff/lib/modsign"
	"github.com/bureau-foundation/sbdiff/lib/pesign"
	"github.com/bureau-foundation/sbdiff/lib/unwrap"
)

// step is one normalization transform. applies inspects the unit's
// logical name; apply transforms both sides and reports whether any
// file content changed.
type step struct {
	name    string
	applies func(classes Classes, name string) bool
	apply   func(engine *Engine, ctx context.Context, unit *Unit) (bool, error)
}

// steps is ordered: decompression first, so that the signature
// strippers see the logical name of the decompressed file.
var steps = buildSteps()

func buildSteps() []step {
	var result []step
	for _, decoder := range unwrap.Decoders {
		decoder := decoder
		result = append(result, step{
			name:    "unwrap-" + decoder.Name(),
			applies: func(_ Classes, name string) bool {
				found, ok := unwrap.Lookup(name)
				return ok && found == decoder
			},
			apply: func(engine *Engine, _ context.Context, unit *Unit) (bool, error) {
				return engine.unwrap(unit, decoder)
			},
		})
	}
	return append(result,
		step{
			name:    "unwrap-kernel-image",
			applies: func(classes Classes, name string) bool { return classes.IsKernelImage(name) },
			apply:   (*Engine).unwrapKernelImage,
		},
		step{
			name:    "strip-pe-signatures",
			applies: func(classes Classes, name string) bool {
				return classes.IsExecutable(name) || classes.IsKernelImage(name)
			},
			apply: (*Engine).stripPESignatures,
		},
		step{
			name:    "strip-module-signature",
			applies: func(classes Classes, name string) bool { return classes.IsModule(name) },
			apply:   (*Engine).stripModuleSignature,
		},
	)
}

// Normalize applies, one at a time, the first step that applies to the
// unit's logical name and has not yet run, until none remains. Each
// step runs at most once per unit. It reports whether any step changed
// file content, in which case sizes recorded before normalization no
// longer describe the files being compared.
func (e *Engine) Normalize(ctx context.Context, unit *Unit) (bool, error) {
	applied := make(map[string]bool, len(steps))
	changed := false
	for {
		next := -1
		for i := range steps {
			if !applied[steps[i].name] && steps[i].applies(e.Classes, unit.Name) {
				next = i
				break
			}
		}
		if next < 0 {
			return changed, nil
		}

		current := steps[next]
		applied[current.name] = true
		stepChanged, err := current.apply(e, ctx, unit)
		if err != nil {
			return changed, err
		}
		if stepChanged {
			changed = true
		}
		e.Logger.Debug("normalization step",
			"path", unit.Path,
			"step", current.name,
			"changed", stepChanged,
			"name", unit.Name,
		)
	}
}

// contentError is a normalization failure that shows the two sides
// differ. It is reported as a content mismatch rather than aborting the
// run.
type contentError struct {
	detail string
}

func (e *contentError) Error() string { return e.detail }

// unwrap decompresses both sides. When neither side decodes the step is
// skipped and the compressed files are compared as they are. When only
// one side decodes the two cannot hold the same content.
func (e *Engine) unwrap(unit *Unit, decoder unwrap.Decoder) (bool, error) {
	left, leftErr := unwrap.Unwrap(unit.Left, decoder)
	if leftErr != nil && !errors.Is(leftErr, unwrap.ErrNotCompressed) {
		return false, leftErr
	}
	right, rightErr := unwrap.Unwrap(unit.Right, decoder)
	if rightErr != nil && !errors.Is(rightErr, unwrap.ErrNotCompressed) {
		if leftErr == nil {
			os.Remove(left)
		}
		return false, rightErr
	}

	switch {
	case leftErr != nil && rightErr != nil:
		e.Logger.Debug("neither side decodes, comparing as is",
			"path", unit.Path,
			"format", decoder.Name(),
			"error", leftErr,
		)
		return false, nil
	case leftErr != nil:
		os.Remove(right)
		return false, &contentError{detail: fmt.Sprintf("left side is not valid %s data: %v", decoder.Name(), leftErr)}
	case rightErr != nil:
		os.Remove(left)
		return false, &contentError{detail: fmt.Sprintf("right side is not valid %s data: %v", decoder.Name(), rightErr)}
	}

	unit.Left, unit.Right = left, right
	unit.Name = strings.TrimSuffix(unit.Name, decoder.Suffix())
	return true, nil
}

// unwrapKernelImage gunzips each side independently. A side that is not
// gzip data is compared as it is.
func (e *Engine) unwrapKernelImage(_ context.Context, unit *Unit) (bool, error) {
	changed := false
	for _, side := range []*string{&unit.Left, &unit.Right} {
		output, err := unwrap.UnwrapKernelImage(*side)
		if errors.Is(err, unwrap.ErrNotCompressed) {
			e.Logger.Debug("kernel image not compressed", "path", *side, "error", err)
			continue
		}
		if err != nil {
			return changed, err
		}
		*side = output
		changed = true
	}
	return changed, nil
}

func (e *Engine) stripPESignatures(ctx context.Context, unit *Unit) (bool, error) {
	signer := e.Signer
	if signer == nil {
		signer = pesign.Pesign{}
	}
	changed := false
	for _, side := range []string{unit.Left, unit.Right} {
		removed, err := pesign.Strip(ctx, signer, side, e.Logger)
		if err != nil {
			return changed, err
		}
		if removed > 0 {
			changed = true
		}
	}
	return changed, nil
}

// stripModuleSignature strips the appended signature from each side. A
// malformed trailer leaves both files untouched: identical files are
// then compared as they are, and differing files are a mismatch.
func (e *Engine) stripModuleSignature(_ context.Context, unit *Unit) (bool, error) {
	changed := false
	for _, side := range []string{unit.Left, unit.Right} {
		signed, err := modsign.StripFile(side)
		var trailerError *modsign.TrailerError
		if errors.As(err, &trailerError) {
			if side == unit.Left {
				same, compareErr := sameContent(unit.Left, unit.Right)
				if compareErr != nil {
					return changed, compareErr
				}
				if same {
					e.Logger.Debug("malformed module trailer on both sides", "path", unit.Path, "error", err)
					return false, nil
				}
			}
			return changed, &contentError{detail: err.Error()}
		}
		if err != nil {
			return changed, err
		}
		if signed {
			changed = true
		}
	}
	return changed, nil
}
