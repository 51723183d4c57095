// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import (
	"path"
	"strings"

	"github.com/bureau-foundation/sbdiff/lib/config"
)

// Classes maps logical file names to the normalization steps that
// apply to them.
type Classes struct {
	ExecutableSuffixes []string
	KernelImageNames   []string
	ModuleSuffixes     []string
}

// NewClasses builds Classes from the configuration section.
func NewClasses(classes config.ClassesConfig) Classes {
	return Classes{
		ExecutableSuffixes: classes.ExecutableSuffixes,
		KernelImageNames:   classes.KernelImageNames,
		ModuleSuffixes:     classes.ModuleSuffixes,
	}
}

// DefaultClasses returns the classes of the default configuration.
func DefaultClasses() Classes {
	return NewClasses(config.Default().Classes)
}

// IsExecutable reports whether name is a PE executable.
func (c Classes) IsExecutable(name string) bool {
	return hasAnySuffix(name, c.ExecutableSuffixes)
}

// IsKernelImage reports whether name is a kernel image: it ends in a
// configured name, or its base name is that name followed by "-" and
// a version.
func (c Classes) IsKernelImage(name string) bool {
	base := path.Base(name)
	for _, image := range c.KernelImageNames {
		if strings.HasSuffix(name, image) || strings.HasPrefix(base, image+"-") {
			return true
		}
	}
	return false
}

// IsModule reports whether name is a loadable kernel module.
func (c Classes) IsModule(name string) bool {
	return hasAnySuffix(name, c.ModuleSuffixes)
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
