// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable consulted by [Load].
const EnvironmentVariable = "SBDIFF_CONFIG"

// Config is the complete sbdiff configuration.
type Config struct {
	// WorkDir is the directory under which extraction roots are
	// created. Default: "." (the invocation directory).
	WorkDir string `yaml:"work_dir"`

	// Tools names the external programs.
	Tools ToolsConfig `yaml:"tools"`

	// Classes selects which normalization steps apply to which files.
	Classes ClassesConfig `yaml:"classes"`
}

// ToolsConfig names the external programs. Each value is a bare name
// (resolved through PATH and the system directories) or a path.
type ToolsConfig struct {
	// DpkgDeb extracts the data payload of a .deb.
	DpkgDeb string `yaml:"dpkg_deb"`

	// RPM2Cpio converts an .rpm payload to a cpio stream.
	RPM2Cpio string `yaml:"rpm2cpio"`

	// Cpio materializes a cpio stream read from stdin.
	Cpio string `yaml:"cpio"`

	// Pesign inspects and removes PE signatures.
	Pesign string `yaml:"pesign"`
}

// ClassesConfig lists the file-name patterns for each normalization
// class.
type ClassesConfig struct {
	// ExecutableSuffixes mark PE executables whose embedded
	// signatures are stripped.
	ExecutableSuffixes []string `yaml:"executable_suffixes"`

	// KernelImageNames mark kernel images. A file matches when its
	// name ends in an entry or its base name starts with the entry
	// followed by "-" (vmlinuz-6.1.0-13-amd64). Kernel images are
	// opportunistically gunzipped, then stripped like executables.
	KernelImageNames []string `yaml:"kernel_image_names"`

	// ModuleSuffixes mark loadable kernel modules whose appended
	// signature is stripped.
	ModuleSuffixes []string `yaml:"module_suffixes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		WorkDir: ".",
		Tools: ToolsConfig{
			DpkgDeb:  "dpkg-deb",
			RPM2Cpio: "rpm2cpio",
			Cpio:     "cpio",
			Pesign:   "pesign",
		},
		Classes: ClassesConfig{
			ExecutableSuffixes: []string{".efi", ".EFI"},
			KernelImageNames:   []string{"vmlinuz"},
			ModuleSuffixes:     []string{".ko"},
		},
	}
}

// Load returns the configuration named by explicitPath, or by
// SBDIFF_CONFIG when explicitPath is empty, or [Default] when neither
// is set.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. Values in
// the file replace the defaults; lists replace rather than extend.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	c.WorkDir = expandVars(c.WorkDir)
	c.Tools.DpkgDeb = expandVars(c.Tools.DpkgDeb)
	c.Tools.RPM2Cpio = expandVars(c.Tools.RPM2Cpio)
	c.Tools.Cpio = expandVars(c.Tools.Cpio)
	c.Tools.Pesign = expandVars(c.Tools.Pesign)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.WorkDir == "" {
		errs = append(errs, fmt.Errorf("work_dir must not be empty"))
	}

	tools := map[string]string{
		"tools.dpkg_deb": c.Tools.DpkgDeb,
		"tools.rpm2cpio": c.Tools.RPM2Cpio,
		"tools.cpio":     c.Tools.Cpio,
		"tools.pesign":   c.Tools.Pesign,
	}
	for _, key := range []string{"tools.dpkg_deb", "tools.rpm2cpio", "tools.cpio", "tools.pesign"} {
		if strings.TrimSpace(tools[key]) == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}

	classes := map[string][]string{
		"classes.executable_suffixes": c.Classes.ExecutableSuffixes,
		"classes.kernel_image_names":  c.Classes.KernelImageNames,
		"classes.module_suffixes":     c.Classes.ModuleSuffixes,
	}
	for _, key := range []string{"classes.executable_suffixes", "classes.kernel_image_names", "classes.module_suffixes"} {
		for _, pattern := range classes[key] {
			if pattern == "" || strings.Contains(pattern, "/") {
				errs = append(errs, fmt.Errorf("%s: invalid entry %q", key, pattern))
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
