// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for sbdiff.
//
// Configuration is optional. When present it is loaded from a single
// file specified by:
//   - the --config flag, or
//   - the SBDIFF_CONFIG environment variable
//
// There is no automatic discovery: without either, [Default] is used.
// Unknown keys are rejected so a typo cannot silently fall back to a
// default.
//
// A config file names the external tools (useful when pesign or cpio
// live outside PATH), the file-name classes that select normalization
// steps, and the directory in which extraction roots are created:
//
//	work_dir: /var/tmp/sbdiff
//	tools:
//	  pesign: /opt/pesign/bin/pesign
//	classes:
//	  executable_suffixes: [".efi", ".EFI"]
//	  kernel_image_names: ["vmlinuz"]
//	  module_suffixes: [".ko"]
//
// ${VAR} and ${VAR:-default} references in paths are expanded from the
// environment.
package config
