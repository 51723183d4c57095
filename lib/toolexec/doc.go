// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package toolexec runs the external programs sbdiff treats as black
// boxes: the package unpackers (dpkg-deb, rpm2cpio, cpio) and the PE
// signature tool (pesign). It centralizes binary resolution and gives
// every invocation the same error shape.
//
// Binaries are resolved by [FindBinary]: a name containing a slash is
// used as given, otherwise PATH is searched first and then the system
// directories in [SystemDirectories] (unprivileged users often lack
// /usr/sbin on PATH, which is where several of these tools live).
//
// Failures are reported as [*Error], which prefers the tool's own
// stderr over the generic exec error since that is where the tools
// explain themselves.
//
// None of these calls change the process working directory. Tools that
// write into the current directory receive it through the dir argument,
// which becomes exec.Cmd.Dir.
package toolexec
