// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package unwrap peels one compression layer off an extracted file,
// writing the decompressed content beside it.
//
// Packages ship many payloads compressed: kernel modules as .ko.xz or
// .ko.zst, firmware as .xz, documentation as .gz. Compressed bytes
// differ whenever the content inside differs by so much as a
// signature, so the comparison has to look through the layer. Each
// [Decoder] handles one suffix; [Lookup] finds the decoder for a file
// name and [Unwrap] writes the decompressed sibling ("foo.ko.xz" ->
// "foo.ko"). When the sibling name is already taken by another entry
// of the package, a unique name is used instead so no enumerated file
// is overwritten. Data that does not decode as the suffix claims
// returns [ErrNotCompressed].
//
// Kernel images are handled separately by [UnwrapKernelImage]. Some
// architectures ship vmlinuz as a gzip stream, others as a bare PE
// image with an EFI stub, and the name does not say which. The kernel
// decoder therefore tolerates data that is not gzip: it returns
// [ErrNotCompressed] and leaves nothing behind, and the caller compares
// the original file.
package unwrap
