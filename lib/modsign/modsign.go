// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modsign

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/bureau-foundation/sbdiff/lib/atomicfile"
)

// Marker terminates every signed module.
const Marker = "~Module signature appended~\n"

// TrailerSize is the size of struct module_signature.
const TrailerSize = 12

// Signature is the decoded module_signature trailer.
type Signature struct {
	Algorithm       uint8
	Hash            uint8
	IDType          uint8
	SignerLength    uint8
	KeyIDLength     uint8
	SignatureLength uint32
}

// PayloadLength is the number of bytes the signer name, key id and
// signature occupy before the trailer.
func (s Signature) PayloadLength() int64 {
	return int64(s.SignerLength) + int64(s.KeyIDLength) + int64(s.SignatureLength)
}

// TrailerError reports a marker whose trailer does not fit the data.
type TrailerError struct {
	// Size is the length of the data that ended in the marker.
	Size int

	// Signature is the decoded trailer, when there were enough bytes
	// to decode it.
	Signature *Signature
}

func (e *TrailerError) Error() string {
	if e.Signature == nil {
		return fmt.Sprintf("module signature marker present but only %d bytes precede it, need %d for the trailer",
			e.Size-len(Marker), TrailerSize)
	}
	return fmt.Sprintf("module signature trailer declares %d bytes of signer, key id and signature (%d+%d+%d), more than the %d bytes available",
		e.Signature.PayloadLength(), e.Signature.SignerLength, e.Signature.KeyIDLength,
		e.Signature.SignatureLength, e.Size-len(Marker)-TrailerSize)
}

// decodeSignature decodes the 12 bytes of a module_signature.
func decodeSignature(trailer []byte) Signature {
	return Signature{
		Algorithm:       trailer[0],
		Hash:            trailer[1],
		IDType:          trailer[2],
		SignerLength:    trailer[3],
		KeyIDLength:     trailer[4],
		SignatureLength: binary.BigEndian.Uint32(trailer[8:12]),
	}
}

// Parse returns the signature trailer of data and the length of the
// module content preceding it. signed is false when data does not end
// in [Marker].
func Parse(data []byte) (signature Signature, contentLength int, signed bool, err error) {
	if !bytes.HasSuffix(data, []byte(Marker)) {
		return Signature{}, len(data), false, nil
	}

	trailerEnd := len(data) - len(Marker)
	if trailerEnd < TrailerSize {
		return Signature{}, 0, true, &TrailerError{Size: len(data)}
	}
	trailerStart := trailerEnd - TrailerSize
	signature = decodeSignature(data[trailerStart:trailerEnd])

	payload := signature.PayloadLength()
	if payload > int64(trailerStart) {
		return signature, 0, true, &TrailerError{Size: len(data), Signature: &signature}
	}
	return signature, trailerStart - int(payload), true, nil
}

// Strip returns data without its appended signature. The returned
// slice aliases data. signed reports whether a signature was present;
// unsigned data is returned unchanged.
func Strip(data []byte) (content []byte, signed bool, err error) {
	_, contentLength, signed, err := Parse(data)
	if err != nil {
		return nil, signed, err
	}
	return data[:contentLength], signed, nil
}

// StripFile removes the appended signature from the module at path,
// replacing the file atomically. An unsigned module is not rewritten.
func StripFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("reading module %s: %w", path, err)
	}

	content, signed, err := Strip(data)
	if err != nil {
		return false, fmt.Errorf("stripping module %s: %w", path, err)
	}
	if !signed {
		return false, nil
	}

	if err := atomicfile.Write(path, content); err != nil {
		return false, fmt.Errorf("rewriting module %s: %w", path, err)
	}
	return true, nil
}
