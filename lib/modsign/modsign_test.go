// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modsign

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// signModule appends a signature trailer to content the way
// scripts/sign-file does: signer, key id, signature, module_signature,
// marker.
func signModule(content []byte, signer, keyID, signature []byte, fill byte) []byte {
	var buffer bytes.Buffer
	buffer.Write(content)
	buffer.Write(signer)
	buffer.Write(keyID)
	buffer.Write(signature)

	trailer := make([]byte, TrailerSize)
	trailer[0] = 0 // algo
	trailer[1] = 0 // hash
	trailer[2] = 2 // id_type: PKEY_ID_PKCS7
	trailer[3] = byte(len(signer))
	trailer[4] = byte(len(keyID))
	trailer[5], trailer[6], trailer[7] = fill, fill, fill
	binary.BigEndian.PutUint32(trailer[8:], uint32(len(signature)))
	buffer.Write(trailer)

	buffer.WriteString(Marker)
	return buffer.Bytes()
}

func moduleCode(length int) []byte {
	code := make([]byte, length)
	for i := range code {
		code[i] = byte(i % 251)
	}
	return code
}

func TestStripDifferentSignaturesSameContent(t *testing.T) {
	code := moduleCode(1000)

	left := signModule(code,
		bytes.Repeat([]byte{'L'}, 4), bytes.Repeat([]byte{0x11}, 8), bytes.Repeat([]byte{0xaa}, 256), 0)
	right := signModule(code,
		bytes.Repeat([]byte{'R'}, 4), bytes.Repeat([]byte{0x22}, 8), bytes.Repeat([]byte{0xbb}, 256), 0)

	if bytes.Equal(left, right) {
		t.Fatal("test setup: signed modules should differ")
	}
	if want := 1000 + 4 + 8 + 256 + TrailerSize + len(Marker); len(left) != want {
		t.Fatalf("test setup: signed module is %d bytes, want %d", len(left), want)
	}

	strippedLeft, signed, err := Strip(left)
	if err != nil {
		t.Fatalf("Strip(left): %v", err)
	}
	if !signed {
		t.Error("Strip(left) reported unsigned")
	}
	strippedRight, _, err := Strip(right)
	if err != nil {
		t.Fatalf("Strip(right): %v", err)
	}

	if !bytes.Equal(strippedLeft, code) {
		t.Errorf("Strip(left) = %d bytes, want the 1000-byte content", len(strippedLeft))
	}
	if !bytes.Equal(strippedLeft, strippedRight) {
		t.Error("stripped modules differ")
	}
}

func TestParseFields(t *testing.T) {
	data := signModule(moduleCode(64), []byte("signer"), []byte("keyid123"), bytes.Repeat([]byte{1}, 300), 0xff)

	signature, contentLength, signed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !signed {
		t.Fatal("Parse reported unsigned")
	}
	if signature.SignerLength != 6 || signature.KeyIDLength != 8 || signature.SignatureLength != 300 {
		t.Errorf("Parse = signer %d, key id %d, sig %d; want 6, 8, 300",
			signature.SignerLength, signature.KeyIDLength, signature.SignatureLength)
	}
	if signature.IDType != 2 {
		t.Errorf("IDType = %d, want 2", signature.IDType)
	}
	if contentLength != 64 {
		t.Errorf("contentLength = %d, want 64", contentLength)
	}
}

func TestParseSignatureLengthIsBigEndian(t *testing.T) {
	// 0x00000101 big-endian is 257; read little-endian it would be
	// 0x01010000, far larger than the data.
	data := signModule(moduleCode(10), nil, nil, bytes.Repeat([]byte{7}, 257), 0)

	signature, contentLength, _, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if signature.SignatureLength != 257 {
		t.Errorf("SignatureLength = %d, want 257", signature.SignatureLength)
	}
	if contentLength != 10 {
		t.Errorf("contentLength = %d, want 10", contentLength)
	}
}

func TestStripUnsignedIsNoOp(t *testing.T) {
	code := moduleCode(500)

	stripped, signed, err := Strip(code)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if signed {
		t.Error("unsigned module reported signed")
	}
	if !bytes.Equal(stripped, code) {
		t.Error("Strip modified an unsigned module")
	}
}

func TestStripIdempotent(t *testing.T) {
	code := moduleCode(200)
	once, _, err := Strip(signModule(code, []byte("a"), []byte("b"), []byte("c"), 0))
	if err != nil {
		t.Fatalf("first Strip: %v", err)
	}
	twice, signed, err := Strip(once)
	if err != nil {
		t.Fatalf("second Strip: %v", err)
	}
	if signed {
		t.Error("stripped module still reported signed")
	}
	if !bytes.Equal(once, twice) {
		t.Error("second Strip changed the data")
	}
}

func TestStripMarkerNotAtEnd(t *testing.T) {
	// A marker embedded in the middle (e.g. inside a string table) is
	// not a signature.
	data := append([]byte("prefix "+Marker), moduleCode(32)...)
	stripped, signed, err := Strip(data)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if signed || !bytes.Equal(stripped, data) {
		t.Error("marker not at end of file should be ignored")
	}
}

func TestStripTruncatedTrailer(t *testing.T) {
	// A trailer declaring a 4096-byte signature in front of only 100
	// bytes of data.
	oversized := make([]byte, TrailerSize)
	binary.BigEndian.PutUint32(oversized[8:], 4096)

	tests := []struct {
		name string
		data []byte
	}{
		{"marker only", []byte(Marker)},
		{"short trailer", append(make([]byte, 5), Marker...)},
		{"lengths exceed data", append(append(moduleCode(100), oversized...), Marker...)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, _, err := Strip(test.data)
			var trailerError *TrailerError
			if !errors.As(err, &trailerError) {
				t.Fatalf("err = %v, want *TrailerError", err)
			}
			if trailerError.Error() == "" {
				t.Error("TrailerError has empty message")
			}
		})
	}
}

func TestStripFile(t *testing.T) {
	directory := t.TempDir()
	code := moduleCode(1000)
	path := filepath.Join(directory, "nvme.ko")
	signedModule := signModule(code, []byte("Fedora"), bytes.Repeat([]byte{3}, 20), bytes.Repeat([]byte{9}, 512), 0)
	if err := os.WriteFile(path, signedModule, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	signed, err := StripFile(path)
	if err != nil {
		t.Fatalf("StripFile: %v", err)
	}
	if !signed {
		t.Error("StripFile reported unsigned")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, code) {
		t.Errorf("stripped file is %d bytes, want %d", len(got), len(code))
	}
}

func TestStripFileUnsignedUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unsigned.ko")
	code := moduleCode(300)
	if err := os.WriteFile(path, code, 0444); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	signed, err := StripFile(path)
	if err != nil {
		t.Fatalf("StripFile: %v", err)
	}
	if signed {
		t.Error("StripFile reported unsigned module as signed")
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !os.SameFile(before, after) {
		t.Error("StripFile replaced an unsigned module")
	}
}
