// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pesign

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// signatureBlock is appended once per signature by the fake tool.
var signatureBlock = []byte("\n--AUTHENTICODE--")

// fakeTool models a PE file as payload followed by one signatureBlock
// per signature, and counts the calls it receives.
type fakeTool struct {
	inspections int
	removals    int

	// stuck makes RemoveSignature copy the input unchanged.
	stuck bool
}

func (f *fakeTool) HasSignatures(_ context.Context, path string) (bool, error) {
	f.inspections++
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	return bytes.HasSuffix(data, signatureBlock), nil
}

func (f *fakeTool) RemoveSignature(_ context.Context, input, output string) error {
	f.removals++
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	if !f.stuck {
		data = bytes.TrimSuffix(data, signatureBlock)
	}
	return os.WriteFile(output, data, 0600)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSigned(t *testing.T, payload []byte, signatures int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shimx64.efi")
	data := append([]byte{}, payload...)
	for i := 0; i < signatures; i++ {
		data = append(data, signatureBlock...)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestStripRemovesEachSignature(t *testing.T) {
	payload := []byte("MZ\x90\x00 PE/COFF image")
	for _, signatures := range []int{0, 1, 2, 5} {
		path := writeSigned(t, payload, signatures)
		tool := &fakeTool{}

		removed, err := Strip(context.Background(), tool, path, discardLogger())
		if err != nil {
			t.Fatalf("Strip(%d signatures): %v", signatures, err)
		}
		if removed != signatures || tool.removals != signatures {
			t.Errorf("Strip(%d signatures): removed %d, tool saw %d removals", signatures, removed, tool.removals)
		}
		if tool.inspections != signatures+1 {
			t.Errorf("Strip(%d signatures): %d inspections, want %d", signatures, tool.inspections, signatures+1)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Strip(%d signatures) left %q, want payload", signatures, got)
		}
		if signed, _ := tool.HasSignatures(context.Background(), path); signed {
			t.Errorf("Strip(%d signatures) left a signature behind", signatures)
		}
	}
}

func TestStripUnsignedLeavesFileUntouched(t *testing.T) {
	path := writeSigned(t, []byte("MZ unsigned"), 0)
	before, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}

	tool := &fakeTool{}
	if _, err := Strip(context.Background(), tool, path, discardLogger()); err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if tool.removals != 0 {
		t.Errorf("removal invoked %d times on an unsigned file", tool.removals)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if !os.SameFile(before, after) || !after.ModTime().Equal(before.ModTime()) {
		t.Error("unsigned file was rewritten")
	}
}

func TestStripPreservesMode(t *testing.T) {
	path := writeSigned(t, []byte("MZ"), 1)
	if err := os.Chmod(path, 0700); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	if _, err := Strip(context.Background(), &fakeTool{}, path, discardLogger()); err != nil {
		t.Fatalf("Strip: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("mode = %o, want 0700", info.Mode().Perm())
	}
}

func TestStripNotConverging(t *testing.T) {
	path := writeSigned(t, []byte("MZ"), 1)
	tool := &fakeTool{stuck: true}

	_, err := Strip(context.Background(), tool, path, discardLogger())
	if !errors.Is(err, ErrNotConverging) {
		t.Fatalf("err = %v, want ErrNotConverging", err)
	}
	if tool.removals != MaxPasses {
		t.Errorf("removals = %d, want %d", tool.removals, MaxPasses)
	}
}

type failingTool struct{ fakeTool }

func (f *failingTool) RemoveSignature(context.Context, string, string) error {
	return errors.New("pesign: could not read signature list")
}

func TestStripRemovalFailure(t *testing.T) {
	path := writeSigned(t, []byte("MZ"), 1)
	_, err := Strip(context.Background(), &failingTool{}, path, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "could not read signature list") {
		t.Fatalf("err = %v, want removal failure", err)
	}

	// The reserved output name must not be left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after failed removal, want 1", len(entries))
	}
}

// writeFakePesign writes a shell script that mimics the pesign
// command-line surface used by [Pesign] on top of the fake file model.
func writeFakePesign(t *testing.T) string {
	t.Helper()
	script := `#!/bin/sh
mode=""
input=""
output=""
while [ $# -gt 0 ]; do
	case "$1" in
	-S) mode=show ;;
	-r) mode=remove ;;
	-u) shift ;;
	-i) shift; input="$1" ;;
	-o) shift; output="$1" ;;
	esac
	shift
done
case "$mode" in
show)
	if tail -c 17 "$input" | grep -q -- '--AUTHENTICODE--'; then
		echo "---------------------------------------------"
		echo "certificate address is 0x7f0000"
		echo "The signer's common name is Test Signing Key"
	else
		echo "No signatures found."
	fi
	;;
remove)
	size=$(wc -c < "$input")
	head -c $((size - 17)) "$input" > "$output"
	;;
esac
`
	path := filepath.Join(t.TempDir(), "pesign")
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("writing fake pesign: %v", err)
	}
	return path
}

func TestPesignTool(t *testing.T) {
	payload := []byte("MZ\x90\x00 grub image")
	path := writeSigned(t, payload, 2)
	tool := Pesign{Binary: writeFakePesign(t)}

	signed, err := tool.HasSignatures(context.Background(), path)
	if err != nil {
		t.Fatalf("HasSignatures: %v", err)
	}
	if !signed {
		t.Fatal("HasSignatures = false for a signed file")
	}

	removed, err := Strip(context.Background(), tool, path, discardLogger())
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("stripped content = %q, want %q", got, payload)
	}
}

func TestPesignDefaultBinary(t *testing.T) {
	if got := (Pesign{}).binary(); got != "pesign" {
		t.Errorf("binary() = %q, want pesign", got)
	}
}
