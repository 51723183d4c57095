// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compare

import "testing"

func TestDefaultClasses(t *testing.T) {
	classes := DefaultClasses()
	tests := []struct {
		name       string
		executable bool
		kernel     bool
		module     bool
	}{
		{"usr/lib/shim/shimx64.efi", true, false, false},
		{"boot/efi/EFI/BOOT/BOOTX64.EFI", true, false, false},
		{"boot/vmlinuz", false, true, false},
		{"boot/vmlinuz-6.1.0-13-amd64", false, true, false},
		{"usr/lib/linux/vmlinuz", false, true, false},
		{"boot/vmlinuz.old", false, false, false},
		{"lib/modules/6.1.0/kernel/fs/ext4/ext4.ko", false, false, true},
		{"lib/modules/6.1.0/kernel/fs/ext4/ext4.ko.xz", false, false, false},
		{"usr/share/doc/efi-notes.txt", false, false, false},
	}
	for _, test := range tests {
		if got := classes.IsExecutable(test.name); got != test.executable {
			t.Errorf("IsExecutable(%q) = %v, want %v", test.name, got, test.executable)
		}
		if got := classes.IsKernelImage(test.name); got != test.kernel {
			t.Errorf("IsKernelImage(%q) = %v, want %v", test.name, got, test.kernel)
		}
		if got := classes.IsModule(test.name); got != test.module {
			t.Errorf("IsModule(%q) = %v, want %v", test.name, got, test.module)
		}
	}
}

func TestCustomClasses(t *testing.T) {
	classes := Classes{
		ExecutableSuffixes: []string{".signed"},
		KernelImageNames:   []string{"Image"},
		ModuleSuffixes:     []string{".kmod"},
	}
	if !classes.IsExecutable("boot/grub.signed") || classes.IsExecutable("boot/grubx64.efi") {
		t.Error("executable suffixes not taken from configuration")
	}
	if !classes.IsKernelImage("boot/Image-6.1") || classes.IsKernelImage("boot/vmlinuz") {
		t.Error("kernel image names not taken from configuration")
	}
	if !classes.IsModule("x.kmod") || classes.IsModule("x.ko") {
		t.Error("module suffixes not taken from configuration")
	}
}
