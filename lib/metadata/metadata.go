// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FileType is the kind of filesystem entry, taken from the S_IFMT bits.
type FileType uint8

const (
	TypeRegular FileType = iota
	TypeDirectory
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
	TypeFIFO
	TypeSocket
)

// String returns the human-readable name of a file type.
func (fileType FileType) String() string {
	switch fileType {
	case TypeRegular:
		return "regular file"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeCharDevice:
		return "character device"
	case TypeBlockDevice:
		return "block device"
	case TypeFIFO:
		return "fifo"
	case TypeSocket:
		return "socket"
	default:
		return fmt.Sprintf("unknown(%d)", fileType)
	}
}

// Info is the metadata of one filesystem entry.
type Info struct {
	// Mode is the raw st_mode, file type bits included.
	Mode uint32
	UID  uint32
	GID  uint32
	Size int64
	Rdev uint64
}

// Lstat reads the metadata of path without following symlinks.
func Lstat(path string) (Info, error) {
	var stat unix.Stat_t
	if err := unix.Lstat(path, &stat); err != nil {
		return Info{}, fmt.Errorf("lstat %s: %w", path, err)
	}
	return Info{
		Mode: uint32(stat.Mode),
		UID:  stat.Uid,
		GID:  stat.Gid,
		Size: stat.Size,
		Rdev: uint64(stat.Rdev),
	}, nil
}

// Type returns the entry's file type.
func (info Info) Type() FileType {
	switch info.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return TypeDirectory
	case unix.S_IFLNK:
		return TypeSymlink
	case unix.S_IFCHR:
		return TypeCharDevice
	case unix.S_IFBLK:
		return TypeBlockDevice
	case unix.S_IFIFO:
		return TypeFIFO
	case unix.S_IFSOCK:
		return TypeSocket
	default:
		return TypeRegular
	}
}

// IsDevice reports whether the entry is a character or block device.
func (info Info) IsDevice() bool {
	fileType := info.Type()
	return fileType == TypeCharDevice || fileType == TypeBlockDevice
}

// Attribute names a compared metadata field.
type Attribute string

const (
	AttributeMode Attribute = "mode"
	AttributeUID  Attribute = "uid"
	AttributeGID  Attribute = "gid"
	AttributeRdev Attribute = "rdev"
)

// Difference is one attribute whose value differs between two entries.
type Difference struct {
	Attribute Attribute
	Left      uint64
	Right     uint64
}

// String renders the difference with both raw values; modes are octal.
func (d Difference) String() string {
	if d.Attribute == AttributeMode {
		return fmt.Sprintf("%s differs: %#o != %#o", d.Attribute, d.Left, d.Right)
	}
	return fmt.Sprintf("%s differs: %d != %d", d.Attribute, d.Left, d.Right)
}

// Compare returns the differences in mode, uid and gid between left
// and right, and in rdev when both are device nodes. The result is
// empty when the metadata matches.
func Compare(left, right Info) []Difference {
	var differences []Difference
	if left.Mode != right.Mode {
		differences = append(differences, Difference{AttributeMode, uint64(left.Mode), uint64(right.Mode)})
	}
	if left.UID != right.UID {
		differences = append(differences, Difference{AttributeUID, uint64(left.UID), uint64(right.UID)})
	}
	if left.GID != right.GID {
		differences = append(differences, Difference{AttributeGID, uint64(left.GID), uint64(right.GID)})
	}
	if left.IsDevice() && right.IsDevice() && left.Rdev != right.Rdev {
		differences = append(differences, Difference{AttributeRdev, left.Rdev, right.Rdev})
	}
	return differences
}

// SameSize reports whether both entries have the same size.
func SameSize(left, right Info) bool {
	return left.Size == right.Size
}
