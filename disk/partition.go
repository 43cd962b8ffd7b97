// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2024 Canonical Ltd
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

package disk

import (
	"github.com/canonical/diskplan/quantity"
)

// ModificationStatus describes what the execution stage should do
// with a planned partition. The planners only ever create.
type ModificationStatus string

const (
	// StatusCreate marks a partition that does not exist yet and
	// must be created.
	StatusCreate ModificationStatus = "create"
)

// PartitionType is the partition table entry type.
type PartitionType string

const (
	// PartitionTypePrimary is the only type the planners produce.
	PartitionTypePrimary PartitionType = "primary"
)

// PartitionFlag is a partition table flag to set on a partition.
type PartitionFlag string

const (
	// FlagBoot marks the partition the firmware boots from.
	FlagBoot PartitionFlag = "boot"
)

// FilesystemType is the filesystem a planned partition will be
// formatted with.
type FilesystemType string

const (
	// FilesystemUnset means no filesystem has been selected yet; the
	// planners resolve it through their Resolver before proceeding.
	FilesystemUnset FilesystemType = ""

	FilesystemFat32 FilesystemType = "fat32"
	FilesystemExt4  FilesystemType = "ext4"
	FilesystemBtrfs FilesystemType = "btrfs"
	FilesystemXfs   FilesystemType = "xfs"
	FilesystemF2fs  FilesystemType = "f2fs"
	FilesystemNtfs  FilesystemType = "ntfs"
)

// SupportsSubvolumes reports whether the filesystem can host
// independently mountable subvolumes.
func (f FilesystemType) SupportsSubvolumes() bool {
	return f == FilesystemBtrfs
}

// MainFilesystems returns the filesystem types offered for the main
// partitions. Ntfs is only offered when advanced options are enabled.
func MainFilesystems(advancedOptions bool) []FilesystemType {
	types := []FilesystemType{
		FilesystemBtrfs,
		FilesystemExt4,
		FilesystemXfs,
		FilesystemF2fs,
	}
	if advancedOptions {
		types = append(types, FilesystemNtfs)
	}
	return types
}

// SubvolumeModification maps a subvolume name to the mountpoint it
// will serve once the plan is executed.
type SubvolumeModification struct {
	Name       string `yaml:"name" json:"name"`
	Mountpoint string `yaml:"mountpoint" json:"mountpoint"`
}

// PartitionModification is one planned partition on a device.
type PartitionModification struct {
	Status ModificationStatus `yaml:"status" json:"status"`
	Type   PartitionType      `yaml:"type" json:"type"`
	// Start is the offset of the partition from the start of the
	// device.
	Start quantity.Offset `yaml:"start" json:"start"`
	// Length is the planned length. Lengths derived from a
	// percentage of the device total may exceed the actually
	// remaining space; the partition table mechanism clips them.
	Length quantity.Size  `yaml:"length" json:"length"`
	FSType FilesystemType `yaml:"filesystem" json:"filesystem"`
	// Mountpoint is empty when the partition is not mounted
	// directly, e.g. when subvolumes serve the mountpoints instead.
	Mountpoint   string          `yaml:"mountpoint,omitempty" json:"mountpoint,omitempty"`
	MountOptions []string        `yaml:"mount-options,omitempty" json:"mount-options,omitempty"`
	Flags        []PartitionFlag `yaml:"flags,omitempty" json:"flags,omitempty"`
	// Subvolumes is set only for subvolume-capable filesystems.
	Subvolumes []SubvolumeModification `yaml:"subvolumes,omitempty" json:"subvolumes,omitempty"`
}
