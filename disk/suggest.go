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
	"fmt"
	"sort"
	"strings"

	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/quantity"
)

// Resolver answers the questions a planner cannot decide on its own.
// It stands in for whatever front end drives the planning: an
// interactive menu, a script, or a remote request. Implementations
// must be side-effect free from the planner's point of view; the
// planners call them as pure functions.
type Resolver interface {
	// MainFilesystem picks the filesystem for the main partitions
	// out of MainFilesystems(advancedOptions).
	MainFilesystem(advancedOptions bool) (FilesystemType, error)
	// WantSubvolumes reports whether the default subvolume layout
	// should be used. Only asked for subvolume-capable filesystems.
	WantSubvolumes() (bool, error)
	// WantCompression reports whether transparent compression should
	// be enabled. Only asked for subvolume-capable filesystems.
	WantCompression() (bool, error)
	// WantSeparateHome reports whether /home should live on its own
	// partition.
	WantSeparateHome() (bool, error)
	// AdviseCapacity tells the user that no automatic suggestion is
	// possible, naming the minimum capacities for /home and /.
	AdviseCapacity(minHome, minRoot quantity.Size) error
}

// HomePreference is the caller's preset for the separate /home
// question: an explicit yes or no passes through, Ask defers to the
// resolver.
type HomePreference int

const (
	// HomeAsk leaves the separate-home decision to the resolver.
	HomeAsk HomePreference = iota
	// HomeSeparate requests a distinct /home partition.
	HomeSeparate
	// HomeCombined keeps /home on the root partition.
	HomeCombined
)

// SuggestOptions carries the externally resolved facts the planners
// need besides the filesystem choice.
type SuggestOptions struct {
	// UEFI is true when the machine booted through UEFI firmware,
	// false for legacy BIOS. Detected externally.
	UEFI bool
	// AdvancedOptions widens the offered filesystem set.
	AdvancedOptions bool
	// SeparateHome presets the single-disk separate-home question.
	SeparateHome HomePreference
}

const (
	// a separate /home is only considered on devices at least this big
	minSizeForSeparateHome = 40 * quantity.SizeGiB
	// target size for / when /home is split out
	desiredRootSize = 20 * quantity.SizeGiB

	compressionMountOption = "compress=zstd"
)

// Boot partition policy per firmware mode. On BIOS the first 2 MiB
// stay unallocated for the bootloader embedding area. The root start
// offsets are fixed constants per mode, not derived from the boot
// partition's end.
const (
	uefiBootStart = 1 * quantity.OffsetMiB
	uefiBootSize  = 512 * quantity.SizeMiB
	uefiRootStart = 513 * quantity.OffsetMiB

	biosBootStart = 3 * quantity.OffsetMiB
	biosBootSize  = 203 * quantity.SizeMiB
	biosRootStart = 206 * quantity.OffsetMiB
)

// BootPartition returns the boot partition for the given firmware
// mode: 1 MiB/512 MiB on UEFI, 3 MiB/203 MiB on legacy BIOS. It is
// formatted FAT32 and mounted at /boot.
func BootPartition(uefi bool) *PartitionModification {
	start, size := biosBootStart, biosBootSize
	if uefi {
		start, size = uefiBootStart, uefiBootSize
	}

	return &PartitionModification{
		Status:     StatusCreate,
		Type:       PartitionTypePrimary,
		Start:      start,
		Length:     size,
		Mountpoint: "/boot",
		FSType:     FilesystemFat32,
		Flags:      []PartitionFlag{FlagBoot},
	}
}

func rootStart(uefi bool) quantity.Offset {
	if uefi {
		return uefiRootStart
	}
	return biosRootStart
}

func mountOptions(compression bool) []string {
	if compression {
		return []string{compressionMountOption}
	}
	return nil
}

// defaultSubvolumes is the fixed subvolume layout attached to the
// root partition when subvolumes are selected.
func defaultSubvolumes() []SubvolumeModification {
	return []SubvolumeModification{
		{Name: "@", Mountpoint: "/"},
		{Name: "@home", Mountpoint: "/home"},
		{Name: "@log", Mountpoint: "/var/log"},
		{Name: "@pkg", Mountpoint: "/var/cache/pacman/pkg"},
		{Name: "@.snapshots", Mountpoint: "/.snapshots"},
	}
}

func resolveFilesystem(fsType FilesystemType, opts *SuggestOptions, resolver Resolver) (FilesystemType, error) {
	if fsType != FilesystemUnset {
		return fsType, nil
	}
	if resolver == nil {
		return FilesystemUnset, fmt.Errorf("cannot suggest layout: no filesystem type selected")
	}
	fsType, err := resolver.MainFilesystem(opts.AdvancedOptions)
	if err != nil {
		return FilesystemUnset, err
	}
	if fsType == FilesystemUnset {
		return FilesystemUnset, fmt.Errorf("cannot suggest layout: no filesystem type selected")
	}
	return fsType, nil
}

// SuggestSingleDiskLayout plans boot, root and optionally home
// partitions on a single device. The device is always wiped.
//
// For subvolume-capable filesystems the resolver decides whether to
// use the default subvolume layout and whether to compress; with
// subvolumes the root partition takes the whole device and its
// mountpoints are served by the subvolumes. Otherwise, on devices of
// at least 40 GiB, a separate /home partition may be split out (per
// the preset preference, or the resolver when the preference is
// HomeAsk): root is then capped at min(20 GiB, device size) and home
// gets a length of 100% of the device total starting at root's
// length, relying on the partition table mechanism to clip it to the
// actually remaining space.
//
// A zero-size device is not rejected; it yields zero-length
// partitions.
func SuggestSingleDiskLayout(device *Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) (*DeviceModification, error) {
	if opts == nil {
		opts = &SuggestOptions{}
	}

	fsType, err := resolveFilesystem(fsType, opts, resolver)
	if err != nil {
		return nil, err
	}

	usingSubvolumes := false
	compression := false
	if fsType.SupportsSubvolumes() {
		if resolver == nil {
			return nil, fmt.Errorf("cannot suggest layout: no resolver to decide subvolume usage")
		}
		if usingSubvolumes, err = resolver.WantSubvolumes(); err != nil {
			return nil, err
		}
		if compression, err = resolver.WantCompression(); err != nil {
			return nil, err
		}
	}

	usingHomePartition := false
	if !usingSubvolumes && device.Size >= minSizeForSeparateHome {
		switch opts.SeparateHome {
		case HomeSeparate:
			usingHomePartition = true
		case HomeCombined:
			usingHomePartition = false
		case HomeAsk:
			if resolver == nil {
				return nil, fmt.Errorf("cannot suggest layout: no resolver to decide separate /home")
			}
			if usingHomePartition, err = resolver.WantSeparateHome(); err != nil {
				return nil, err
			}
		}
	}

	modification := NewDeviceModification(device, true)
	modification.AddPartition(BootPartition(opts.UEFI))

	var rootLength quantity.Size
	if usingSubvolumes || device.Size < minSizeForSeparateHome || !usingHomePartition {
		rootLength = quantity.SizeFromPercentage(100, device.Size)
	} else {
		rootLength = quantity.MinSize(device.Size, desiredRootSize)
	}

	rootPartition := &PartitionModification{
		Status:       StatusCreate,
		Type:         PartitionTypePrimary,
		Start:        rootStart(opts.UEFI),
		Length:       rootLength,
		FSType:       fsType,
		MountOptions: mountOptions(compression),
	}
	if !usingSubvolumes {
		// with subvolumes, / is served by the @ subvolume instead
		rootPartition.Mountpoint = "/"
	}
	modification.AddPartition(rootPartition)

	if usingSubvolumes {
		rootPartition.Subvolumes = defaultSubvolumes()
	} else if usingHomePartition {
		// sized against the device total, not the remaining space;
		// the partition table mechanism clips it
		homePartition := &PartitionModification{
			Status:       StatusCreate,
			Type:         PartitionTypePrimary,
			Start:        quantity.Offset(rootPartition.Length),
			Length:       quantity.SizeFromPercentage(100, device.Size),
			Mountpoint:   "/home",
			FSType:       fsType,
			MountOptions: mountOptions(compression),
		}
		modification.AddPartition(homePartition)
	}

	logger.Debugf("suggesting single-disk layout for %s: %d partitions", device.Path, len(modification.Partitions))

	return modification, nil
}

// SuggestMultiDiskLayout plans / (with its boot partition) and /home
// on two of the given devices: /home goes to the largest device of at
// least 40 GiB, / to the remaining device closest to 20 GiB by signed
// delta. When no feasible assignment exists the resolver receives one
// capacity advisory and the result is empty with no error; that is a
// normal "no suggestion possible" outcome. Both chosen devices are
// wiped; subvolumes are never used on this path.
func SuggestMultiDiskLayout(devices []*Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) ([]*DeviceModification, error) {
	if len(devices) == 0 {
		return nil, nil
	}
	if opts == nil {
		opts = &SuggestOptions{}
	}

	fsType, err := resolveFilesystem(fsType, opts, resolver)
	if err != nil {
		return nil, err
	}

	var homeDevice *Device
	for _, d := range devices {
		if d.Size < minSizeForSeparateHome {
			continue
		}
		if homeDevice == nil || d.Size > homeDevice.Size {
			homeDevice = d
		}
	}

	type candidate struct {
		device *Device
		// signed distance from the desired root size; the closest
		// fit may be below the target
		delta int64
	}
	var candidates []candidate
	for _, d := range devices {
		if homeDevice != nil && d.Path == homeDevice.Path {
			continue
		}
		candidates = append(candidates, candidate{
			device: d,
			delta:  int64(d.Size) - int64(desiredRootSize),
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].delta < candidates[j].delta
	})

	var rootDevice *Device
	if len(candidates) > 0 {
		rootDevice = candidates[0].device
	}

	if homeDevice == nil || rootDevice == nil {
		if resolver != nil {
			if err := resolver.AdviseCapacity(minSizeForSeparateHome, desiredRootSize); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	compression := false
	if fsType.SupportsSubvolumes() {
		if resolver == nil {
			return nil, fmt.Errorf("cannot suggest layout: no resolver to decide compression")
		}
		if compression, err = resolver.WantCompression(); err != nil {
			return nil, err
		}
	}

	paths := make([]string, len(devices))
	for i, d := range devices {
		paths[i] = d.Path
	}
	logger.Debugf("suggesting multi-disk layout for devices: %s", strings.Join(paths, ", "))
	logger.Debugf("/ on %s", rootDevice.Path)
	logger.Debugf("/home on %s", homeDevice.Path)

	rootModification := NewDeviceModification(rootDevice, true)
	rootModification.AddPartition(BootPartition(opts.UEFI))
	rootModification.AddPartition(&PartitionModification{
		Status:       StatusCreate,
		Type:         PartitionTypePrimary,
		Start:        rootStart(opts.UEFI),
		Length:       quantity.SizeFromPercentage(100, rootDevice.Size),
		Mountpoint:   "/",
		FSType:       fsType,
		MountOptions: mountOptions(compression),
	})

	homeModification := NewDeviceModification(homeDevice, true)
	homeModification.AddPartition(&PartitionModification{
		Status:       StatusCreate,
		Type:         PartitionTypePrimary,
		Start:        1 * quantity.OffsetMiB,
		Length:       quantity.SizeFromPercentage(100, homeDevice.Size),
		Mountpoint:   "/home",
		FSType:       fsType,
		MountOptions: mountOptions(compression),
	})

	return []*DeviceModification{rootModification, homeModification}, nil
}
