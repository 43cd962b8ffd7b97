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

// Package disk models block devices and planned partition layouts and
// implements the layout suggestion planners. Planning is pure
// computation: the package reads immutable Device snapshots supplied
// by the caller and returns new, independently owned plans; nothing
// here touches a physical device.
package disk

import (
	"github.com/canonical/diskplan/quantity"
)

// PartitionInfo describes a partition already present on a device.
// The information is read-only and informational; the planners never
// modify or preserve existing partitions.
type PartitionInfo struct {
	// Node is the device node of the partition, e.g. /dev/sda1.
	Node string `yaml:"node" json:"node"`
	// StartOffset is the offset of the partition from the start of
	// the device.
	StartOffset quantity.Offset `yaml:"start" json:"start"`
	// Size of the partition.
	Size quantity.Size `yaml:"size" json:"size"`
	// FSType is the filesystem detected on the partition, when known.
	FSType string `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
}

// Device is an immutable snapshot of a block device. Devices are
// discovered externally and passed in by the caller; the planners
// never mutate one. Device identity is the Path string.
type Device struct {
	// Path is the stable device node path, e.g. /dev/sda.
	Path string `yaml:"path" json:"path"`
	// Model is the hardware model name, when known.
	Model string `yaml:"model,omitempty" json:"model,omitempty"`
	// Size is the total size of the device.
	Size quantity.Size `yaml:"size" json:"size"`
	// SectorSize is the logical sector size of the device.
	SectorSize quantity.Size `yaml:"sector-size,omitempty" json:"sector-size,omitempty"`
	// Schema is the partition table schema, GPT or DOS, when known.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`
	// Partitions lists the partitions currently on the device.
	Partitions []PartitionInfo `yaml:"partitions,omitempty" json:"partitions,omitempty"`
}

// DeviceModification is the planned set of partitions for one device,
// together with the decision to wipe it. It owns its partition
// modifications; the referenced Device is shared and read-only.
type DeviceModification struct {
	Device *Device `yaml:"device" json:"device"`
	// Wipe requests that any existing partition table is discarded
	// before the planned partitions are created.
	Wipe bool `yaml:"wipe" json:"wipe"`
	// Partitions are the planned partitions, in physical order on
	// the device.
	Partitions []*PartitionModification `yaml:"partitions" json:"partitions"`
}

// NewDeviceModification returns an empty modification plan for the
// given device.
func NewDeviceModification(device *Device, wipe bool) *DeviceModification {
	return &DeviceModification{
		Device: device,
		Wipe:   wipe,
	}
}

// AddPartition appends a partition to the plan. Insertion order is
// physical order on the device; callers derive each partition's start
// from the end of the previous one (or a fixed policy offset), the
// plan is not re-validated afterwards.
func (dm *DeviceModification) AddPartition(pm *PartitionModification) {
	dm.Partitions = append(dm.Partitions, pm)
}

// FindModification returns the modification planned for the device
// with the given path, or nil. Devices are matched by path string,
// never by pointer identity.
func FindModification(mods []*DeviceModification, path string) *DeviceModification {
	for _, dm := range mods {
		if dm.Device != nil && dm.Device.Path == path {
			return dm
		}
	}
	return nil
}
