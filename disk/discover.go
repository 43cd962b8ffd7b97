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
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/quantity"
)

var sysBlockDir = "/sys/block"

// MockSysBlockDir changes the sysfs directory scanned by
// DiscoverDevices for testing.
func MockSysBlockDir(dir string) (restore func()) {
	old := sysBlockDir
	sysBlockDir = dir
	return func() {
		sysBlockDir = old
	}
}

// sysfs size attributes count 512-byte sectors regardless of the
// device's logical sector size
const sysfsSectorSize = 512

func isVirtualBlockDevice(name string) bool {
	for _, prefix := range []string{"loop", "ram", "zram", "dm-", "md", "fd"} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func readSysfsNumber(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %s: %v", path, err)
	}
	return n, nil
}

func readSysfsString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func discoverPartitions(devDir, devName string) ([]PartitionInfo, error) {
	entries, err := os.ReadDir(devDir)
	if err != nil {
		return nil, err
	}

	var parts []PartitionInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), devName) {
			continue
		}
		partDir := filepath.Join(devDir, entry.Name())
		if _, err := os.Stat(filepath.Join(partDir, "partition")); err != nil {
			continue
		}
		start, err := readSysfsNumber(filepath.Join(partDir, "start"))
		if err != nil {
			return nil, fmt.Errorf("cannot read partition start for %s: %v", entry.Name(), err)
		}
		size, err := readSysfsNumber(filepath.Join(partDir, "size"))
		if err != nil {
			return nil, fmt.Errorf("cannot read partition size for %s: %v", entry.Name(), err)
		}
		parts = append(parts, PartitionInfo{
			Node:        filepath.Join("/dev", entry.Name()),
			StartOffset: quantity.Offset(start * sysfsSectorSize),
			Size:        quantity.Size(size * sysfsSectorSize),
		})
	}

	sort.Slice(parts, func(i, j int) bool {
		return parts[i].StartOffset < parts[j].StartOffset
	})
	return parts, nil
}

// DiscoverDevices scans sysfs for physical block devices and returns
// immutable snapshots for the planners. Virtual devices (loopback,
// ramdisks, device mapper) are skipped.
func DiscoverDevices() ([]*Device, error) {
	entries, err := os.ReadDir(sysBlockDir)
	if err != nil {
		return nil, fmt.Errorf("cannot enumerate block devices: %v", err)
	}

	var devices []*Device
	for _, entry := range entries {
		name := entry.Name()
		if isVirtualBlockDevice(name) {
			continue
		}
		devDir := filepath.Join(sysBlockDir, name)

		sectors, err := readSysfsNumber(filepath.Join(devDir, "size"))
		if err != nil {
			logger.Debugf("skipping %s: %v", name, err)
			continue
		}
		sectorSize := uint64(sysfsSectorSize)
		if n, err := readSysfsNumber(filepath.Join(devDir, "queue", "hw_sector_size")); err == nil {
			sectorSize = n
		}

		parts, err := discoverPartitions(devDir, name)
		if err != nil {
			return nil, err
		}

		devices = append(devices, &Device{
			Path:       filepath.Join("/dev", name),
			Model:      readSysfsString(filepath.Join(devDir, "device", "model")),
			Size:       quantity.Size(sectors * sysfsSectorSize),
			SectorSize: quantity.Size(sectorSize),
			Partitions: parts,
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Path < devices[j].Path
	})
	return devices, nil
}

// RefreshDevice rescans sysfs and returns a fresh snapshot of the
// device with the given path.
func RefreshDevice(path string) (*Device, error) {
	devices, err := DiscoverDevices()
	if err != nil {
		return nil, err
	}
	for _, d := range devices {
		if d.Path == path {
			return d, nil
		}
	}
	return nil, fmt.Errorf("cannot find device %q", path)
}
