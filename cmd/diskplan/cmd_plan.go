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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"

	"github.com/canonical/diskplan/config"
	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/interact"
	"github.com/canonical/diskplan/osutil"
)

type cmdPlan struct {
	DevicesFile string `long:"devices" description:"YAML file describing the candidate devices instead of discovering them"`
	Filesystem  string `long:"filesystem" choice:"btrfs" choice:"ext4" choice:"xfs" choice:"f2fs" choice:"ntfs" description:"filesystem for the main partitions"`
	Subvolumes  bool   `long:"subvolumes" description:"use the default btrfs subvolume layout"`
	Compression bool   `long:"compression" description:"enable btrfs zstd compression"`

	SeparateHome string `long:"separate-home" choice:"yes" choice:"no" choice:"ask" description:"put /home on its own partition (single disk only)"`

	UEFI bool `long:"uefi" description:"plan for UEFI firmware (default: detect)"`
	BIOS bool `long:"bios" description:"plan for legacy BIOS firmware (default: detect)"`

	Advanced   bool   `long:"advanced" description:"offer advanced filesystem choices"`
	ConfigFile string `long:"config" description:"defaults file to read" default:"/etc/diskplan/diskplan.conf"`
	JSON       bool   `long:"json" description:"output the plan as JSON instead of YAML"`

	Positional struct {
		Devices []string `positional-arg-name:"<device>"`
	} `positional-args:"yes"`
}

var shortPlanHelp = "Suggest a partition layout for one or more devices"
var longPlanHelp = `
The plan command suggests a partition layout for the given devices:
for one device a boot/root (and optionally home) split, for several
devices a root and a home device. The resulting plan is printed and
no device is modified.
`

func init() {
	addCommand("plan", shortPlanHelp, longPlanHelp, func() flags.Commander { return &cmdPlan{} })
}

// devicesDocument is the YAML document accepted by --devices.
type devicesDocument struct {
	Devices []*disk.Device `yaml:"devices"`
}

func loadDevicesFile(path string) ([]*disk.Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read devices file: %v", err)
	}
	var doc devicesDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse devices file %s: %v", path, err)
	}
	if len(doc.Devices) == 0 {
		return nil, fmt.Errorf("devices file %s lists no devices", path)
	}
	for _, d := range doc.Devices {
		if d.Path == "" {
			return nil, fmt.Errorf("devices file %s has a device without a path", path)
		}
	}
	return doc.Devices, nil
}

func selectDevices(devices []*disk.Device, paths []string) ([]*disk.Device, error) {
	if len(paths) == 0 {
		return devices, nil
	}
	selected := make([]*disk.Device, 0, len(paths))
	for _, path := range paths {
		var found *disk.Device
		for _, d := range devices {
			if d.Path == path {
				found = d
				break
			}
		}
		if found == nil {
			return nil, fmt.Errorf("cannot find device %q", path)
		}
		selected = append(selected, found)
	}
	return selected, nil
}

func (x *cmdPlan) firmwareUEFI() (bool, error) {
	if x.UEFI && x.BIOS {
		return false, fmt.Errorf("cannot use --uefi and --bios together")
	}
	switch {
	case x.UEFI:
		return true, nil
	case x.BIOS:
		return false, nil
	}
	return osutil.IsUEFI(), nil
}

func (x *cmdPlan) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	defaults, err := config.Read(x.ConfigFile)
	if err != nil {
		return err
	}

	// command line choices override the defaults file; an absent
	// flag keeps the configured preset
	fsOutcome := interact.Skip()
	if x.Filesystem != "" {
		fsOutcome = interact.Selection(x.Filesystem)
	}
	fsType := disk.FilesystemType(fsOutcome.Apply(defaults.Filesystem))

	homeOutcome := interact.Skip()
	if x.SeparateHome != "" {
		homeOutcome = interact.Selection(x.SeparateHome)
	}
	separateHome := homeOutcome.Apply(defaults.SeparateHome)

	preference := disk.HomeAsk
	switch separateHome {
	case "yes":
		preference = disk.HomeSeparate
	case "no":
		preference = disk.HomeCombined
	}

	uefi, err := x.firmwareUEFI()
	if err != nil {
		return err
	}

	var devices []*disk.Device
	if x.DevicesFile != "" {
		devices, err = loadDevicesFile(x.DevicesFile)
	} else {
		devices, err = disk.DiscoverDevices()
	}
	if err != nil {
		return err
	}
	devices, err = selectDevices(devices, x.Positional.Devices)
	if err != nil {
		return err
	}

	resolver := &interact.Script{
		Filesystem:   fsType,
		Subvolumes:   x.Subvolumes,
		Compression:  x.Compression || defaults.Compression,
		SeparateHome: separateHome == "yes",
	}
	opts := &disk.SuggestOptions{
		UEFI:            uefi,
		AdvancedOptions: x.Advanced || defaults.Advanced,
		SeparateHome:    preference,
	}

	layout, err := disk.NewDefaultLayout(devices, fsType, opts, resolver)
	if err != nil {
		return err
	}
	if layout == nil {
		return fmt.Errorf("no layout suggestion is possible: %s", strings.Join(resolver.Advisories(), "; "))
	}

	if x.JSON {
		enc := json.NewEncoder(Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(layout)
	}

	out, err := yaml.Marshal(layout)
	if err != nil {
		return err
	}
	fmt.Fprint(Stdout, string(out))
	return nil
}
