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
	"os"
	"path/filepath"

	. "gopkg.in/check.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/quantity"
)

type planSuite struct {
	baseSuite
}

var _ = Suite(&planSuite{})

const oneDiskYAML = `devices:
  - path: /dev/sda
    size: 60G
    sector-size: "512"
`

const twoDisksYAML = `devices:
  - path: /dev/sda
    size: 10G
    sector-size: "512"
  - path: /dev/sdb
    size: 45G
    sector-size: "512"
`

func (s *planSuite) plan(c *C, extra ...string) error {
	args := append([]string{"plan", "--config", noConfig(c)}, extra...)
	_, err := Parser().ParseArgs(args)
	return err
}

func (s *planSuite) decodeLayout(c *C) *disk.LayoutConfiguration {
	var layout disk.LayoutConfiguration
	c.Assert(yaml.Unmarshal(s.stdout.Bytes(), &layout), IsNil)
	return &layout
}

func (s *planSuite) TestPlanSingleDisk(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4",
		"--separate-home", "yes", "--uefi")
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	c.Check(layout.ConfigType, Equals, disk.LayoutDefault)
	c.Assert(layout.DeviceModifications, HasLen, 1)

	mod := layout.DeviceModifications[0]
	c.Check(mod.Device.Path, Equals, "/dev/sda")
	c.Check(mod.Wipe, Equals, true)
	c.Assert(mod.Partitions, HasLen, 3)
	c.Check(mod.Partitions[0].FSType, Equals, disk.FilesystemFat32)
	c.Check(mod.Partitions[0].Mountpoint, Equals, "/boot")
	c.Check(mod.Partitions[1].Mountpoint, Equals, "/")
	c.Check(mod.Partitions[1].Length, Equals, 20*quantity.SizeGiB)
	c.Check(mod.Partitions[2].Mountpoint, Equals, "/home")
}

func (s *planSuite) TestPlanBIOS(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4",
		"--separate-home", "no", "--bios")
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	mod := layout.DeviceModifications[0]
	c.Assert(mod.Partitions, HasLen, 2)
	c.Check(mod.Partitions[0].Start, Equals, 3*quantity.OffsetMiB)
	c.Check(mod.Partitions[0].FSType, Equals, disk.FilesystemFat32)
	c.Check(mod.Partitions[1].Start, Equals, 206*quantity.OffsetMiB)
}

func (s *planSuite) TestPlanBtrfsSubvolumes(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "btrfs",
		"--subvolumes", "--compression", "--uefi")
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	mod := layout.DeviceModifications[0]
	c.Assert(mod.Partitions, HasLen, 2)
	root := mod.Partitions[1]
	c.Check(root.FSType, Equals, disk.FilesystemBtrfs)
	c.Assert(root.Subvolumes, HasLen, 5)
	c.Check(root.Subvolumes[0].Name, Equals, "@")
	c.Check(root.MountOptions, DeepEquals, []string{"compress=zstd"})
}

func (s *planSuite) TestPlanMultiDisk(c *C) {
	devicesFile := s.writeDevicesFile(c, twoDisksYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4", "--uefi")
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	c.Assert(layout.DeviceModifications, HasLen, 2)
	root := disk.FindModification(layout.DeviceModifications, "/dev/sda")
	c.Assert(root, NotNil)
	home := disk.FindModification(layout.DeviceModifications, "/dev/sdb")
	c.Assert(home, NotNil)
}

func (s *planSuite) TestPlanInfeasible(c *C) {
	devicesFile := s.writeDevicesFile(c, `devices:
  - path: /dev/sda
    size: 10G
    sector-size: "512"
  - path: /dev/sdb
    size: 12G
    sector-size: "512"
`)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4", "--uefi")
	c.Check(err, ErrorMatches, "no layout suggestion is possible: .*minimum capacity.*")
}

func (s *planSuite) TestPlanJSON(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4",
		"--separate-home", "no", "--uefi", "--json")
	c.Assert(err, IsNil)

	var layout disk.LayoutConfiguration
	c.Assert(json.Unmarshal(s.stdout.Bytes(), &layout), IsNil)
	c.Check(layout.ConfigType, Equals, disk.LayoutDefault)
	c.Assert(layout.DeviceModifications, HasLen, 1)
}

func (s *planSuite) TestPlanSelectDevice(c *C) {
	devicesFile := s.writeDevicesFile(c, twoDisksYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4",
		"--separate-home", "no", "--uefi", "/dev/sdb")
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	c.Assert(layout.DeviceModifications, HasLen, 1)
	c.Check(layout.DeviceModifications[0].Device.Path, Equals, "/dev/sdb")
}

func (s *planSuite) TestPlanSelectUnknownDevice(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4", "/dev/sdz")
	c.Check(err, ErrorMatches, `cannot find device "/dev/sdz"`)
}

func (s *planSuite) TestPlanFirmwareConflict(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--filesystem", "ext4", "--uefi", "--bios")
	c.Check(err, ErrorMatches, "cannot use --uefi and --bios together")
}

func (s *planSuite) TestPlanConfigDefaults(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)
	configFile := filepath.Join(c.MkDir(), "diskplan.conf")
	c.Assert(os.WriteFile(configFile, []byte(`[plan]
filesystem=ext4
separate-home=yes
`), 0644), IsNil)

	_, err := Parser().ParseArgs([]string{"plan", "--config", configFile,
		"--devices", devicesFile, "--uefi"})
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	mod := layout.DeviceModifications[0]
	c.Assert(mod.Partitions, HasLen, 3)
	c.Check(mod.Partitions[1].FSType, Equals, disk.FilesystemExt4)
}

func (s *planSuite) TestPlanFlagOverridesConfig(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)
	configFile := filepath.Join(c.MkDir(), "diskplan.conf")
	c.Assert(os.WriteFile(configFile, []byte(`[plan]
filesystem=btrfs
`), 0644), IsNil)

	_, err := Parser().ParseArgs([]string{"plan", "--config", configFile,
		"--devices", devicesFile, "--filesystem", "xfs",
		"--separate-home", "no", "--uefi"})
	c.Assert(err, IsNil)

	layout := s.decodeLayout(c)
	mod := layout.DeviceModifications[0]
	c.Check(mod.Partitions[1].FSType, Equals, disk.FilesystemXfs)
}

func (s *planSuite) TestPlanNoFilesystem(c *C) {
	devicesFile := s.writeDevicesFile(c, oneDiskYAML)

	err := s.plan(c, "--devices", devicesFile, "--separate-home", "no", "--uefi")
	c.Check(err, ErrorMatches, ".*no filesystem.*")
}

func (s *planSuite) TestPlanBadDevicesFile(c *C) {
	err := s.plan(c, "--devices", filepath.Join(c.MkDir(), "missing.yaml"))
	c.Check(err, ErrorMatches, "cannot read devices file: .*")

	empty := s.writeDevicesFile(c, "devices: []\n")
	err = s.plan(c, "--devices", empty, "--filesystem", "ext4")
	c.Check(err, ErrorMatches, ".*lists no devices")

	noPath := s.writeDevicesFile(c, "devices:\n  - size: 60G\n")
	err = s.plan(c, "--devices", noPath, "--filesystem", "ext4")
	c.Check(err, ErrorMatches, ".*has a device without a path")
}

type devicesSuite struct {
	baseSuite
}

var _ = Suite(&devicesSuite{})

func (s *devicesSuite) TestDevicesListing(c *C) {
	devicesFile := s.writeDevicesFile(c, `devices:
  - path: /dev/sda
    model: QEMU HARDDISK
    size: 60G
    sector-size: "512"
    partitions:
      - node: /dev/sda1
        start: 1M
        size: 512M
  - path: /dev/sdb
    size: 45G
    sector-size: "512"
`)

	_, err := Parser().ParseArgs([]string{"devices", "--devices", devicesFile})
	c.Assert(err, IsNil)

	out := s.stdout.String()
	c.Check(out, Matches, "(?s)Path\\s+Size\\s+Sector\\s+Partitions\\s+Model.*")
	c.Check(out, Matches, "(?s).*/dev/sda\\s+60 GiB\\s+512\\s+1\\s+QEMU HARDDISK.*")
	c.Check(out, Matches, "(?s).*/dev/sdb\\s+45 GiB\\s+512\\s+0.*")
}

func (s *devicesSuite) TestDevicesExtraArgs(c *C) {
	_, err := Parser().ParseArgs([]string{"devices", "extra"})
	c.Check(err, Equals, ErrExtraArgs)
}
