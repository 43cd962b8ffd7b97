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

package disk_test

import (
	"encoding/json"

	. "gopkg.in/check.v1"
	"gopkg.in/yaml.v2"

	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/quantity"
)

type layoutSuite struct {
	restoreLogger func()
}

var _ = Suite(&layoutSuite{})

func (s *layoutSuite) SetUpTest(c *C) {
	_, s.restoreLogger = logger.MockLogger()
}

func (s *layoutSuite) TearDownTest(c *C) {
	s.restoreLogger()
}

func (s *layoutSuite) TestNewDefaultLayoutSingle(c *C) {
	devices := []*disk.Device{mkDevice("/dev/sda", 30*quantity.SizeGiB)}

	layout, err := disk.NewDefaultLayout(devices, disk.FilesystemExt4, &disk.SuggestOptions{UEFI: true}, &testResolver{})
	c.Assert(err, IsNil)
	c.Assert(layout, NotNil)
	c.Check(layout.ConfigType, Equals, disk.LayoutDefault)
	c.Assert(layout.DeviceModifications, HasLen, 1)
	c.Check(layout.DeviceModifications[0].Device.Path, Equals, "/dev/sda")
	c.Check(layout.RelativeMountpoint, Equals, "")
}

func (s *layoutSuite) TestNewDefaultLayoutMulti(c *C) {
	devices := []*disk.Device{
		mkDevice("/dev/sda", 10*quantity.SizeGiB),
		mkDevice("/dev/sdb", 45*quantity.SizeGiB),
	}

	layout, err := disk.NewDefaultLayout(devices, disk.FilesystemExt4, nil, &testResolver{})
	c.Assert(err, IsNil)
	c.Assert(layout, NotNil)
	c.Check(layout.ConfigType, Equals, disk.LayoutDefault)
	c.Assert(layout.DeviceModifications, HasLen, 2)
}

func (s *layoutSuite) TestNewDefaultLayoutInfeasible(c *C) {
	devices := []*disk.Device{
		mkDevice("/dev/sda", 10*quantity.SizeGiB),
		mkDevice("/dev/sdb", 12*quantity.SizeGiB),
	}
	resolver := &testResolver{}

	layout, err := disk.NewDefaultLayout(devices, disk.FilesystemExt4, nil, resolver)
	c.Assert(err, IsNil)
	c.Check(layout, IsNil)
	c.Check(resolver.advisories, Equals, 1)
}

func (s *layoutSuite) TestNewDefaultLayoutNoDevices(c *C) {
	_, err := disk.NewDefaultLayout(nil, disk.FilesystemExt4, nil, &testResolver{})
	c.Check(err, ErrorMatches, "cannot suggest a layout without devices")
}

func (s *layoutSuite) TestNewManualLayout(c *C) {
	mod := disk.NewDeviceModification(mkDevice("/dev/sda", 30*quantity.SizeGiB), false)
	layout := disk.NewManualLayout([]*disk.DeviceModification{mod})
	c.Check(layout.ConfigType, Equals, disk.LayoutManual)
	c.Assert(layout.DeviceModifications, HasLen, 1)
	c.Check(layout.DeviceModifications[0].Wipe, Equals, false)
}

func (s *layoutSuite) TestNewPreMountLayout(c *C) {
	layout := disk.NewPreMountLayout("/mnt", nil)
	c.Check(layout.ConfigType, Equals, disk.LayoutPreMount)
	c.Check(layout.RelativeMountpoint, Equals, "/mnt")
}

func (s *layoutSuite) TestFindModification(c *C) {
	devA := mkDevice("/dev/sda", 30*quantity.SizeGiB)
	devB := mkDevice("/dev/sdb", 30*quantity.SizeGiB)
	mods := []*disk.DeviceModification{
		disk.NewDeviceModification(devA, true),
		disk.NewDeviceModification(devB, true),
	}

	// matched by path, not pointer identity
	other := mkDevice("/dev/sdb", 30*quantity.SizeGiB)
	found := disk.FindModification(mods, other.Path)
	c.Assert(found, NotNil)
	c.Check(found.Device, Equals, devB)

	c.Check(disk.FindModification(mods, "/dev/sdz"), IsNil)
}

func (s *layoutSuite) TestLayoutYAML(c *C) {
	device := mkDevice("/dev/sda", 60*quantity.SizeGiB)
	layout, err := disk.NewDefaultLayout([]*disk.Device{device}, disk.FilesystemExt4,
		&disk.SuggestOptions{UEFI: true, SeparateHome: disk.HomeSeparate}, &testResolver{})
	c.Assert(err, IsNil)

	out, err := yaml.Marshal(layout)
	c.Assert(err, IsNil)
	c.Check(string(out), Equals, `config-type: default
modifications:
- device:
    path: /dev/sda
    size: 60G
    sector-size: "512"
  wipe: true
  partitions:
  - status: create
    type: primary
    start: 1M
    length: 512M
    filesystem: fat32
    mountpoint: /boot
    flags:
    - boot
  - status: create
    type: primary
    start: 513M
    length: 20G
    filesystem: ext4
    mountpoint: /
  - status: create
    type: primary
    start: 20G
    length: 60G
    filesystem: ext4
    mountpoint: /home
`)

	// and it round-trips
	var decoded disk.LayoutConfiguration
	c.Assert(yaml.Unmarshal(out, &decoded), IsNil)
	c.Check(&decoded, DeepEquals, layout)
}

func (s *layoutSuite) TestLayoutJSON(c *C) {
	device := mkDevice("/dev/sda", 30*quantity.SizeGiB)
	layout, err := disk.NewDefaultLayout([]*disk.Device{device}, disk.FilesystemExt4,
		&disk.SuggestOptions{UEFI: true}, &testResolver{})
	c.Assert(err, IsNil)

	out, err := json.Marshal(layout)
	c.Assert(err, IsNil)

	var decoded disk.LayoutConfiguration
	c.Assert(json.Unmarshal(out, &decoded), IsNil)
	c.Check(&decoded, DeepEquals, layout)
}
