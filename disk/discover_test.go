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
	"os"
	"path/filepath"
	"strconv"

	. "gopkg.in/check.v1"

	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/quantity"
)

type discoverSuite struct {
	sysBlock      string
	restoreSys    func()
	restoreLogger func()
}

var _ = Suite(&discoverSuite{})

func (s *discoverSuite) SetUpTest(c *C) {
	s.sysBlock = c.MkDir()
	s.restoreSys = disk.MockSysBlockDir(s.sysBlock)
	_, s.restoreLogger = logger.MockLogger()
}

func (s *discoverSuite) TearDownTest(c *C) {
	s.restoreSys()
	s.restoreLogger()
}

func (s *discoverSuite) writeFile(c *C, path, content string) {
	full := filepath.Join(s.sysBlock, path)
	c.Assert(os.MkdirAll(filepath.Dir(full), 0755), IsNil)
	c.Assert(os.WriteFile(full, []byte(content), 0644), IsNil)
}

func (s *discoverSuite) addDevice(c *C, name string, sectors uint64) {
	s.writeFile(c, filepath.Join(name, "size"), strconv.FormatUint(sectors, 10)+"\n")
	s.writeFile(c, filepath.Join(name, "queue", "hw_sector_size"), "512\n")
}

func itoa(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func (s *discoverSuite) TestDiscoverDevices(c *C) {
	// 60 GiB disk with two partitions
	s.addDevice(c, "sda", 60*1024*1024*2)
	s.writeFile(c, "sda/device/model", "QEMU HARDDISK\n")
	s.writeFile(c, "sda/sda1/partition", "1\n")
	s.writeFile(c, "sda/sda1/start", "2048\n")
	s.writeFile(c, "sda/sda1/size", itoa(512*1024*2)+"\n")
	s.writeFile(c, "sda/sda2/partition", "2\n")
	s.writeFile(c, "sda/sda2/start", itoa(1050624)+"\n")
	s.writeFile(c, "sda/sda2/size", itoa(20*1024*1024*2)+"\n")
	// empty 45 GiB disk
	s.addDevice(c, "sdb", 45*1024*1024*2)
	// virtual devices are skipped
	s.addDevice(c, "loop0", 1024)
	s.addDevice(c, "zram0", 1024)
	s.addDevice(c, "dm-0", 1024)

	devices, err := disk.DiscoverDevices()
	c.Assert(err, IsNil)
	c.Assert(devices, HasLen, 2)

	sda := devices[0]
	c.Check(sda.Path, Equals, "/dev/sda")
	c.Check(sda.Model, Equals, "QEMU HARDDISK")
	c.Check(sda.Size, Equals, 60*quantity.SizeGiB)
	c.Check(sda.SectorSize, Equals, quantity.Size(512))
	c.Assert(sda.Partitions, HasLen, 2)
	c.Check(sda.Partitions[0], DeepEquals, disk.PartitionInfo{
		Node:        "/dev/sda1",
		StartOffset: quantity.Offset(2048 * 512),
		Size:        512 * quantity.SizeMiB,
	})
	c.Check(sda.Partitions[1].Node, Equals, "/dev/sda2")
	c.Check(sda.Partitions[1].Size, Equals, 20*quantity.SizeGiB)

	sdb := devices[1]
	c.Check(sdb.Path, Equals, "/dev/sdb")
	c.Check(sdb.Size, Equals, 45*quantity.SizeGiB)
	c.Check(sdb.Partitions, HasLen, 0)
}

func (s *discoverSuite) TestDiscoverDevicesMissingSysfs(c *C) {
	restore := disk.MockSysBlockDir(filepath.Join(c.MkDir(), "missing"))
	defer restore()

	_, err := disk.DiscoverDevices()
	c.Check(err, ErrorMatches, "cannot enumerate block devices: .*")
}

func (s *discoverSuite) TestDiscoverDevicesSkipsUnreadable(c *C) {
	// a device directory without a size attribute is skipped
	s.writeFile(c, "sdx/queue/hw_sector_size", "512\n")
	s.addDevice(c, "sda", 1024)

	devices, err := disk.DiscoverDevices()
	c.Assert(err, IsNil)
	c.Assert(devices, HasLen, 1)
	c.Check(devices[0].Path, Equals, "/dev/sda")
}

func (s *discoverSuite) TestRefreshDevice(c *C) {
	s.addDevice(c, "sda", 60*1024*1024*2)

	device, err := disk.RefreshDevice("/dev/sda")
	c.Assert(err, IsNil)
	c.Check(device.Size, Equals, 60*quantity.SizeGiB)

	_, err = disk.RefreshDevice("/dev/sdz")
	c.Check(err, ErrorMatches, `cannot find device "/dev/sdz"`)
}
