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
	"fmt"
	"text/tabwriter"

	"github.com/jessevdk/go-flags"

	"github.com/canonical/diskplan/disk"
)

type cmdDevices struct {
	DevicesFile string `long:"devices" description:"YAML file describing the candidate devices instead of discovering them"`
}

var shortDevicesHelp = "List the candidate block devices"
var longDevicesHelp = `
The devices command lists the block devices a layout can be planned
for, with their sizes and any existing partitions.
`

func init() {
	addCommand("devices", shortDevicesHelp, longDevicesHelp, func() flags.Commander { return &cmdDevices{} })
}

func (x *cmdDevices) Execute(args []string) error {
	if len(args) > 0 {
		return ErrExtraArgs
	}

	var devices []*disk.Device
	var err error
	if x.DevicesFile != "" {
		devices, err = loadDevicesFile(x.DevicesFile)
	} else {
		devices, err = disk.DiscoverDevices()
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(Stdout, 5, 3, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "Path\tSize\tSector\tPartitions\tModel")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			d.Path, d.Size.IECString(), d.SectorSize, len(d.Partitions), d.Model)
	}
	return nil
}
