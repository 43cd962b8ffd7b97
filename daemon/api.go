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

package daemon

import (
	"encoding/json"
	"net/http"

	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/interact"
	"github.com/canonical/diskplan/osutil"
	"github.com/canonical/diskplan/version"
)

var api = []*Command{
	rootCmd,
	sysInfoCmd,
	devicesCmd,
	planCmd,
}

var (
	rootCmd = &Command{
		Path: "/",
		GET:  getRoot,
	}

	sysInfoCmd = &Command{
		Path: "/v1.0",
		GET:  getSysInfo,
	}

	devicesCmd = &Command{
		Path: "/v1.0/devices",
		GET:  getDevices,
	}

	planCmd = &Command{
		Path: "/v1.0/plan",
		POST: postPlan,
	}
)

// testing seams
var (
	discoverDevices = disk.DiscoverDevices
	isUEFI          = osutil.IsUEFI
)

func getRoot(c *Command, r *http.Request) Response {
	return SyncResponse([]string{"/v1.0"})
}

func getSysInfo(c *Command, r *http.Request) Response {
	return SyncResponse(map[string]interface{}{
		"version":  version.Version,
		"uefi":     isUEFI(),
		"planners": disk.Planners(),
	})
}

func getDevices(c *Command, r *http.Request) Response {
	devices, err := discoverDevices()
	if err != nil {
		return InternalError("cannot discover devices: %v", err)
	}
	return SyncResponse(devices)
}

// planRequest is the body of POST /v1.0/plan: the candidate devices
// plus the already resolved user choices. Devices are named by path
// and matched against discovery, or described inline by remote
// callers that know their own hardware.
type planRequest struct {
	Planner     string         `json:"planner,omitempty"`
	Devices     []string       `json:"devices,omitempty"`
	DeviceSpecs []*disk.Device `json:"device-specs,omitempty"`

	Filesystem   disk.FilesystemType `json:"filesystem,omitempty"`
	UEFI         *bool               `json:"uefi,omitempty"`
	Advanced     bool                `json:"advanced,omitempty"`
	Subvolumes   bool                `json:"subvolumes,omitempty"`
	Compression  bool                `json:"compression,omitempty"`
	SeparateHome bool                `json:"separate-home,omitempty"`
}

// planResult carries either the suggested layout or the capacity
// advisories explaining why there is none.
type planResult struct {
	Layout     *disk.LayoutConfiguration `json:"layout,omitempty"`
	Advisories []string                  `json:"advisories,omitempty"`
}

func (req *planRequest) resolveDevices() ([]*disk.Device, Response) {
	if len(req.DeviceSpecs) > 0 {
		if len(req.Devices) > 0 {
			return nil, BadRequest("cannot use both devices and device-specs")
		}
		return req.DeviceSpecs, nil
	}
	if len(req.Devices) == 0 {
		return nil, BadRequest("cannot plan without devices")
	}

	discovered, err := discoverDevices()
	if err != nil {
		return nil, InternalError("cannot discover devices: %v", err)
	}
	devices := make([]*disk.Device, 0, len(req.Devices))
	for _, path := range req.Devices {
		var found *disk.Device
		for _, d := range discovered {
			if d.Path == path {
				found = d
				break
			}
		}
		if found == nil {
			return nil, BadRequest("cannot find device %q", path)
		}
		devices = append(devices, found)
	}
	return devices, nil
}

func postPlan(c *Command, r *http.Request) Response {
	var req planRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		return BadRequest("cannot decode plan request: %v", err)
	}

	devices, errRsp := req.resolveDevices()
	if errRsp != nil {
		return errRsp
	}

	name := req.Planner
	if name == "" {
		name = "single-disk"
		if len(devices) > 1 {
			name = "multi-disk"
		}
	}
	planner, err := disk.Planner(name)
	if err != nil {
		return BadRequest("%v", err)
	}

	uefi := isUEFI()
	if req.UEFI != nil {
		uefi = *req.UEFI
	}

	resolver := &interact.Script{
		Filesystem:   req.Filesystem,
		Subvolumes:   req.Subvolumes,
		Compression:  req.Compression,
		SeparateHome: req.SeparateHome,
	}
	opts := &disk.SuggestOptions{
		UEFI:            uefi,
		AdvancedOptions: req.Advanced,
	}

	mods, err := planner(devices, req.Filesystem, opts, resolver)
	if err != nil {
		return BadRequest("cannot plan layout: %v", err)
	}

	result := &planResult{
		Advisories: resolver.Advisories(),
	}
	if len(mods) > 0 {
		result.Layout = &disk.LayoutConfiguration{
			ConfigType:          disk.LayoutDefault,
			DeviceModifications: mods,
		}
	}
	return SyncResponse(result)
}
