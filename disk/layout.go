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
)

// LayoutType tags how a layout configuration was produced.
type LayoutType string

const (
	// LayoutDefault is a layout suggested by the planners.
	LayoutDefault LayoutType = "default"
	// LayoutManual is a layout specified partition by partition by
	// an external front end.
	LayoutManual LayoutType = "manual"
	// LayoutPreMount describes an already mounted setup that the
	// execution stage uses as-is.
	LayoutPreMount LayoutType = "pre-mount"
)

// LayoutConfiguration is the top-level planning result spanning one
// or more devices. It is constructed once per planning run and not
// modified afterwards; the execution stage consumes it.
type LayoutConfiguration struct {
	ConfigType          LayoutType            `yaml:"config-type" json:"config-type"`
	DeviceModifications []*DeviceModification `yaml:"modifications" json:"modifications"`
	// RelativeMountpoint is only set for pre-mount configurations.
	RelativeMountpoint string `yaml:"relative-mountpoint,omitempty" json:"relative-mountpoint,omitempty"`
}

// NewManualLayout wraps externally specified modifications.
func NewManualLayout(mods []*DeviceModification) *LayoutConfiguration {
	return &LayoutConfiguration{
		ConfigType:          LayoutManual,
		DeviceModifications: mods,
	}
}

// NewPreMountLayout wraps modifications detected under an already
// mounted tree rooted at the given relative mountpoint.
func NewPreMountLayout(relativeMountpoint string, mods []*DeviceModification) *LayoutConfiguration {
	return &LayoutConfiguration{
		ConfigType:          LayoutPreMount,
		DeviceModifications: mods,
		RelativeMountpoint:  relativeMountpoint,
	}
}

// NewDefaultLayout suggests a layout for the given devices: the
// single-disk planner for one device, the multi-disk planner for
// several. It returns nil (and no error) when no suggestion is
// feasible for the devices' capacities; the resolver has then been
// given a capacity advisory.
func NewDefaultLayout(devices []*Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) (*LayoutConfiguration, error) {
	if len(devices) == 0 {
		return nil, fmt.Errorf("cannot suggest a layout without devices")
	}

	name := "single-disk"
	if len(devices) > 1 {
		name = "multi-disk"
	}
	planner, err := Planner(name)
	if err != nil {
		return nil, err
	}

	mods, err := planner(devices, fsType, opts, resolver)
	if err != nil {
		return nil, err
	}
	if len(mods) == 0 {
		return nil, nil
	}

	return &LayoutConfiguration{
		ConfigType:          LayoutDefault,
		DeviceModifications: mods,
	}, nil
}
