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

	"github.com/canonical/diskplan/logger"
)

// PlannerFunc produces device modifications for a set of candidate
// devices. An empty result with no error means no feasible plan
// exists for the given devices.
type PlannerFunc func(devices []*Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) ([]*DeviceModification, error)

var planners = make(map[string]PlannerFunc)

// RegisterPlanner registers a named planner. All planners are
// registered from init functions in this process; there is no dynamic
// loading. Registering the same name twice is a programming error.
func RegisterPlanner(name string, fn PlannerFunc) {
	if fn == nil {
		logger.Panicf("internal error: planner %q is nil", name)
	}
	if _, ok := planners[name]; ok {
		logger.Panicf("internal error: planner %q is already registered", name)
	}
	planners[name] = fn
}

// Planner looks up a registered planner by name.
func Planner(name string) (PlannerFunc, error) {
	fn, ok := planners[name]
	if !ok {
		return nil, fmt.Errorf("cannot find planner %q", name)
	}
	return fn, nil
}

// Planners returns the names of all registered planners, sorted.
func Planners() []string {
	names := make([]string, 0, len(planners))
	for name := range planners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterPlanner("single-disk", func(devices []*Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) ([]*DeviceModification, error) {
		if len(devices) != 1 {
			return nil, fmt.Errorf("single-disk planner needs exactly one device, got %d", len(devices))
		}
		mod, err := SuggestSingleDiskLayout(devices[0], fsType, opts, resolver)
		if err != nil {
			return nil, err
		}
		return []*DeviceModification{mod}, nil
	})
	RegisterPlanner("multi-disk", func(devices []*Device, fsType FilesystemType, opts *SuggestOptions, resolver Resolver) ([]*DeviceModification, error) {
		if len(devices) < 2 {
			return nil, fmt.Errorf("multi-disk planner needs at least two devices, got %d", len(devices))
		}
		return SuggestMultiDiskLayout(devices, fsType, opts, resolver)
	})
}
