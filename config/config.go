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

// Package config reads the optional diskplan defaults file, an
// ini-style document seeding the planner questions for scripted runs:
//
//	[plan]
//	filesystem=ext4
//	compression=false
//	separate-home=yes
package config

import (
	"fmt"
	"os"

	"github.com/mvo5/goconfigparser"
)

// DefaultPath is where the defaults file is looked for unless the
// caller overrides it.
const DefaultPath = "/etc/diskplan/diskplan.conf"

const planSection = "plan"

// Defaults seeds the planner questions for scripted runs. Zero values
// mean "not configured".
type Defaults struct {
	// Filesystem is the preselected main filesystem, empty when
	// unconfigured.
	Filesystem string
	// Compression preselects transparent compression.
	Compression bool
	// SeparateHome is "yes", "no" or "" (decide at plan time).
	SeparateHome string
	// Advanced widens the offered filesystem set.
	Advanced bool
}

// Read parses the defaults file at the given path. A missing file is
// not an error and yields zero defaults.
func Read(path string) (*Defaults, error) {
	defaults := &Defaults{}

	cfg := goconfigparser.New()
	if err := cfg.ReadFile(path); err != nil {
		if os.IsNotExist(err) {
			return defaults, nil
		}
		return nil, fmt.Errorf("cannot read defaults file %s: %v", path, err)
	}

	// options are all optional, missing ones keep their zero value
	if v, err := cfg.Get(planSection, "filesystem"); err == nil {
		defaults.Filesystem = v
	}
	if v, err := cfg.Getbool(planSection, "compression"); err == nil {
		defaults.Compression = v
	}
	if v, err := cfg.Get(planSection, "separate-home"); err == nil {
		switch v {
		case "yes", "no", "":
			defaults.SeparateHome = v
		default:
			return nil, fmt.Errorf("cannot use separate-home value %q, expected yes or no", v)
		}
	}
	if v, err := cfg.Getbool(planSection, "advanced"); err == nil {
		defaults.Advanced = v
	}

	return defaults, nil
}
