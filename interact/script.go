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

package interact

import (
	"fmt"

	"github.com/canonical/diskplan/disk"
	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/quantity"
)

// Script implements disk.Resolver with answers resolved up front, for
// scripted and remote front ends. A zero Script answers no to every
// question and fails when asked to pick a filesystem.
type Script struct {
	// Filesystem answers the main filesystem question. Leaving it
	// unset makes planning fail when the question comes up.
	Filesystem disk.FilesystemType
	// Subvolumes answers the default-subvolume-layout question.
	Subvolumes bool
	// Compression answers the compression question.
	Compression bool
	// SeparateHome answers the separate /home question.
	SeparateHome bool

	advisories []string
}

// MainFilesystem returns the preselected filesystem, verifying it is
// among the offered ones.
func (s *Script) MainFilesystem(advancedOptions bool) (disk.FilesystemType, error) {
	if s.Filesystem == disk.FilesystemUnset {
		return disk.FilesystemUnset, fmt.Errorf("no filesystem type was preselected")
	}
	for _, t := range disk.MainFilesystems(advancedOptions) {
		if s.Filesystem == t {
			return s.Filesystem, nil
		}
	}
	return disk.FilesystemUnset, fmt.Errorf("filesystem type %q is not offered", s.Filesystem)
}

func (s *Script) WantSubvolumes() (bool, error) {
	return s.Subvolumes, nil
}

func (s *Script) WantCompression() (bool, error) {
	return s.Compression, nil
}

func (s *Script) WantSeparateHome() (bool, error) {
	return s.SeparateHome, nil
}

// AdviseCapacity records the capacity advisory for the front end to
// relay to the user.
func (s *Script) AdviseCapacity(minHome, minRoot quantity.Size) error {
	msg := fmt.Sprintf("the selected devices do not have the minimum capacity for an automatic suggestion: /home needs %s, / needs %s",
		minHome.IECString(), minRoot.IECString())
	s.advisories = append(s.advisories, msg)
	logger.Noticef("%s", msg)
	return nil
}

// Advisories returns the advisory messages collected while planning.
func (s *Script) Advisories() []string {
	return s.advisories
}
