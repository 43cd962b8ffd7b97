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

package osutil

import (
	"os"
)

var efiVarsDir = "/sys/firmware/efi/efivars"

// IsUEFI reports whether the machine booted through UEFI firmware
// rather than legacy BIOS. The kernel exposes the EFI variable store
// only on UEFI systems.
func IsUEFI() bool {
	fi, err := os.Stat(efiVarsDir)
	return err == nil && fi.IsDir()
}

// MockEfiVarsDir changes the directory probed by IsUEFI for testing.
func MockEfiVarsDir(dir string) (restore func()) {
	old := efiVarsDir
	efiVarsDir = dir
	return func() {
		efiVarsDir = old
	}
}
