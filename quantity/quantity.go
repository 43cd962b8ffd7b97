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

// Package quantity defines the types for storage sizes and offsets
// used throughout the layout planner.
package quantity

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"
)

// Size is an amount of storage space, expressed in bytes.
type Size uint64

const (
	// SizeKiB is the size of one kibibyte (2^10 = 1024 bytes)
	SizeKiB = Size(1 << 10)
	// SizeMiB is the size of one mebibyte (2^20)
	SizeMiB = Size(1 << 20)
	// SizeGiB is the size of one gibibyte (2^30)
	SizeGiB = Size(1 << 30)
	// SizeTiB is the size of one tebibyte (2^40)
	SizeTiB = Size(1 << 40)
)

// String formats the size using the largest binary unit that expresses
// it exactly, falling back to a plain byte count.
func (s Size) String() string {
	return formatAmount(uint64(s))
}

// IECString formats the size as a human readable string using closest
// IEC units, e.g. "1.25 GiB".
func (s Size) IECString() string {
	return iecString(uint64(s))
}

func (s Size) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s *Size) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var gs string
	if err := unmarshal(&gs); err != nil {
		return fmt.Errorf("cannot unmarshal size: %v", err)
	}

	var err error
	*s, err = ParseSize(gs)
	if err != nil {
		return fmt.Errorf("cannot parse size %q: %v", gs, err)
	}
	return nil
}

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Size) UnmarshalJSON(data []byte) error {
	var gs string
	if err := json.Unmarshal(data, &gs); err != nil {
		return fmt.Errorf("cannot unmarshal size: %v", err)
	}

	var err error
	*s, err = ParseSize(gs)
	if err != nil {
		return fmt.Errorf("cannot parse size %q: %v", gs, err)
	}
	return nil
}

// ParseSize parses a string expressing a size in binary units, such as
// "1024", "64K", "512M", "20G" or "2T". A bare number is a byte count.
func ParseSize(gs string) (Size, error) {
	number, unit := gs, ""
	if len(gs) > 0 {
		switch gs[len(gs)-1] {
		case 'K', 'M', 'G', 'T':
			number, unit = gs[:len(gs)-1], gs[len(gs)-1:]
		}
	}

	value, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, fmt.Errorf("size is too large")
		}
		return 0, fmt.Errorf("no numerical prefix")
	}

	var mult Size
	switch unit {
	case "":
		mult = 1
	case "K":
		mult = SizeKiB
	case "M":
		mult = SizeMiB
	case "G":
		mult = SizeGiB
	case "T":
		mult = SizeTiB
	}

	hi, lo := bits.Mul64(value, uint64(mult))
	if hi != 0 {
		return 0, fmt.Errorf("size is too large")
	}
	return Size(lo), nil
}

// SizeFromPercentage returns the given percentage of a reference total.
// The percentage is resolved to an absolute byte count here, exactly
// once; the result carries no reference to the total it was derived
// from and is never re-resolved.
func SizeFromPercentage(percent uint64, total Size) Size {
	if percent >= 100 {
		return total
	}
	hi, lo := bits.Mul64(uint64(total), percent)
	q, _ := bits.Div64(hi, lo, 100)
	return Size(q)
}

// MinSize returns the smaller of two sizes.
func MinSize(a, b Size) Size {
	if a < b {
		return a
	}
	return b
}

// SaturatingSub returns s - other, clamped at zero. Storage lengths
// are never negative.
func (s Size) SaturatingSub(other Size) Size {
	if other >= s {
		return 0
	}
	return s - other
}

// Offset is the offset of a structure within a device, expressed in
// bytes from the start of the device.
type Offset uint64

const (
	// OffsetKiB is the offset of one kibibyte
	OffsetKiB = Offset(1 << 10)
	// OffsetMiB is the offset of one mebibyte
	OffsetMiB = Offset(1 << 20)
	// OffsetGiB is the offset of one gibibyte
	OffsetGiB = Offset(1 << 30)
)

func (o Offset) String() string {
	return formatAmount(uint64(o))
}

// IECString formats the offset as a human readable string using
// closest IEC units.
func (o Offset) IECString() string {
	return iecString(uint64(o))
}

func (o Offset) MarshalYAML() (interface{}, error) {
	return o.String(), nil
}

func (o *Offset) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var gs string
	if err := unmarshal(&gs); err != nil {
		return fmt.Errorf("cannot unmarshal offset: %v", err)
	}

	var err error
	*o, err = ParseOffset(gs)
	if err != nil {
		return fmt.Errorf("cannot parse offset %q: %v", gs, err)
	}
	return nil
}

func (o Offset) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Offset) UnmarshalJSON(data []byte) error {
	var gs string
	if err := json.Unmarshal(data, &gs); err != nil {
		return fmt.Errorf("cannot unmarshal offset: %v", err)
	}

	var err error
	*o, err = ParseOffset(gs)
	if err != nil {
		return fmt.Errorf("cannot parse offset %q: %v", gs, err)
	}
	return nil
}

// ParseOffset parses a string expressing an offset in binary units,
// with the same syntax as ParseSize.
func ParseOffset(gs string) (Offset, error) {
	size, err := ParseSize(gs)
	if err != nil {
		return 0, err
	}
	return Offset(size), nil
}

func formatAmount(amount uint64) string {
	switch {
	case amount == 0:
		return "0"
	case amount%uint64(SizeTiB) == 0:
		return strconv.FormatUint(amount/uint64(SizeTiB), 10) + "T"
	case amount%uint64(SizeGiB) == 0:
		return strconv.FormatUint(amount/uint64(SizeGiB), 10) + "G"
	case amount%uint64(SizeMiB) == 0:
		return strconv.FormatUint(amount/uint64(SizeMiB), 10) + "M"
	case amount%uint64(SizeKiB) == 0:
		return strconv.FormatUint(amount/uint64(SizeKiB), 10) + "K"
	}
	return strconv.FormatUint(amount, 10)
}

func iecString(amount uint64) string {
	value := float64(amount)
	for _, unit := range []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB"} {
		if value < 1024 || unit == "EiB" {
			return fmt.Sprintf("%.4g %s", value, unit)
		}
		value /= 1024
	}
	panic("unreachable")
}
