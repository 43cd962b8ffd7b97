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
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/canonical/diskplan/logger"
)

// Standard streams, redirected for testing.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// ErrExtraArgs is returned if extra arguments to a command are found
var ErrExtraArgs = fmt.Errorf("too many arguments for command")

// cmdInfo holds information needed to call parser.AddCommand(...).
type cmdInfo struct {
	name, shortHelp, longHelp string
	builder                   func() flags.Commander
}

// commands holds information about all commands.
var commands []*cmdInfo

// addCommand replaces parser.addCommand() in a way that is
// compatible with re-constructing a pristine parser.
func addCommand(name, shortHelp, longHelp string, builder func() flags.Commander) *cmdInfo {
	info := &cmdInfo{
		name:      name,
		shortHelp: shortHelp,
		longHelp:  longHelp,
		builder:   builder,
	}
	commands = append(commands, info)
	return info
}

// Parser creates and populates a fresh parser.
func Parser() *flags.Parser {
	parser := flags.NewParser(nil, flags.HelpFlag|flags.PassDoubleDash)
	parser.ShortDescription = "Tool to plan disk partition layouts"
	parser.LongDescription = `
diskplan suggests partition layouts for a set of block devices and
emits the plan for a separate execution stage. It never modifies a
device.
`

	for _, c := range commands {
		cmd, err := parser.AddCommand(c.name, c.shortHelp, c.longHelp, c.builder())
		if err != nil {
			logger.Panicf("cannot add command %q: %v", c.name, err)
		}
		cmd.PassAfterNonOption = false
	}

	return parser
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if err := logger.SimpleSetup(); err != nil {
		fmt.Fprintf(Stderr, "WARNING: failed to activate logging: %v\n", err)
	}

	_, err := Parser().ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(Stdout, e.Message)
			return nil
		}
		return err
	}
	return nil
}
