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
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/canonical/diskplan/daemon"
	"github.com/canonical/diskplan/logger"
	"github.com/canonical/diskplan/version"
)

type options struct {
	Addr    string `long:"addr" default:"localhost:24680" description:"address to listen on"`
	Version bool   `long:"version" description:"print the version and exit"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, e.Message)
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var opts options
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		return err
	}
	if opts.Version {
		fmt.Fprintf(os.Stdout, "diskpland %s\n", version.Version)
		return nil
	}

	if err := logger.SimpleSetup(); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: failed to activate logging: %v\n", err)
	}

	d := daemon.New(opts.Addr)
	if err := d.Init(); err != nil {
		return err
	}
	d.Start()
	logger.Noticef("diskpland %s listening on %s", version.Version, d.Addr())

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-ch:
		logger.Noticef("exiting on %s", sig)
	case <-d.Dying():
	}

	return d.Stop()
}
