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

// Package daemon exposes device discovery and layout planning over a
// small REST API, so remote front ends can drive the planner exactly
// like local ones. The daemon never executes a plan.
package daemon

import (
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"gopkg.in/tomb.v2"

	"github.com/canonical/diskplan/logger"
)

// A Daemon listens for requests and routes them to the right command.
type Daemon struct {
	addr     string
	listener net.Listener
	router   *mux.Router
	tomb     tomb.Tomb
}

// A ResponseFunc handles one of the individual verbs for a method
type ResponseFunc func(*Command, *http.Request) Response

// A Command routes a request to an individual per-verb ResponseFunc
type Command struct {
	Path string

	GET  ResponseFunc
	POST ResponseFunc

	d *Daemon
}

func (c *Command) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var rspf ResponseFunc
	var rsp = BadMethod("method %q not allowed", r.Method)

	switch r.Method {
	case "GET":
		rspf = c.GET
	case "POST":
		rspf = c.POST
	}

	if rspf != nil {
		rsp = rspf(c, r)
	}

	rsp.ServeHTTP(w, r)
}

// New returns a daemon that will listen on the given address.
func New(addr string) *Daemon {
	return &Daemon{addr: addr}
}

// Init sets up the listener and the routing table.
func (d *Daemon) Init() error {
	listener, err := net.Listen("tcp", d.addr)
	if err != nil {
		return err
	}
	d.listener = listener
	d.addRoutes()
	return nil
}

func (d *Daemon) addRoutes() {
	d.router = mux.NewRouter()

	for _, c := range api {
		c.d = d
		d.router.Handle(c.Path, c).Name(c.Path)
	}

	d.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFound("not found").ServeHTTP(w, r)
	})
}

// Addr returns the address the daemon listens on.
func (d *Daemon) Addr() string {
	return d.listener.Addr().String()
}

// Start serving requests.
func (d *Daemon) Start() {
	d.tomb.Go(func() error {
		err := http.Serve(d.listener, d.router)
		if err != nil && d.tomb.Err() == tomb.ErrStillAlive {
			return err
		}
		return nil
	})
	logger.Debugf("daemon started on %s", d.Addr())
}

// Stop shuts down the daemon.
func (d *Daemon) Stop() error {
	d.tomb.Kill(nil)
	d.listener.Close()
	return d.tomb.Wait()
}

// Dying is a tomb-ish way to report on the daemon's health.
func (d *Daemon) Dying() <-chan struct{} {
	return d.tomb.Dying()
}
