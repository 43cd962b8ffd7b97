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
	"io"
	"net/http"

	. "gopkg.in/check.v1"

	"github.com/canonical/diskplan/logger"
)

type daemonSuite struct {
	restoreLogger func()
}

var _ = Suite(&daemonSuite{})

func (s *daemonSuite) SetUpTest(c *C) {
	_, s.restoreLogger = logger.MockLogger()
}

func (s *daemonSuite) TearDownTest(c *C) {
	s.restoreLogger()
}

func (s *daemonSuite) TestStartStop(c *C) {
	d := New("localhost:0")
	c.Assert(d.Init(), IsNil)
	d.Start()
	defer d.Stop()

	rsp, err := http.Get("http://" + d.Addr() + "/")
	c.Assert(err, IsNil)
	defer rsp.Body.Close()
	c.Check(rsp.StatusCode, Equals, 200)

	body, err := io.ReadAll(rsp.Body)
	c.Assert(err, IsNil)
	var envelope struct {
		Type   ResponseType `json:"type"`
		Result []string     `json:"result"`
	}
	c.Assert(json.Unmarshal(body, &envelope), IsNil)
	c.Check(envelope.Type, Equals, ResponseTypeSync)
	c.Check(envelope.Result, DeepEquals, []string{"/v1.0"})
}

func (s *daemonSuite) TestNotFound(c *C) {
	d := New("localhost:0")
	c.Assert(d.Init(), IsNil)
	d.Start()
	defer d.Stop()

	rsp, err := http.Get("http://" + d.Addr() + "/no/such/path")
	c.Assert(err, IsNil)
	defer rsp.Body.Close()
	c.Check(rsp.StatusCode, Equals, 404)
}

func (s *daemonSuite) TestStopUnblocksDying(c *C) {
	d := New("localhost:0")
	c.Assert(d.Init(), IsNil)
	d.Start()

	c.Assert(d.Stop(), IsNil)
	select {
	case <-d.Dying():
	default:
		c.Fatal("daemon is not dying after Stop")
	}
}
