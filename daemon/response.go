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
	"fmt"
	"net/http"

	"github.com/canonical/diskplan/logger"
)

// ResponseType is the response type
type ResponseType string

const (
	ResponseTypeSync  ResponseType = "sync"
	ResponseTypeError ResponseType = "error"
)

// Response knows how to serve itself.
type Response interface {
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}

type resp struct {
	Type   ResponseType `json:"type"`
	Status int          `json:"status-code"`
	Result interface{}  `json:"result"`
}

func (r *resp) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":        r.Type,
		"status":      http.StatusText(r.Status),
		"status-code": r.Status,
		"result":      &r.Result,
	})
}

func (r *resp) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status := r.Status
	bs, err := r.MarshalJSON()
	if err != nil {
		logger.Noticef("cannot marshal %#v to JSON: %v", *r, err)
		bs = nil
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bs)
}

type errorResult struct {
	Message string `json:"message"`
}

// SyncResponse builds a "sync" response from the given result.
func SyncResponse(result interface{}) Response {
	if err, ok := result.(error); ok {
		return InternalError("internal error: %v", err)
	}

	return &resp{
		Type:   ResponseTypeSync,
		Status: http.StatusOK,
		Result: result,
	}
}

// errorResponder is a closure over a status code producing "error"
// responses in one line at the call sites.
type errorResponder func(format string, v ...interface{}) Response

func makeErrorResponder(status int) errorResponder {
	return func(format string, v ...interface{}) Response {
		return &resp{
			Type:   ResponseTypeError,
			Status: status,
			Result: &errorResult{
				Message: fmt.Sprintf(format, v...),
			},
		}
	}
}

// standard error responses
var (
	BadRequest    = makeErrorResponder(http.StatusBadRequest)
	NotFound      = makeErrorResponder(http.StatusNotFound)
	BadMethod     = makeErrorResponder(http.StatusMethodNotAllowed)
	InternalError = makeErrorResponder(http.StatusInternalServerError)
)
