// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"io"

	"github.com/gogama/easyhttp/engine"
)

// Engine is the interface that wraps the option setting and blocking
// transfer surface of a transport engine session.
//
// SetOpt changes one session setting. Settings are session-scoped: a
// setting made for one transfer stays in effect for later transfers
// until it is changed again.
//
// Perform runs one blocking transfer with the current settings. The
// body is nil when there is no request body. The progress function may
// be nil. A transfer which receives any response, whatever its status
// code, is successful.
//
// *engine.Session implements the Engine interface, and any other Engine
// implementation must behave substantially the same as it does.
type Engine interface {
	SetOpt(opt engine.Option, v any) error
	Perform(body io.Reader, progress ProgressFunc) (*Response, error)
}

var _ Engine = (*engine.Session)(nil)

// A Response is the final HTTP response to an executed request.
type Response = engine.Response

// Progress is a snapshot of transfer progress.
type Progress = engine.Progress

// A ProgressFunc receives progress reports during a transfer. Returning
// a non-nil error aborts the transfer.
type ProgressFunc = engine.ProgressFunc
