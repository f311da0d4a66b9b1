// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"io"
	"time"

	"github.com/gogama/easyhttp/engine"
	"github.com/google/uuid"
)

// Exec sends the request and returns the response. Exec consumes the
// request and releases its Handle, whatever the outcome.
//
// The request is translated onto the handle's session in a fixed order:
//
// 1. If FollowRedirects(true) was called, redirect following is
// enabled.
//
// 2. If an error was recorded while building the request, it is
// returned and nothing else is set on the session.
//
// 3. The session's custom header list is cleared, so headers from an
// earlier request are never sent again.
//
// 4. The request method is set. A DELETE with a body is sent as an
// upload with the method overridden.
//
// 5. If there is a body and neither ContentLength nor Chunked was
// called, a body of known size is announced with its size and any
// other body is sent chunked. A Content-Type of
// application/octet-stream is added unless one was set, and the
// Expect header is suppressed unless ExpectContinue was called.
//
// 6. The headers, if any, are set as the session's custom header list.
//
// 7. The transfer is performed.
//
// Any engine error ends Exec early and is returned as is. A response
// with any status code is returned without error.
//
// Exec panics if the request method is MethodOptions, MethodTrace, or
// MethodConnect.
func (r *Request) Exec() (*Response, error) {
	r.check()
	r.consumed = true
	h := r.handle
	defer h.release()

	x := &Execution{
		ID:      uuid.NewString(),
		Method:  r.method,
		URI:     r.uri,
		Header:  &r.headers,
		HasBody: r.body != nil,
		Start:   time.Now(),
	}
	if r.body != nil {
		x.BodySize = -1
		if n, ok := r.body.Size(); ok {
			x.BodySize = n
		}
	}
	h.handlers.run(BeforeExec, x)

	resp, err := r.exec(x)

	x.Response = resp
	x.Err = err
	x.End = time.Now()
	h.handlers.run(AfterExec, x)
	h.logExec(x)

	return resp, err
}

func (r *Request) exec(x *Execution) (*Response, error) {
	e := r.handle.engine

	if r.followRedirects {
		if err := e.SetOpt(engine.OptFollowLocation, true); err != nil {
			return nil, err
		}
	}

	if r.err != nil {
		return nil, r.err
	}

	if err := e.SetOpt(engine.OptHTTPHeader, nil); err != nil {
		return nil, err
	}

	if err := r.setMethod(e); err != nil {
		return nil, err
	}

	if r.body != nil {
		if err := r.negotiateBody(e, x); err != nil {
			return nil, err
		}
	}

	if !r.headers.Empty() {
		l := engine.NewList()
		for name, value := range r.headers.All() {
			l.Push([]byte(name + ": " + value + "\x00"))
		}
		x.Lines = l.Strings()
		if err := e.SetOpt(engine.OptHTTPHeader, l); err != nil {
			return nil, err
		}
	}

	r.handle.handlers.run(BeforePerform, x)

	// A nil body.Body must not reach the engine as a non-nil io.Reader.
	var b io.Reader
	if r.body != nil {
		b = r.body
	}
	return e.Perform(b, r.progress)
}

func (r *Request) setMethod(e Engine) error {
	switch r.method {
	case MethodGet:
		return e.SetOpt(engine.OptHTTPGet, true)
	case MethodHead:
		return e.SetOpt(engine.OptNoBody, true)
	case MethodPost:
		return e.SetOpt(engine.OptPost, true)
	case MethodPut:
		return e.SetOpt(engine.OptUpload, true)
	case MethodDelete:
		if r.body != nil {
			if err := e.SetOpt(engine.OptUpload, true); err != nil {
				return err
			}
		}
		return e.SetOpt(engine.OptCustomRequest, "DELETE")
	default:
		panic("easyhttp: unsupported method " + r.method.String())
	}
}

func (r *Request) negotiateBody(e Engine, x *Execution) error {
	size, known := r.body.Size()
	r.handle.logger.Debug("handling body",
		"exec_id", x.ID,
		"method", r.method.String(),
		"size", x.BodySize,
		"body_type_set", r.bodyTypeSet,
		"content_type_set", r.contentTypeSet,
		"expect_continue", r.expectContinue,
	)

	if !r.bodyTypeSet {
		if known {
			var err error
			switch r.method {
			case MethodPost:
				err = e.SetOpt(engine.OptPostFieldSize, size)
			case MethodPut, MethodDelete:
				err = e.SetOpt(engine.OptInFileSize, size)
			}
			if err != nil {
				return err
			}
		} else {
			r.headers.Add("Transfer-Encoding", "chunked")
		}
	}

	if !r.contentTypeSet {
		r.headers.Add("Content-Type", "application/octet-stream")
	}

	if !r.expectContinue {
		r.headers.Add("Expect", "")
	}

	return nil
}
