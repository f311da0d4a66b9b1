// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"iter"
	"strconv"
	"strings"

	"github.com/gogama/easyhttp/body"
	"github.com/gogama/easyhttp/engine"
	"github.com/gogama/easyhttp/header"
)

// A Request is a single-use HTTP request under construction.
//
// Create a Request with one of the Handle methods, configure it with
// the chainable builder methods, and finish it with Exec, or with
// Discard if it should not be sent:
//
//	resp, err := h.Post("http://example.com/items", payload).
//		ContentType("application/json").
//		Header("X-Trace", "abc").
//		Exec()
//
// Builder methods never return errors. A failure while building, such
// as an unusable URI or body, is held by the request and returned by
// Exec; only the first such failure is kept.
//
// Once Exec or Discard has been called, the Request is consumed, and
// calling any of its methods panics.
type Request struct {
	handle *Handle
	method Method
	uri    string

	headers header.Multimap
	body    body.Body

	bodyTypeSet     bool
	contentTypeSet  bool
	expectContinue  bool
	followRedirects bool
	progress        ProgressFunc

	err      error
	consumed bool
}

func (r *Request) check() {
	if r.consumed {
		panic("easyhttp: request already consumed")
	}
}

func (r *Request) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// URI sets the request target. The URI is set on the handle's session
// immediately; if the engine rejects it, the error is returned by Exec.
func (r *Request) URI(uri string) *Request {
	r.check()
	r.uri = uri
	if err := r.handle.engine.SetOpt(engine.OptURL, uri); err != nil {
		r.fail(err)
	}
	return r
}

// Body sets the request body, replacing any previous body. The value
// may be any type accepted by body.From, including nil for no body.
// An unsupported type is an error returned by Exec.
//
// The body is read during Exec. The caller must not use the value
// passed until Exec returns.
func (r *Request) Body(v any) *Request {
	r.check()
	b, err := body.From(v)
	if err != nil {
		r.fail(err)
		return r
	}
	r.body = b
	return r
}

// ContentLength sends the body with a Content-Length header of n.
//
// ContentLength and Chunked each fix how the body length is sent, and
// the first call of either wins. Later calls do nothing.
func (r *Request) ContentLength(n int64) *Request {
	r.check()
	if !r.bodyTypeSet {
		r.bodyTypeSet = true
		r.Header("Content-Length", strconv.FormatInt(n, 10))
	}
	return r
}

// Chunked sends the body with chunked transfer encoding. See
// ContentLength.
func (r *Request) Chunked() *Request {
	r.check()
	if !r.bodyTypeSet {
		r.bodyTypeSet = true
		r.Header("Transfer-Encoding", "chunked")
	}
	return r
}

// ExpectContinue makes a request with a body use the "Expect:
// 100-continue" handshake. By default the handshake is suppressed and
// the body is sent without waiting for the server.
func (r *Request) ExpectContinue() *Request {
	r.check()
	r.expectContinue = true
	return r
}

// ContentType is shorthand for Header("Content-Type", v).
func (r *Request) ContentType(v string) *Request {
	return r.Header("Content-Type", v)
}

// Header adds a header value. Existing values for name are kept, so
// calling Header twice with the same name sends two lines.
//
// The name is sent exactly as given. Adding a Content-Type header,
// with the name in any case, stops Exec from adding a default one.
func (r *Request) Header(name, value string) *Request {
	r.check()
	r.headers.Add(name, value)
	if strings.EqualFold(name, "Content-Type") {
		r.contentTypeSet = true
	}
	return r
}

// GetHeader returns the values added for name, in the order they were
// added. The name must match exactly. The returned slice must not be
// modified.
func (r *Request) GetHeader(name string) []string {
	r.check()
	return r.headers.Values(name)
}

// Headers adds each name and value pair from seq, in order, as if by
// calling Header.
func (r *Request) Headers(seq iter.Seq2[string, string]) *Request {
	r.check()
	for name, value := range seq {
		r.Header(name, value)
	}
	return r
}

// Progress sets a function to receive progress reports during Exec.
// Returning a non-nil error from fn aborts the transfer.
func (r *Request) Progress(fn ProgressFunc) *Request {
	r.check()
	r.progress = fn
	return r
}

// FollowRedirects sets whether Exec follows redirect responses. The
// default is false.
//
// Redirect following is a setting of the handle's session. Once a
// request from a Handle has followed redirects, later requests from
// the same Handle follow them too.
func (r *Request) FollowRedirects(follow bool) *Request {
	r.check()
	r.followRedirects = follow
	return r
}

// Discard releases the request's Handle without sending the request.
func (r *Request) Discard() {
	r.check()
	r.consumed = true
	r.handle.release()
}
