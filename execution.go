// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/easyhttp/header"
	"github.com/gogama/easyhttp/transient"
)

// An Execution represents the state of a single call to Request.Exec.
// It is passed to the event handlers installed on the Handle.
//
// Event handlers may store values on an Execution using SetValue and
// read them back using Value, but should otherwise treat its fields as
// read-only. The one exception is Header, which BeforeExec handlers may
// add to, for example to attach a tracing header.
type Execution struct {
	// ID uniquely identifies the execution. It is also logged with
	// every log record about the execution.
	ID string

	// Method is the request method.
	Method Method

	// URI is the last URI set on the request, as given by the caller.
	URI string

	// Header holds the request's custom headers. Exec adds the
	// synthesized body headers to it after BeforeExec handlers have
	// run.
	Header *header.Multimap

	// Lines is the custom header list handed to the engine, one entry
	// per header value in "Name: value" form. It is set before
	// BeforePerform handlers run and is nil if the request has no
	// custom headers.
	Lines []string

	// HasBody indicates whether the request has a body.
	HasBody bool

	// BodySize is the size of the request body, or -1 if the body size
	// is not known. It is zero if there is no body.
	BodySize int64

	// Start is the time Exec was called.
	Start time.Time

	// End is the time the transfer finished. It is the zero time until
	// then.
	End time.Time

	// Response is the response received, or nil if there was none.
	Response *Response

	// Err is the error returned by Exec, if any. It is only set once
	// the execution has ended.
	Err error

	data context.Context
}

// StatusCode returns the status code of the response, or 0 if there is
// no response.
func (x *Execution) StatusCode() int {
	if x.Response == nil {
		return 0
	}

	return x.Response.StatusCode
}

// ResponseHeader returns the response headers, or a nil header if there
// is no response.
func (x *Execution) ResponseHeader() http.Header {
	if x.Response == nil {
		return nil
	}

	return x.Response.Header
}

// Duration returns the duration of the execution. Before the execution
// ends, it is the time elapsed since Start.
func (x *Execution) Duration() time.Duration {
	if !x.Started() {
		return time.Duration(0)
	} else if !x.Ended() {
		return time.Since(x.Start)
	}

	return x.End.Sub(x.Start)
}

// Started indicates whether the execution has started.
func (x *Execution) Started() bool {
	return !x.Start.IsZero()
}

// Ended indicates whether the execution has ended.
func (x *Execution) Ended() bool {
	return !x.End.IsZero()
}

// Timeout indicates whether Err is a timeout.
func (x *Execution) Timeout() bool {
	return transient.Categorize(x.Err) == transient.Timeout
}

// SetValue allows event handlers to store arbitrary data in the
// execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue: it may not be nil, it must be comparable, and it
// should not be of a built-in type, to avoid collisions between
// different event handlers.
func (x *Execution) SetValue(key, value any) {
	ctx := x.data
	if ctx == nil {
		ctx = context.Background()
	}

	x.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (x *Execution) Value(key any) any {
	ctx := x.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
