// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gogama/easyhttp/engine"
)

// DefaultTimeout is the overall and connect timeout of a new Handle.
const DefaultTimeout = 30 * time.Second

// A Handle owns one transport engine session and creates requests
// which execute on it.
//
// The session's settings, including the headers and request shape of
// the last request, are shared by every request made from the Handle.
// For this reason a Handle allows only one pending request at a time:
// creating a request while another request from the same Handle has
// not yet been executed or discarded panics. Different Handles share
// nothing and may be used from different goroutines, but a single
// Handle must not be used concurrently.
type Handle struct {
	engine   Engine
	logger   *slog.Logger
	handlers *HandlerGroup
	inUse    bool
}

// New returns a Handle backed by a new engine.Session created with the
// given session options. Both timeouts are set to DefaultTimeout.
func New(opts ...engine.SessionOption) *Handle {
	return NewWithEngine(engine.New(opts...))
}

// NewWithEngine returns a Handle backed by e. Both timeouts are set to
// DefaultTimeout. NewWithEngine panics if e is nil or if e rejects the
// default timeouts.
func NewWithEngine(e Engine) *Handle {
	if e == nil {
		panic("easyhttp: nil engine")
	}
	h := &Handle{
		engine: e,
		logger: slog.Default(),
	}
	return h.Timeout(DefaultTimeout).ConnectTimeout(DefaultTimeout)
}

// Timeout sets the maximum time a request may take, from connecting
// to reading the last byte of the response, including any redirects
// followed. The setting applies to every later request from h.
//
// Timeout panics if the engine rejects the value.
func (h *Handle) Timeout(d time.Duration) *Handle {
	return h.Option(engine.OptTimeoutMS, d.Milliseconds())
}

// ConnectTimeout sets the maximum time allowed for establishing a
// connection. The setting applies to every later request from h.
//
// ConnectTimeout panics if the engine rejects the value.
func (h *Handle) ConnectTimeout(d time.Duration) *Handle {
	return h.Option(engine.OptConnectTimeoutMS, d.Milliseconds())
}

// Option sets an engine option directly on the session. Use it for
// session-wide settings which have no Handle method of their own, such
// as engine.OptMaxRedirs or engine.OptUserAgent. Options which
// describe a single request (URL, method shape, headers) are set by
// every Exec and should not be set with Option.
//
// Option panics if the engine rejects the value.
func (h *Handle) Option(opt engine.Option, v any) *Handle {
	if err := h.engine.SetOpt(opt, v); err != nil {
		panic(fmt.Sprintf("easyhttp: setting %s: %v", opt, err))
	}
	return h
}

// Logger sets the logger requests write to. A nil logger restores
// slog.Default().
func (h *Handle) Logger(l *slog.Logger) *Handle {
	if l == nil {
		l = slog.Default()
	}
	h.logger = l
	return h
}

// Handlers installs the event handlers run during every later request
// from h. A nil group removes all handlers.
func (h *Handle) Handlers(g *HandlerGroup) *Handle {
	h.handlers = g
	return h
}

// Get returns a GET request for uri.
func (h *Handle) Get(uri string) *Request {
	return h.NewRequest(MethodGet, uri)
}

// Head returns a HEAD request for uri.
func (h *Handle) Head(uri string) *Request {
	return h.NewRequest(MethodHead, uri)
}

// Delete returns a DELETE request for uri.
func (h *Handle) Delete(uri string) *Request {
	return h.NewRequest(MethodDelete, uri)
}

// Post returns a POST request for uri with body b. The body may be any
// value accepted by Request.Body.
func (h *Handle) Post(uri string, b any) *Request {
	return h.NewRequest(MethodPost, uri).Body(b)
}

// Put returns a PUT request for uri with body b. The body may be any
// value accepted by Request.Body.
func (h *Handle) Put(uri string, b any) *Request {
	return h.NewRequest(MethodPut, uri).Body(b)
}

// NewRequest returns a request with method m for uri.
//
// The URI is set on the session immediately. If the engine rejects it,
// the error is held by the request and returned by Exec.
//
// NewRequest panics if another request from h is still pending.
func (h *Handle) NewRequest(m Method, uri string) *Request {
	if h.inUse {
		panic("easyhttp: handle in use by a pending request")
	}
	h.inUse = true
	r := &Request{
		handle: h,
		method: m,
	}
	return r.URI(uri)
}

func (h *Handle) release() {
	h.inUse = false
}
