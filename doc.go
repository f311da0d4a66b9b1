// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package easyhttp provides a fluent HTTP request builder in front of a
native transport engine with an option setting interface.

Create a Handle, then build and execute requests from it:

	h := easyhttp.New()
	resp, err := h.Get("https://www.example.com").Exec()
	...
	resp, err := h.Post("https://www.example.com/upload", data).
		ContentType("application/json").
		Exec()

A Handle owns one engine session (see package engine). Timeouts set on
the Handle apply to every request made from it:

	h := easyhttp.New().
		Timeout(10 * time.Second).
		ConnectTimeout(2 * time.Second)

Each Request is single use: it is consumed by Exec or Discard. Because
the engine keeps its settings on the session, a Handle may only have
one pending Request at a time, and a Handle must not be used from more
than one goroutine at once. Use one Handle per goroutine instead.

Request bodies may be strings, byte slices, readers, files, or any
body.Body. When the body size is known it is sent with a Content-Length
header, otherwise chunked. Unless the caller chooses otherwise, a body
is sent with Content-Type application/octet-stream and without waiting
for a "100 Continue" response.

Errors made while building a request, such as an unusable URI, are
returned by Exec rather than by the builder methods. Transfer failures
are returned as *engine.Error values; use package transient to classify
them.

To hook into request execution, install a handler into the appropriate
handler chain:

	handlers := &easyhttp.HandlerGroup{}
	handlers.PushBack(easyhttp.AfterExec, easyhttp.HandlerFunc(
		func(_ easyhttp.Event, x *easyhttp.Execution) {
			log.Printf("%s %s took %s", x.Method, x.URI, x.Duration())
		}),
	)
	h := easyhttp.New().Handlers(handlers)

Package metrics provides a ready-made handler which records Prometheus
metrics, and package config builds a Handle from a YAML file.
*/
package easyhttp
