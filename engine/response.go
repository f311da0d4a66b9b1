// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import "net/http"

// A Response is the final HTTP response received by Perform.
//
// Interim 1xx responses are consumed by the engine and never returned.
// When redirects are followed, the Response describes the last request
// in the chain.
type Response struct {
	// Proto is the protocol from the status line, e.g. "HTTP/1.1".
	Proto string
	// Status is the status code and reason phrase, e.g. "200 OK".
	Status string
	// StatusCode is the numeric status code.
	StatusCode int
	// Header holds the response headers, with canonicalized keys.
	Header http.Header
	// Body is the complete response body. It is empty, never nil, for
	// responses which have no body.
	Body []byte
	// EffectiveURL is the URL of the request which produced this
	// response.
	EffectiveURL string
	// Redirects is the number of redirects followed.
	Redirects int
}
