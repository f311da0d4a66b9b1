// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

// An Option identifies a session setting changed with Session.SetOpt.
//
// Every option is stored on the session and stays in effect for all
// later transfers until it is set again. The expected value type is
// given with each option below; integer options accept any Go integer
// type that fits the documented range.
type Option int

const (
	// OptTimeoutMS is the maximum time in milliseconds a whole Perform
	// call may take, including connecting and following redirects.
	// Zero means no timeout. Value type: integer, at least zero.
	OptTimeoutMS Option = iota + 1
	// OptConnectTimeoutMS is the maximum time in milliseconds allowed
	// for establishing the connection, including any TLS handshake.
	// Zero means no connect timeout. Value type: integer, at least zero.
	OptConnectTimeoutMS
	// OptURL is the target URL. Value type: string.
	//
	// SetOpt rejects a URL which contains control characters or cannot
	// be parsed, with code URLMalformat. Whether the URL is usable for a
	// transfer (absolute, http or https scheme, with a host) is only
	// checked by Perform.
	OptURL
	// OptFollowLocation makes Perform follow redirect responses that
	// carry a Location header. Value type: bool.
	OptFollowLocation
	// OptMaxRedirs caps the number of redirects followed. The default
	// is 50; -1 means unlimited. Value type: integer, at least -1.
	OptMaxRedirs
	// OptHTTPHeader sets the custom header list sent with each request.
	// A nil value (untyped nil or a nil *List) clears the list. Value
	// type: *List.
	OptHTTPHeader
	// OptHTTPGet makes the request a GET. Value type: bool.
	OptHTTPGet
	// OptNoBody makes the request a HEAD; no response body is read.
	// Value type: bool.
	OptNoBody
	// OptPost makes the request a POST which sends the body passed to
	// Perform. Value type: bool.
	OptPost
	// OptUpload makes the request a PUT which sends the body passed to
	// Perform. Value type: bool.
	OptUpload
	// OptCustomRequest replaces the method token in the request line
	// without changing how the request is otherwise shaped. The empty
	// string removes the override. Value type: string.
	OptCustomRequest
	// OptPostFieldSize is the size of a POST body in bytes, sent as
	// Content-Length. -1 means unknown, in which case the body is sent
	// with chunked transfer encoding. Value type: integer, at least -1.
	OptPostFieldSize
	// OptInFileSize is the size of an upload body in bytes, sent as
	// Content-Length. -1 means unknown. Value type: integer, at least -1.
	OptInFileSize
	// OptUserAgent sets the User-Agent header. The empty string means
	// no User-Agent header is sent. Value type: string.
	OptUserAgent
	// OptExpect100TimeoutMS is how long in milliseconds to wait for a
	// 100 Continue response after sending "Expect: 100-continue" before
	// sending the body anyway. The default is 1000. Value type: integer,
	// at least zero.
	OptExpect100TimeoutMS

	optSentinel
)

var optionNames = []string{
	"",
	"TIMEOUT_MS",
	"CONNECTTIMEOUT_MS",
	"URL",
	"FOLLOWLOCATION",
	"MAXREDIRS",
	"HTTPHEADER",
	"HTTPGET",
	"NOBODY",
	"POST",
	"UPLOAD",
	"CUSTOMREQUEST",
	"POSTFIELDSIZE",
	"INFILESIZE",
	"USERAGENT",
	"EXPECT_100_TIMEOUT_MS",
}

// String returns the name of the option.
func (o Option) String() string {
	if o <= 0 || o >= optSentinel {
		return "UNKNOWN"
	}
	return optionNames[o]
}
