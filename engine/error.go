// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"net"
	"os"
)

// A Code classifies an engine failure.
type Code int

const (
	// OK is the code of a nil error.
	OK Code = iota
	// UnsupportedProtocol means the URL scheme is not http or https.
	UnsupportedProtocol
	// URLMalformat means the URL could not be parsed or is not usable.
	URLMalformat
	// CouldntResolveHost means the host name could not be resolved.
	CouldntResolveHost
	// CouldntConnect means the TCP connection could not be established.
	CouldntConnect
	// WeirdServerReply means the server response was not valid HTTP/1.x.
	WeirdServerReply
	// OperationTimedout means the overall or connect timeout expired.
	OperationTimedout
	// TooManyRedirects means the redirect limit was reached.
	TooManyRedirects
	// SendError means writing the request to the connection failed.
	SendError
	// RecvError means reading the response from the connection failed.
	RecvError
	// ReadError means reading the request body failed.
	ReadError
	// AbortedByCallback means the progress callback requested an abort.
	AbortedByCallback
	// BadFunctionArgument means an option value or header was rejected.
	BadFunctionArgument
	// UnknownOption means SetOpt was passed an option it does not know.
	UnknownOption
	// SendFailRewind means a redirect required sending the request body
	// again but the body could not be rewound.
	SendFailRewind
	// SSLConnectError means the TLS handshake failed.
	SSLConnectError

	codeSentinel
)

var codeNames = []string{
	"ok",
	"unsupported protocol",
	"URL using bad/illegal format",
	"could not resolve host",
	"could not connect to server",
	"weird server reply",
	"operation timed out",
	"too many redirects",
	"failed sending data to the peer",
	"failure when receiving data from the peer",
	"failed to read the request body",
	"operation aborted by callback",
	"bad function argument",
	"unknown option",
	"send failed since rewinding of the data stream failed",
	"SSL connect error",
}

// String returns a short description of the code.
func (c Code) String() string {
	if c < 0 || c >= codeSentinel {
		return "unknown error"
	}
	return codeNames[c]
}

// An Error is a failure reported by SetOpt or Perform.
type Error struct {
	// Code classifies the failure.
	Code Code
	// Op names the operation that failed, for example "setopt URL" or
	// "connect".
	Op string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := "easyhttp/engine: "
	if e.Op != "" {
		msg += e.Op + ": "
	}
	msg += e.Code.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the error is an OperationTimedout error.
func (e *Error) Timeout() bool {
	return e.Code == OperationTimedout
}

// CodeOf returns the Code of the first *Error in err's chain. It
// returns OK for a nil error, and -1 if err is not nil but contains no
// *Error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return -1
}

func newError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// ioError wraps a network I/O failure, turning deadline expiry into
// OperationTimedout and anything else into the given code. Errors which
// are already an *Error, such as a progress abort, pass through.
func ioError(code Code, op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if isTimeout(err) {
		return newError(OperationTimedout, op, err)
	}
	return newError(code, op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
