// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"

	"github.com/gogama/easyhttp/transient"
)

// Exit codes for the easyhttp command.
const (
	// ExitSuccess indicates a response was received.
	ExitSuccess = 0

	// ExitHTTPError indicates a response status of 400 or more while
	// --fail is set.
	ExitHTTPError = 1

	// ExitRequestError indicates the request failed for a reason not
	// covered by another code.
	ExitRequestError = 2

	// ExitConfigError indicates a configuration error.
	ExitConfigError = 3

	// ExitNetworkError indicates the connection was refused or reset.
	ExitNetworkError = 4

	// ExitTimeout indicates the request timed out.
	ExitTimeout = 5

	// ExitAborted indicates the transfer was aborted.
	ExitAborted = 6

	// ExitUsageError indicates invalid CLI usage.
	ExitUsageError = 64
)

// An exitError carries the exit code for an error returned by a
// command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// requestExitCode maps a request failure to an exit code by its
// transient category.
func requestExitCode(err error) int {
	switch transient.Categorize(err) {
	case transient.Timeout:
		return ExitTimeout
	case transient.ConnRefused, transient.ConnReset:
		return ExitNetworkError
	case transient.Aborted:
		return ExitAborted
	default:
		return ExitRequestError
	}
}

// exitCode returns the exit code for the error returned by executing
// the root command. Errors without a code are usage errors, since
// cobra returns those for bad flags and arguments.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}
