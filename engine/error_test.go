// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"fmt"
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("boom")
	err := newError(CouldntConnect, "connect", cause)

	assert.Equal(t, "easyhttp/engine: connect: could not connect to server: boom", err.Error())
	assert.Same(t, cause, errors.Unwrap(err))
	assert.False(t, err.Timeout())
	assert.True(t, newError(OperationTimedout, "", nil).Timeout())
	assert.Equal(t, "easyhttp/engine: operation timed out", newError(OperationTimedout, "", nil).Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, CodeOf(nil))
	assert.Equal(t, Code(-1), CodeOf(errors.New("plain")))
	assert.Equal(t, TooManyRedirects, CodeOf(newError(TooManyRedirects, "redirect", nil)))
	wrapped := fmt.Errorf("outer: %w", newError(SendError, "send", nil))
	assert.Equal(t, SendError, CodeOf(wrapped))
}

func TestCode_String(t *testing.T) {
	for c := OK; c < codeSentinel; c++ {
		assert.NotEqual(t, "unknown error", c.String(), "code %d", int(c))
	}
	assert.Equal(t, "unknown error", Code(-1).String())
	assert.Equal(t, "unknown error", codeSentinel.String())
	assert.Len(t, codeNames, int(codeSentinel))
}

func TestIOError(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		err := ioError(RecvError, "read", os.ErrDeadlineExceeded)
		assert.Equal(t, OperationTimedout, CodeOf(err))
	})
	t.Run("other", func(t *testing.T) {
		err := ioError(RecvError, "read", errors.New("reset"))
		assert.Equal(t, RecvError, CodeOf(err))
	})
	t.Run("pass through", func(t *testing.T) {
		abort := newError(AbortedByCallback, "progress", nil)
		assert.Same(t, abort, ioError(RecvError, "read", abort))
	})
}

func TestDialError(t *testing.T) {
	assert.Equal(t, CouldntResolveHost, CodeOf(dialError(&net.DNSError{Err: "no such host", Name: "x.invalid"})))
	assert.Equal(t, OperationTimedout, CodeOf(dialError(&net.DNSError{Err: "timeout", Name: "x", IsTimeout: true})))
	assert.Equal(t, CouldntConnect, CodeOf(dialError(&net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")})))
	assert.Equal(t, OperationTimedout, CodeOf(dialError(os.ErrDeadlineExceeded)))
}
