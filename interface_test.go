// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"io"
	"testing"

	"github.com/gogama/easyhttp/engine"
	"github.com/stretchr/testify/mock"
)

// setOpt is one recorded SetOpt call. A *engine.List value is recorded
// as its lines, so sequences can be compared with assert.Equal.
type setOpt struct {
	Opt engine.Option
	V   any
}

type mockEngine struct {
	mock.Mock
}

// newMockEngine returns a mockEngine which accepts every option and
// answers every Perform with a 200 response. Use expect to register
// more specific expectations, which take priority.
func newMockEngine(t *testing.T, expect ...func(m *mockEngine)) *mockEngine {
	m := &mockEngine{}
	m.Test(t)
	for _, f := range expect {
		f(m)
	}
	m.On("SetOpt", mock.Anything, mock.Anything).Return(nil)
	m.On("Perform", mock.Anything, mock.Anything).Return(&Response{StatusCode: 200, Status: "200 OK"}, nil)
	return m
}

// newMockHandle returns a Handle backed by a new mockEngine, with the
// calls made while creating the Handle already cleared.
func newMockHandle(t *testing.T, expect ...func(m *mockEngine)) (*Handle, *mockEngine) {
	m := newMockEngine(t, expect...)
	h := NewWithEngine(m)
	m.Calls = nil
	return h, m
}

func (m *mockEngine) SetOpt(opt engine.Option, v any) error {
	args := m.Called(opt, v)
	return args.Error(0)
}

func (m *mockEngine) Perform(body io.Reader, progress ProgressFunc) (*Response, error) {
	var b []byte
	if body != nil {
		b, _ = io.ReadAll(body)
	}
	args := m.Called(b, progress)
	resp, _ := args.Get(0).(*Response)
	return resp, args.Error(1)
}

// setOpts returns the SetOpt calls recorded so far, in order.
func (m *mockEngine) setOpts() []setOpt {
	var opts []setOpt
	for _, c := range m.Calls {
		if c.Method != "SetOpt" {
			continue
		}
		o := setOpt{Opt: c.Arguments.Get(0).(engine.Option), V: c.Arguments.Get(1)}
		if l, ok := o.V.(*engine.List); ok {
			o.V = l.Strings()
		}
		opts = append(opts, o)
	}
	return opts
}

// performs returns the bodies passed to each recorded Perform call.
// A call without a body is recorded as a nil slice.
func (m *mockEngine) performs() [][]byte {
	var bodies [][]byte
	for _, c := range m.Calls {
		if c.Method == "Perform" {
			b, _ := c.Arguments.Get(0).([]byte)
			bodies = append(bodies, b)
		}
	}
	return bodies
}
