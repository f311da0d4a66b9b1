// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listOf(lines ...string) *List {
	l := NewList()
	for _, line := range lines {
		l.Push([]byte(line + "\x00"))
	}
	return l
}

func TestParseHeaderList(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		hs, err := parseHeaderList(nil)
		require.NoError(t, err)
		assert.Empty(t, hs)
	})
	t.Run("forms", func(t *testing.T) {
		hs, err := parseHeaderList(listOf("A: 1", "B:", "C;", "D:two words", "E: a: b"))
		require.NoError(t, err)
		assert.Equal(t, []customHeader{
			{name: "A", value: "1"},
			{name: "B", remove: true},
			{name: "C"},
			{name: "D", value: "two words"},
			{name: "E", value: "a: b"},
		}, hs)
	})
	t.Run("errors", func(t *testing.T) {
		for _, line := range []string{"NoSeparator", ": no name", "Bad Name: x", "X: bad\x01value"} {
			_, err := parseHeaderList(listOf(line))
			assert.Equal(t, BadFunctionArgument, CodeOf(err), "line %q", line)
		}
	})
}

func TestSession_BuildHead(t *testing.T) {
	testCases := []struct {
		name    string
		ua      string
		hasBody bool
		hint    int64
		lines   []string
		fields  []field
		frame   framing
		expect  bool
	}{
		{
			name:   "no body",
			hint:   -1,
			fields: []field{{"Host", "h"}, {"Accept", "*/*"}},
			frame:  framing{chunked: true, length: -1},
		},
		{
			name:   "user agent",
			ua:     "ua/1",
			hint:   -1,
			fields: []field{{"Host", "h"}, {"User-Agent", "ua/1"}, {"Accept", "*/*"}},
			frame:  framing{chunked: true, length: -1},
		},
		{
			name:    "sized body",
			hasBody: true,
			hint:    5,
			fields:  []field{{"Host", "h"}, {"Accept", "*/*"}, {"Content-Length", "5"}, {"Expect", "100-continue"}},
			frame:   framing{length: 5},
			expect:  true,
		},
		{
			name:    "unsized body",
			hasBody: true,
			hint:    -1,
			fields:  []field{{"Host", "h"}, {"Accept", "*/*"}, {"Transfer-Encoding", "chunked"}, {"Expect", "100-continue"}},
			frame:   framing{chunked: true, length: -1},
			expect:  true,
		},
		{
			name:    "expect removed",
			hasBody: true,
			hint:    2,
			lines:   []string{"Expect:"},
			fields:  []field{{"Host", "h"}, {"Accept", "*/*"}, {"Content-Length", "2"}},
			frame:   framing{length: 2},
		},
		{
			name:    "custom chunked overrides hint",
			hasBody: true,
			hint:    10,
			lines:   []string{"Transfer-Encoding: chunked"},
			fields:  []field{{"Host", "h"}, {"Accept", "*/*"}, {"Expect", "100-continue"}, {"Transfer-Encoding", "chunked"}},
			frame:   framing{chunked: true, length: -1},
			expect:  true,
		},
		{
			name:    "custom length",
			hasBody: true,
			hint:    -1,
			lines:   []string{"Content-Length: 3", "Expect:"},
			fields:  []field{{"Host", "h"}, {"Accept", "*/*"}, {"Content-Length", "3"}},
			frame:   framing{length: 3},
		},
		{
			name:   "framing dropped without body",
			hint:   -1,
			lines:  []string{"Content-Length: 3", "X-A: b"},
			fields: []field{{"Host", "h"}, {"Accept", "*/*"}, {"X-A", "b"}},
			frame:  framing{length: 3},
		},
		{
			name:   "replace and empty",
			hint:   -1,
			lines:  []string{"accept: text/plain", "X-Empty;", "X-Multi: 1", "X-Multi: 2"},
			fields: []field{{"Host", "h"}, {"accept", "text/plain"}, {"X-Empty", ""}, {"X-Multi", "1"}, {"X-Multi", "2"}},
			frame:  framing{chunked: true, length: -1},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s := New()
			s.userAgent = testCase.ua
			custom, err := parseHeaderList(listOf(testCase.lines...))
			require.NoError(t, err)

			head, err := s.buildHead("h", testCase.hasBody, testCase.hint, custom)

			require.NoError(t, err)
			assert.Equal(t, testCase.fields, head.fields)
			assert.Equal(t, testCase.frame, head.frame)
			assert.Equal(t, testCase.expect, head.expect)
		})
	}

	t.Run("bad content length", func(t *testing.T) {
		custom, err := parseHeaderList(listOf("Content-Length: many"))
		require.NoError(t, err)
		_, err = New().buildHead("h", true, -1, custom)
		assert.Equal(t, BadFunctionArgument, CodeOf(err))
	})
}
