// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import "bytes"

// A List is an ordered list of raw header lines, passed to a session
// with OptHTTPHeader.
//
// Each line has the form "Name: value". A line whose value is empty
// ("Name:") removes a header the engine would otherwise send itself and
// is not sent. A line of the form "Name;" sends the header with an
// empty value.
type List struct {
	lines [][]byte
}

// NewList returns an empty List.
func NewList() *List {
	return &List{}
}

// Push appends a header line. The line ends at the first NUL byte in b;
// that byte and everything after it are ignored. Push copies the bytes,
// so b may be reused after the call.
func (l *List) Push(b []byte) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	l.lines = append(l.lines, bytes.Clone(b))
}

// Len returns the number of lines in the List.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.lines)
}

// Lines returns the lines in push order. The returned slices must not
// be modified.
func (l *List) Lines() [][]byte {
	if l == nil {
		return nil
	}
	return l.lines
}

// Strings returns the lines in push order as strings.
func (l *List) Strings() []string {
	if l == nil {
		return nil
	}
	s := make([]string, len(l.lines))
	for i, line := range l.lines {
		s[i] = string(line)
	}
	return s
}
