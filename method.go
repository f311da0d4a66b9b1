// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

// A Method is an HTTP request method.
//
// Only MethodGet, MethodHead, MethodPost, MethodPut, and MethodDelete
// can be executed. The remaining methods are valid values, but calling
// Exec on a request which uses one of them panics.
type Method int

const (
	MethodOptions Method = iota
	MethodGet
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodTrace
	MethodConnect

	numMethods int = iota
)

var methodNames = []string{
	"OPTIONS",
	"GET",
	"HEAD",
	"POST",
	"PUT",
	"DELETE",
	"TRACE",
	"CONNECT",
}

// Methods returns every Method value.
func Methods() []Method {
	ms := make([]Method, numMethods)
	for i := range ms {
		ms[i] = Method(i)
	}
	return ms
}

// ParseMethod returns the Method whose String value is s. The
// comparison is exact, so s must be upper case.
func ParseMethod(s string) (Method, bool) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), true
		}
	}
	return 0, false
}

// String returns the method token, for example "GET".
func (m Method) String() string {
	if m < 0 || int(m) >= numMethods {
		return "UNKNOWN"
	}
	return methodNames[m]
}
