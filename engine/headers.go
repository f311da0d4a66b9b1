// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// customHeader is one parsed line of a custom header List.
type customHeader struct {
	name   string
	value  string
	remove bool // "Name:" with no value
}

type field struct {
	name  string
	value string
}

var errHeaderLine = errors.New("malformed header line")

func parseHeaderList(l *List) ([]customHeader, error) {
	var hs []customHeader
	for _, line := range l.Lines() {
		s := string(line)
		if i := strings.IndexByte(s, ':'); i >= 0 {
			name := s[:i]
			value := strings.TrimLeft(s[i+1:], " \t")
			hs = append(hs, customHeader{
				name:   name,
				value:  value,
				remove: value == "",
			})
		} else if strings.HasSuffix(s, ";") {
			hs = append(hs, customHeader{name: s[:len(s)-1]})
		} else {
			return nil, newError(BadFunctionArgument, "header list", fmt.Errorf("%w %q", errHeaderLine, s))
		}
	}
	for _, h := range hs {
		if !httpguts.ValidHeaderFieldName(h.name) {
			return nil, newError(BadFunctionArgument, "header list", fmt.Errorf("invalid header field name %q", h.name))
		}
		if !httpguts.ValidHeaderFieldValue(h.value) {
			// The value is not quoted since it may be sensitive.
			return nil, newError(BadFunctionArgument, "header list", fmt.Errorf("invalid header field value for %q", h.name))
		}
	}
	return hs, nil
}

// framing describes how a request body is delimited on the wire.
type framing struct {
	chunked bool
	length  int64
}

// requestHead is the complete set of header fields for one request,
// together with the body framing and whether to wait for 100 Continue.
type requestHead struct {
	fields []field
	frame  framing
	expect bool
}

// buildHead merges the engine's own header fields with the custom
// header list. A custom header replaces an engine header of the same
// name, compared case-insensitively, and a removal line deletes it.
//
// Body framing follows the custom headers when they contain
// Transfer-Encoding: chunked or Content-Length, and otherwise the size
// hint; with no usable hint the body is chunked. Framing headers are
// only sent when there is a body.
func (s *Session) buildHead(host string, hasBody bool, hint int64, custom []customHeader) (requestHead, error) {
	var head requestHead

	frame := framing{chunked: hint < 0, length: hint}
	customFraming := false
	for _, h := range custom {
		if h.remove {
			continue
		}
		switch {
		case strings.EqualFold(h.name, "Transfer-Encoding"):
			if containsToken(h.value, "chunked") {
				frame = framing{chunked: true, length: -1}
				customFraming = true
			}
		case strings.EqualFold(h.name, "Content-Length"):
			if frame.chunked && customFraming {
				continue
			}
			n, err := strconv.ParseInt(strings.TrimSpace(h.value), 10, 64)
			if err != nil || n < 0 {
				return head, newError(BadFunctionArgument, "header list", fmt.Errorf("invalid Content-Length %q", h.value))
			}
			frame = framing{length: n}
			customFraming = true
		}
	}
	head.frame = frame

	defaults := []field{{"Host", host}}
	if s.userAgent != "" {
		defaults = append(defaults, field{"User-Agent", s.userAgent})
	}
	defaults = append(defaults, field{"Accept", "*/*"})
	if hasBody && !customFraming {
		if frame.chunked {
			defaults = append(defaults, field{"Transfer-Encoding", "chunked"})
		} else {
			defaults = append(defaults, field{"Content-Length", strconv.FormatInt(frame.length, 10)})
		}
	}
	if hasBody {
		defaults = append(defaults, field{"Expect", "100-continue"})
	}

	for _, h := range custom {
		for i := 0; i < len(defaults); i++ {
			if strings.EqualFold(defaults[i].name, h.name) {
				defaults = append(defaults[:i], defaults[i+1:]...)
				i--
			}
		}
	}
	head.fields = defaults
	for _, h := range custom {
		if h.remove {
			continue
		}
		if !hasBody && isFramingHeader(h.name) {
			continue
		}
		head.fields = append(head.fields, field{h.name, h.value})
	}

	if hasBody {
		for _, f := range head.fields {
			if strings.EqualFold(f.name, "Expect") && strings.EqualFold(strings.TrimSpace(f.value), "100-continue") {
				head.expect = true
			}
		}
	}
	return head, nil
}

func isFramingHeader(name string) bool {
	return strings.EqualFold(name, "Transfer-Encoding") || strings.EqualFold(name, "Content-Length")
}

func containsToken(v, token string) bool {
	for _, t := range strings.Split(v, ",") {
		if strings.EqualFold(strings.TrimSpace(t), token) {
			return true
		}
	}
	return false
}
