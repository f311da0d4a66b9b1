// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package engine is a native HTTP/1.1 transport engine with an option
// setting interface.
//
// A Session holds long-lived transfer settings, changed one at a time
// with SetOpt, and runs one blocking transfer at a time with Perform:
//
//	s := engine.New()
//	if err := s.SetOpt(engine.OptURL, "http://example.com/"); err != nil {
//		...
//	}
//	resp, err := s.Perform(nil, nil)
//
// Every setting, including the custom header list and the request
// shape (GET, HEAD, POST, upload), belongs to the session rather than
// to one transfer, so a setting made for one Perform call remains in
// effect for the next. A Session must not be used by more than one
// goroutine at a time.
//
// The engine opens one connection per request and closes it when the
// response has been read. It speaks HTTP/1.1 over plain TCP and TLS
// only; there is no connection pooling, retry, or HTTP/2 support.
package engine

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/url"
	"time"
)

const (
	defaultMaxRedirs     = 50
	defaultExpectTimeout = time.Second
)

type shape int

const (
	shapeGet shape = iota
	shapeHead
	shapePost
	shapeUpload
)

// A Session is one transport engine instance. Its zero value is not
// usable; create sessions with New.
type Session struct {
	timeout        time.Duration
	connectTimeout time.Duration
	expectTimeout  time.Duration

	rawURL    string
	follow    bool
	maxRedirs int64
	headers   *List

	shape         shape
	customRequest string
	postFieldSize int64
	inFileSize    int64
	userAgent     string

	tlsConfig *tls.Config
	logger    *slog.Logger
}

// A SessionOption configures a Session at construction time.
type SessionOption func(*Session)

// WithLogger sets the logger the session writes debug records to. The
// default is slog.Default().
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTLSConfig sets the TLS configuration used for https URLs. The
// configuration is cloned for each connection, and ServerName is filled
// in from the URL when it is empty.
func WithTLSConfig(c *tls.Config) SessionOption {
	return func(s *Session) {
		s.tlsConfig = c
	}
}

// New returns a Session with default settings: no timeouts, no URL,
// GET requests, no custom headers, redirects not followed.
func New(opts ...SessionOption) *Session {
	s := &Session{
		expectTimeout: defaultExpectTimeout,
		maxRedirs:     defaultMaxRedirs,
		postFieldSize: -1,
		inFileSize:    -1,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	errNoURL       = errors.New("no URL set")
	errControlChar = errors.New("URL contains control characters")
)

// SetOpt changes one session setting. See the documentation of each
// Option for its value type and meaning.
//
// A value of the wrong type, or out of the option's range, is rejected
// with code BadFunctionArgument. An unknown option is rejected with code
// UnknownOption. A rejected value leaves the setting unchanged.
func (s *Session) SetOpt(opt Option, v any) error {
	op := "setopt " + opt.String()
	switch opt {
	case OptTimeoutMS, OptConnectTimeoutMS, OptExpect100TimeoutMS:
		ms, ok := toInt64(v)
		if !ok || ms < 0 || ms > math.MaxInt64/int64(time.Millisecond) {
			return badArgument(op, v)
		}
		d := time.Duration(ms) * time.Millisecond
		switch opt {
		case OptTimeoutMS:
			s.timeout = d
		case OptConnectTimeoutMS:
			s.connectTimeout = d
		default:
			s.expectTimeout = d
		}
	case OptURL:
		raw, ok := v.(string)
		if !ok {
			return badArgument(op, v)
		}
		if err := checkURL(raw); err != nil {
			return newError(URLMalformat, op, err)
		}
		s.rawURL = raw
	case OptFollowLocation:
		b, ok := v.(bool)
		if !ok {
			return badArgument(op, v)
		}
		s.follow = b
	case OptMaxRedirs:
		n, ok := toInt64(v)
		if !ok || n < -1 {
			return badArgument(op, v)
		}
		s.maxRedirs = n
	case OptHTTPHeader:
		switch l := v.(type) {
		case nil:
			s.headers = nil
		case *List:
			s.headers = l
		default:
			return badArgument(op, v)
		}
	case OptHTTPGet, OptNoBody, OptPost, OptUpload:
		b, ok := v.(bool)
		if !ok {
			return badArgument(op, v)
		}
		sh := shapeOf(opt)
		if b {
			s.setShape(sh)
		} else if s.shape == sh {
			s.setShape(shapeGet)
		}
	case OptCustomRequest:
		m, ok := v.(string)
		if !ok {
			return badArgument(op, v)
		}
		s.customRequest = m
	case OptPostFieldSize, OptInFileSize:
		n, ok := toInt64(v)
		if !ok || n < -1 {
			return badArgument(op, v)
		}
		if opt == OptPostFieldSize {
			s.postFieldSize = n
		} else {
			s.inFileSize = n
		}
	case OptUserAgent:
		ua, ok := v.(string)
		if !ok {
			return badArgument(op, v)
		}
		s.userAgent = ua
	default:
		return newError(UnknownOption, op, nil)
	}
	return nil
}

// setShape switches the request shape. Changing the shape also clears
// the custom method and both size hints.
func (s *Session) setShape(sh shape) {
	s.shape = sh
	s.customRequest = ""
	s.postFieldSize = -1
	s.inFileSize = -1
}

func shapeOf(opt Option) shape {
	switch opt {
	case OptNoBody:
		return shapeHead
	case OptPost:
		return shapePost
	case OptUpload:
		return shapeUpload
	default:
		return shapeGet
	}
}

func (s *Session) method() string {
	if s.customRequest != "" {
		return s.customRequest
	}
	switch s.shape {
	case shapeHead:
		return "HEAD"
	case shapePost:
		return "POST"
	case shapeUpload:
		return "PUT"
	default:
		return "GET"
	}
}

// sizeHint is the body size configured for the current request shape.
func (s *Session) sizeHint() int64 {
	switch s.shape {
	case shapePost:
		return s.postFieldSize
	case shapeUpload:
		return s.inFileSize
	default:
		return -1
	}
}

// Perform runs one blocking transfer using the current session
// settings and returns the final response.
//
// The request body is read from body, but only when the request shape
// is POST (OptPost) or upload (OptUpload); otherwise body is ignored.
// If progress is non-nil it is called as described on ProgressFunc.
//
// A response with any status code is a successful transfer. Perform
// returns an *Error for every failure.
func (s *Session) Perform(body io.Reader, progress ProgressFunc) (*Response, error) {
	if s.rawURL == "" {
		return nil, newError(URLMalformat, "perform", errNoURL)
	}
	u, err := url.Parse(s.rawURL)
	if err != nil {
		return nil, newError(URLMalformat, "perform", err)
	}
	custom, err := parseHeaderList(s.headers)
	if err != nil {
		return nil, err
	}

	t := &transfer{
		s:        s,
		progress: progressTracker{fn: progress},
	}
	if s.timeout > 0 {
		t.deadline = time.Now().Add(s.timeout)
	}

	method := s.method()
	if s.shape != shapePost && s.shape != shapeUpload {
		body = nil
	}
	hint := s.sizeHint()

	for redirects := 0; ; redirects++ {
		resp, err := t.roundTrip(method, u, body, hint, custom)
		if err != nil {
			return nil, err
		}
		resp.EffectiveURL = u.String()
		resp.Redirects = redirects

		loc := resp.Header.Get("Location")
		if !s.follow || !isRedirect(resp.StatusCode) || loc == "" {
			return resp, nil
		}
		if s.maxRedirs >= 0 && int64(redirects) >= s.maxRedirs {
			return nil, newError(TooManyRedirects, "redirect", nil)
		}
		next, err := u.Parse(loc)
		if err != nil {
			return nil, newError(URLMalformat, "redirect", err)
		}

		switch resp.StatusCode {
		case 303:
			if method != "HEAD" {
				method, body = "GET", nil
			}
		case 301, 302:
			if method == "POST" {
				method, body = "GET", nil
			}
		}
		if body != nil {
			if err = rewind(body); err != nil {
				return nil, err
			}
		}

		s.logger.Debug("following redirect",
			"status", resp.StatusCode,
			"from", u.Redacted(),
			"to", next.Redacted(),
			"method", method,
		)
		u = next
	}
}

func isRedirect(code int) bool {
	switch code {
	case 301, 302, 303, 307, 308:
		return true
	}
	return false
}

func rewind(body io.Reader) error {
	seeker, ok := body.(io.Seeker)
	if !ok {
		return newError(SendFailRewind, "redirect", nil)
	}
	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return newError(SendFailRewind, "redirect", err)
	}
	return nil
}

func checkURL(raw string) error {
	for i := 0; i < len(raw); i++ {
		if c := raw[i]; c < 0x20 || c == 0x7f {
			return errControlChar
		}
	}
	_, err := url.Parse(raw)
	return err
}

func badArgument(op string, v any) *Error {
	return newError(BadFunctionArgument, op, &valueError{v})
}

type valueError struct {
	v any
}

func (e *valueError) Error() string {
	return fmt.Sprintf("invalid value %v (%T)", e.v, e.v)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return uint64ToInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return uint64ToInt64(n)
	}
	return 0, false
}

func uint64ToInt64(n uint64) (int64, bool) {
	if n > math.MaxInt64 {
		return 0, false
	}
	return int64(n), true
}
