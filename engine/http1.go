// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

const copyBufferSize = 32 * 1024

var (
	errNoHost      = errors.New("URL has no host")
	errInvalidHost = errors.New("invalid host")
	errStatusLine  = errors.New("malformed status line")
	errShortBody   = errors.New("request body shorter than Content-Length")
)

// transfer is the state of one Perform call.
type transfer struct {
	s        *Session
	deadline time.Time
	progress progressTracker
}

// roundTrip sends one request on a new connection and reads the final
// response.
func (t *transfer) roundTrip(method string, u *url.URL, body io.Reader, hint int64, custom []customHeader) (*Response, error) {
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, newError(UnsupportedProtocol, "request", fmt.Errorf("scheme %q", u.Scheme))
	}
	if u.Host == "" {
		return nil, newError(URLMalformat, "request", errNoHost)
	}
	host, err := httpguts.PunycodeHostPort(u.Host)
	if err != nil {
		return nil, newError(URLMalformat, "request", err)
	}
	if !httpguts.ValidHostHeader(host) {
		return nil, newError(URLMalformat, "request", errInvalidHost)
	}
	addr, err := httpguts.PunycodeHostPort(dialAddr(u))
	if err != nil {
		return nil, newError(URLMalformat, "request", err)
	}

	head, err := t.s.buildHead(host, body != nil, hint, custom)
	if err != nil {
		return nil, err
	}

	t.progress.reset()
	if body != nil && !head.frame.chunked {
		t.progress.p.UploadTotal = head.frame.length
	}
	if err = t.progress.report(); err != nil {
		return nil, err
	}

	conn, err := t.dial(u, addr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if !t.deadline.IsZero() {
		if err = conn.SetDeadline(t.deadline); err != nil {
			return nil, newError(CouldntConnect, "connect", err)
		}
	}

	bw := bufio.NewWriter(conn)
	br := bufio.NewReader(conn)

	if err = writeHead(bw, method, u, head.fields); err != nil {
		return nil, ioError(SendError, "send request", err)
	}

	if body != nil {
		send := true
		if head.expect && t.s.expectTimeout > 0 {
			var early *Response
			send, early, err = t.awaitContinue(conn, br, method)
			if err != nil {
				return nil, err
			}
			if early != nil {
				return early, nil
			}
		}
		if send {
			if err = t.writeBody(bw, body, head.frame); err != nil {
				return nil, err
			}
		}
	}

	return t.readResponse(br, method)
}

func writeHead(bw *bufio.Writer, method string, u *url.URL, fields []field) error {
	if _, err := fmt.Fprintf(bw, "%s %s HTTP/1.1\r\n", method, u.RequestURI()); err != nil {
		return err
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(bw, "%s: %s\r\n", f.name, f.value); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\r\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// awaitContinue waits up to the expect timeout for the server to answer
// an "Expect: 100-continue" request. It reports whether the body should
// be sent. If the server answers with a final status instead, that
// response is returned and the body is never sent.
func (t *transfer) awaitContinue(conn net.Conn, br *bufio.Reader, method string) (bool, *Response, error) {
	wait := time.Now().Add(t.s.expectTimeout)
	if !t.deadline.IsZero() && t.deadline.Before(wait) {
		wait = t.deadline
	}
	if err := conn.SetReadDeadline(wait); err != nil {
		return false, nil, newError(RecvError, "expect continue", err)
	}
	_, err := br.Peek(1)
	if rerr := conn.SetReadDeadline(t.deadline); rerr != nil {
		return false, nil, newError(RecvError, "expect continue", rerr)
	}
	if err != nil {
		if isTimeout(err) && (t.deadline.IsZero() || time.Now().Before(t.deadline)) {
			return true, nil, nil
		}
		return false, nil, ioError(RecvError, "expect continue", err)
	}

	resp, err := readHead(br)
	for err == nil && resp.StatusCode >= 100 && resp.StatusCode < 200 {
		if resp.StatusCode == http.StatusContinue {
			return true, nil, nil
		}
		resp, err = readHead(br)
	}
	if err != nil {
		return false, nil, err
	}
	t.s.logger.Debug("final response before request body", "status", resp.StatusCode)
	if err = t.readBody(br, resp, method); err != nil {
		return false, nil, err
	}
	return false, resp, nil
}

func (t *transfer) writeBody(bw *bufio.Writer, body io.Reader, f framing) error {
	var w io.Writer = bw
	var cw *chunkedWriter
	if f.chunked {
		cw = &chunkedWriter{w: bw}
		w = cw
	}

	buf := make([]byte, copyBufferSize)
	var sent int64
	for f.chunked || sent < f.length {
		p := buf
		if !f.chunked && int64(len(p)) > f.length-sent {
			p = p[:f.length-sent]
		}
		n, rerr := body.Read(p)
		if n > 0 {
			if _, err := w.Write(p[:n]); err != nil {
				return ioError(SendError, "send body", err)
			}
			sent += int64(n)
			if err := t.progress.uploaded(n); err != nil {
				return err
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return newError(ReadError, "read body", rerr)
		}
	}

	if !f.chunked && sent < f.length {
		return newError(SendError, "send body", fmt.Errorf("%w: sent %d of %d bytes", errShortBody, sent, f.length))
	}
	if cw != nil {
		if err := cw.Close(); err != nil {
			return ioError(SendError, "send body", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return ioError(SendError, "send body", err)
	}
	return nil
}

func (t *transfer) readResponse(br *bufio.Reader, method string) (*Response, error) {
	resp, err := readHead(br)
	for err == nil && resp.StatusCode >= 100 && resp.StatusCode < 200 && resp.StatusCode != http.StatusSwitchingProtocols {
		resp, err = readHead(br)
	}
	if err != nil {
		return nil, err
	}
	if err = t.readBody(br, resp, method); err != nil {
		return nil, err
	}
	return resp, nil
}

func readHead(br *bufio.Reader) (*Response, error) {
	tp := textproto.NewReader(br)
	line, err := tp.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, newError(RecvError, "read response", io.ErrUnexpectedEOF)
		}
		return nil, ioError(RecvError, "read response", err)
	}
	resp, err := parseStatusLine(line)
	if err != nil {
		return nil, newError(WeirdServerReply, "read response", err)
	}
	mh, err := tp.ReadMIMEHeader()
	if err != nil {
		var pe textproto.ProtocolError
		if errors.As(err, &pe) {
			return nil, newError(WeirdServerReply, "read response", err)
		}
		return nil, ioError(RecvError, "read response", err)
	}
	resp.Header = http.Header(mh)
	return resp, nil
}

func parseStatusLine(line string) (*Response, error) {
	proto, rest, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/1.") {
		return nil, fmt.Errorf("%w %q", errStatusLine, line)
	}
	code, reason, _ := strings.Cut(rest, " ")
	if len(code) != 3 {
		return nil, fmt.Errorf("%w %q", errStatusLine, line)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 {
		return nil, fmt.Errorf("%w %q", errStatusLine, line)
	}
	status := code
	if reason != "" {
		status += " " + reason
	}
	return &Response{Proto: proto, Status: status, StatusCode: n}, nil
}

func bodyAllowed(method string, code int) bool {
	if method == "HEAD" {
		return false
	}
	return code >= 200 && code != http.StatusNoContent && code != http.StatusNotModified
}

func (t *transfer) readBody(br *bufio.Reader, resp *Response, method string) error {
	resp.Body = []byte{}
	if !bodyAllowed(method, resp.StatusCode) {
		return nil
	}

	var r io.Reader
	length := int64(-1)
	switch {
	case containsToken(strings.Join(resp.Header.Values("Transfer-Encoding"), ","), "chunked"):
		r = newChunkedReader(br)
	case resp.Header.Get("Content-Length") != "":
		n, err := strconv.ParseInt(strings.TrimSpace(resp.Header.Get("Content-Length")), 10, 64)
		if err != nil || n < 0 {
			return newError(WeirdServerReply, "read response", fmt.Errorf("invalid Content-Length %q", resp.Header.Get("Content-Length")))
		}
		length = n
		t.progress.p.DownloadTotal = n
		r = io.LimitReader(br, n)
	default:
		r = br
	}

	var sb strings.Builder
	buf := make([]byte, copyBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			sb.Write(buf[:n])
			if perr := t.progress.downloaded(n); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return ioError(RecvError, "read response body", err)
		}
	}
	if length >= 0 && int64(sb.Len()) < length {
		return newError(RecvError, "read response body", io.ErrUnexpectedEOF)
	}
	resp.Body = []byte(sb.String())
	return nil
}
