// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package body contains the request body abstraction consumed by the
// request builder and the transport engine.
//
// A Body is a reader that may know its own length up front. The
// request builder uses the length to decide whether the engine should
// send a Content-Length header or fall back to chunked transfer
// encoding; the engine then pulls bytes from the Body while it sends
// the request.
package body

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// A Body is request body data handed to the transport engine.
//
// Size returns the number of bytes the Body will produce and true if
// that number is known before reading, or an arbitrary number and
// false if the Body must be streamed without a known length.
//
// Bodies returned by Bytes, String and From for in-memory types also
// implement io.Seeker, so the engine can rewind them when a redirect
// requires the body to be sent again.
type Body interface {
	io.Reader
	Size() (n int64, known bool)
}

// From converts a generic body value into a Body.
//
// The conversion logic is:
//
// • If v is nil, a nil Body and no error is returned (no request body).
//
// • If v already implements Body, it is returned as is.
//
// • If v is a string, []byte, *bytes.Buffer, *bytes.Reader or
// *strings.Reader, the result has a known size equal to the number of
// unread bytes. A *bytes.Buffer is captured at the time of the call.
//
// • If v is an *os.File referring to a regular file, the result has a
// known size equal to the bytes remaining from the current offset.
// Other files (pipes, devices) have unknown size.
//
// • If v is any other io.Reader, the result has unknown size.
//
// • If v is any other type, a nil Body and an error is returned.
func From(v any) (Body, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Body:
		return x, nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case *bytes.Buffer:
		return Bytes(x.Bytes()), nil
	case *bytes.Reader:
		return &sized{r: x, n: int64(x.Len()), base: x.Size() - int64(x.Len())}, nil
	case *strings.Reader:
		return &sized{r: x, n: int64(x.Len()), base: x.Size() - int64(x.Len())}, nil
	case *os.File:
		return file(x), nil
	case io.Reader:
		return Reader(x), nil
	default:
		return nil, fmt.Errorf("easyhttp/body: unsupported body type %T", v)
	}
}

// Bytes returns a Body of known size reading from b. The slice is not
// copied and must not be modified until the request has executed.
func Bytes(b []byte) Body {
	return &sized{r: bytes.NewReader(b), n: int64(len(b))}
}

// String returns a Body of known size reading from s.
func String(s string) Body {
	return &sized{r: strings.NewReader(s), n: int64(len(s))}
}

// Reader returns a Body of unknown size reading from r. A request
// carrying this body is sent with chunked transfer encoding unless the
// caller sets an explicit Content-Length.
func Reader(r io.Reader) Body {
	return unsized{r}
}

// SizedReader returns a Body reading from r whose size is asserted by
// the caller to be n bytes. The engine trusts n: if r produces fewer
// bytes the transfer fails, and bytes beyond n are never read.
func SizedReader(r io.Reader, n int64) Body {
	return &sized{r: io.LimitReader(r, n), n: n}
}

type sized struct {
	r    io.Reader
	n    int64
	base int64 // offset of the first body byte in r
}

func (b *sized) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

func (b *sized) Size() (int64, bool) {
	return b.n, true
}

// Seek is only supported when the underlying reader supports it.
// Offsets are relative to the first byte of the body, not of r.
func (b *sized) Seek(offset int64, whence int) (int64, error) {
	s, ok := b.r.(io.Seeker)
	if !ok {
		return 0, errNotSeekable
	}
	if whence == io.SeekStart {
		offset += b.base
	}
	n, err := s.Seek(offset, whence)
	return n - b.base, err
}

type unsized struct {
	io.Reader
}

func (unsized) Size() (int64, bool) {
	return -1, false
}

var errNotSeekable = errors.New("easyhttp/body: body is not seekable")

func file(f *os.File) Body {
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		return Reader(f)
	}
	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return Reader(f)
	}
	return &sized{r: f, n: fi.Size() - off, base: off}
}
