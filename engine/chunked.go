// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// chunkedWriter writes each Write call as one HTTP/1.1 chunk.
type chunkedWriter struct {
	w io.Writer
}

func (cw *chunkedWriter) Write(data []byte) (int, error) {
	// A zero-length chunk would terminate the body.
	if len(data) == 0 {
		return 0, nil
	}
	if _, err := fmt.Fprintf(cw.w, "%x\r\n", len(data)); err != nil {
		return 0, err
	}
	n, err := cw.w.Write(data)
	if err != nil {
		return n, err
	}
	if n != len(data) {
		return n, io.ErrShortWrite
	}
	if _, err = io.WriteString(cw.w, "\r\n"); err != nil {
		return n, err
	}
	return n, nil
}

// Close writes the last chunk and the empty trailer.
func (cw *chunkedWriter) Close() error {
	_, err := io.WriteString(cw.w, "0\r\n\r\n")
	return err
}

const maxChunkHeaderLen = 4096

var (
	errChunkLineTooLong = errors.New("chunk header line too long")
	errChunkSize        = errors.New("invalid chunk size")
	errChunkTerminator  = errors.New("malformed chunk terminator")
)

// chunkedReader decodes an HTTP/1.1 chunked body. Chunk extensions and
// trailer fields are read and discarded.
type chunkedReader struct {
	r    *bufio.Reader
	left int64
	done bool
	err  error
}

func newChunkedReader(r *bufio.Reader) *chunkedReader {
	return &chunkedReader{r: r}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.done {
		return 0, io.EOF
	}
	if c.left == 0 {
		n, err := c.readSize()
		if err != nil {
			c.err = err
			return 0, err
		}
		if n == 0 {
			if err = c.skipTrailer(); err != nil {
				c.err = err
				return 0, err
			}
			c.done = true
			return 0, io.EOF
		}
		c.left = n
	}
	if int64(len(p)) > c.left {
		p = p[:c.left]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err == nil && c.left == 0 {
		err = c.readCRLF()
	}
	if err != nil {
		c.err = err
	}
	return n, err
}

func (c *chunkedReader) readSize() (int64, error) {
	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 15 {
		return 0, errChunkSize
	}
	var n int64
	for i := 0; i < len(line); i++ {
		b := line[i]
		switch {
		case '0' <= b && b <= '9':
			b -= '0'
		case 'a' <= b && b <= 'f':
			b = b - 'a' + 10
		case 'A' <= b && b <= 'F':
			b = b - 'A' + 10
		default:
			return 0, errChunkSize
		}
		n = n<<4 | int64(b)
	}
	return n, nil
}

func (c *chunkedReader) skipTrailer() error {
	for {
		line, err := c.readLine()
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}
	}
}

func (c *chunkedReader) readCRLF() error {
	var b [2]byte
	if _, err := io.ReadFull(c.r, b[:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if b[0] != '\r' || b[1] != '\n' {
		return errChunkTerminator
	}
	return nil
}

func (c *chunkedReader) readLine() (string, error) {
	line, err := c.r.ReadSlice('\n')
	if err == bufio.ErrBufferFull || len(line) > maxChunkHeaderLen {
		return "", errChunkLineTooLong
	}
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(string(line), "\r\n"), nil
}
