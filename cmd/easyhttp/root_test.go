// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/", http.StatusFound)
			return
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			return
		case "/slow":
			time.Sleep(500 * time.Millisecond)
		}
		b, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Server", "test")
		_, _ = fmt.Fprintf(w, "%s|%s|%s|%s", r.Method, r.Header.Get("X-A"), r.Header.Get("Content-Type"), b)
	}))
	t.Cleanup(server.Close)
	return server
}

type result struct {
	code   int
	stdout string
	stderr string
}

func runCLI(stdin string, args ...string) result {
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func TestRun(t *testing.T) {
	server := newTestServer(t)
	dataFile := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(dataFile, []byte("from file"), 0o600))

	testCases := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"get", "", []string{server.URL}, "GET|||"},
		{"header", "", []string{"-H", "X-A: 1", server.URL}, "GET|1||"},
		{"post data", "", []string{"-d", "hello", server.URL}, "POST||application/octet-stream|hello"},
		{"content type", "", []string{"-d", "{}", "-H", "Content-Type: application/json", server.URL}, "POST||application/json|{}"},
		{"put data file", "", []string{"-X", "put", "--data-file", dataFile, server.URL}, "PUT||application/octet-stream|from file"},
		{"stdin chunked", "piped", []string{"--data-file", "-", "--chunked", server.URL}, "POST||application/octet-stream|piped"},
		{"delete with body", "", []string{"-X", "DELETE", "-d", "x", server.URL}, "DELETE||application/octet-stream|x"},
		{"content length", "", []string{"-d", "abc", "--content-length", "3", "--expect-continue", server.URL}, "POST||application/octet-stream|abc"},
		{"follow", "", []string{"-L", server.URL + "/redirect"}, "GET|||"},
		{"head", "", []string{"-X", "HEAD", server.URL}, ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r := runCLI(testCase.stdin, testCase.args...)

			assert.Equal(t, ExitSuccess, r.code, r.stderr)
			assert.Equal(t, testCase.want, r.stdout)
		})
	}
}

func TestRun_Include(t *testing.T) {
	server := newTestServer(t)

	r := runCLI("", "-i", server.URL)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.True(t, strings.HasPrefix(r.stdout, "HTTP/1.1 200 OK\r\n"), r.stdout)
	assert.Contains(t, r.stdout, "X-Server: test\r\n")
	assert.True(t, strings.HasSuffix(r.stdout, "\r\n\r\nGET|||"), r.stdout)
}

func TestRun_Progress(t *testing.T) {
	server := newTestServer(t)

	r := runCLI("", "--progress", "-d", "abc", server.URL)

	require.Equal(t, ExitSuccess, r.code, r.stderr)
	assert.Contains(t, r.stderr, "\rup ")
}

func TestRun_Errors(t *testing.T) {
	server := newTestServer(t)
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("log:\n  level: loud\n"), 0o600))

	testCases := []struct {
		name   string
		args   []string
		code   int
		stderr string
	}{
		{"no url", nil, ExitUsageError, "accepts 1 arg(s)"},
		{"unknown flag", []string{"--nope", server.URL}, ExitUsageError, "unknown flag"},
		{"bad method", []string{"-X", "PATCH", server.URL}, ExitUsageError, `unsupported request method "PATCH"`},
		{"options unsupported", []string{"-X", "OPTIONS", server.URL}, ExitUsageError, "unsupported request method"},
		{"bad header", []string{"-H", "nocolon", server.URL}, ExitUsageError, `invalid header "nocolon"`},
		{"both bodies", []string{"-d", "x", "--data-file", "-", server.URL}, ExitUsageError, "cannot be used together"},
		{"missing data file", []string{"--data-file", filepath.Join(t.TempDir(), "missing"), server.URL}, ExitUsageError, "no such file"},
		{"missing config", []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), server.URL}, ExitConfigError, "failed to read config file"},
		{"invalid config", []string{"--config", badConfig, server.URL}, ExitConfigError, "log.level"},
		{"negative timeout", []string{"--timeout", "-1s", server.URL}, ExitConfigError, "timeout must not be negative"},
		{"bad url", []string{"ftp://example.com/"}, ExitRequestError, "unsupported protocol"},
		{"refused", []string{closedURL}, ExitNetworkError, "easyhttp: "},
		{"timeout", []string{"--timeout", "50ms", server.URL + "/slow"}, ExitTimeout, "easyhttp: "},
		{"fail", []string{"-f", server.URL + "/missing"}, ExitHTTPError, "server returned 404 Not Found"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			r := runCLI("", testCase.args...)

			assert.Equal(t, testCase.code, r.code, r.stderr)
			assert.Contains(t, r.stderr, testCase.stderr)
		})
	}
	t.Run("not found without fail", func(t *testing.T) {
		r := runCLI("", server.URL+"/missing")

		assert.Equal(t, ExitSuccess, r.code)
		assert.Empty(t, r.stdout)
	})
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUsageError, exitCode(io.EOF))
	assert.Equal(t, ExitTimeout, exitCode(fmt.Errorf("wrapped: %w", withCode(ExitTimeout, io.EOF))))
}

func TestParseHeaders(t *testing.T) {
	fields, err := parseHeaders([]string{"A: 1", "B:2", " C :  spaced  ", "Accept:"})

	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"A", "1"}, {"B", "2"}, {"C", "spaced"}, {"Accept", ""}}, fields)

	_, err = parseHeaders([]string{": empty name"})
	assert.Error(t, err)
}
