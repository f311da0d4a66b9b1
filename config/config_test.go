// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
timeout: 10s
connect_timeout: 2s
follow_redirects: true
max_redirects: 5
user_agent: easyhttp-test/1.0
expect_continue: true
headers:
  X-Team: core
  Accept: application/json
log:
  level: debug
  format: json
`

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, time.Second, cfg.ExpectTimeout)
	assert.Equal(t, 50, cfg.MaxRedirects)
	assert.False(t, cfg.FollowRedirects)
	assert.Equal(t, LogConfig{Level: "info", Format: "text"}, cfg.Log)
	assert.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		cfg, err := Parse([]byte(sample))

		require.NoError(t, err)
		assert.Equal(t, &Config{
			Timeout:         10 * time.Second,
			ConnectTimeout:  2 * time.Second,
			ExpectTimeout:   time.Second,
			FollowRedirects: true,
			MaxRedirects:    5,
			UserAgent:       "easyhttp-test/1.0",
			ExpectContinue:  true,
			Headers:         map[string]string{"X-Team": "core", "Accept": "application/json"},
			Log:             LogConfig{Level: "debug", Format: "json"},
		}, cfg)
	})
	t.Run("empty", func(t *testing.T) {
		cfg, err := Parse(nil)

		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run("partial", func(t *testing.T) {
		cfg, err := Parse([]byte("timeout: 1m\nlog:\n  format: json\n"))

		require.NoError(t, err)
		assert.Equal(t, time.Minute, cfg.Timeout)
		assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, "json", cfg.Log.Format)
	})
	t.Run("unknown key", func(t *testing.T) {
		_, err := Parse([]byte("timout: 1s\n"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "config: failed to parse YAML")
	})
	t.Run("bad duration", func(t *testing.T) {
		_, err := Parse([]byte("timeout: soon\n"))

		assert.Error(t, err)
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := Parse([]byte("max_redirects: -2\nlog:\n  level: loud\n"))

		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "max_redirects must be at least -1, got -2")
		assert.Contains(t, err.Error(), `log.level must be one of [debug, info, warn, warning, error], got "loud"`)
	})
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must not be negative"},
		{"negative connect timeout", func(c *Config) { c.ConnectTimeout = -1 }, "connect_timeout must not be negative"},
		{"negative expect timeout", func(c *Config) { c.ExpectTimeout = -1 }, "expect_timeout must not be negative"},
		{"bad user agent", func(c *Config) { c.UserAgent = "a\nb" }, "user_agent"},
		{"bad header name", func(c *Config) { c.Headers = map[string]string{"Bad Name": "x"} }, `"Bad Name" is not a valid header name`},
		{"bad header value", func(c *Config) { c.Headers = map[string]string{"X": "a\r\nb"} }, `value of "X"`},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format must be one of [json, text]"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := Default()
			testCase.modify(cfg)

			err := cfg.Validate()

			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), testCase.want)
		})
	}
	t.Run("unlimited redirects", func(t *testing.T) {
		cfg := Default()
		cfg.MaxRedirects = -1
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "easyhttp.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "core", cfg.Headers["X-Team"])
	})
	t.Run("no file", func(t *testing.T) {
		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("environment", func(t *testing.T) {
		t.Setenv("EASYHTTP_TIMEOUT", "3s")
		t.Setenv("EASYHTTP_CONNECT_TIMEOUT", "not-a-duration")
		t.Setenv("EASYHTTP_USER_AGENT", "env/1")
		t.Setenv("EASYHTTP_LOG_LEVEL", "DEBUG")
		t.Setenv("EASYHTTP_LOG_FORMAT", "JSON")

		cfg, err := Load("")

		require.NoError(t, err)
		assert.Equal(t, 3*time.Second, cfg.Timeout)
		assert.Equal(t, 30*time.Second, cfg.ConnectTimeout)
		assert.Equal(t, "env/1", cfg.UserAgent)
		assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
	})
	t.Run("environment invalid", func(t *testing.T) {
		t.Setenv("EASYHTTP_LOG_FORMAT", "xml")

		_, err := Load("")

		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfig_Logger(t *testing.T) {
	t.Run("json debug", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := Default()
		cfg.Log = LogConfig{Level: "debug", Format: "json"}

		cfg.Logger(&buf).Debug("hello", "k", "v")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "v", rec["k"])
	})
	t.Run("text info", func(t *testing.T) {
		var buf bytes.Buffer
		l := Default().Logger(&buf)

		l.Debug("hidden")
		l.Info("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "msg=shown")
	})
}

func TestConfig_NewHandle_Apply(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/end", http.StatusFound)
			return
		}
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)
	cfg.Log.Level = "error"
	h := cfg.NewHandle()

	resp, err := cfg.Apply(h.Get(server.URL + "/start")).Exec()

	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, resp.Redirects)
	assert.Equal(t, "easyhttp-test/1.0", got.Get("User-Agent"))
	assert.Equal(t, "core", got.Get("X-Team"))
	assert.Equal(t, []string{"application/json"}, got.Values("Accept"))
}
