// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gogama/easyhttp"
	"github.com/gogama/easyhttp/engine"
	"golang.org/x/net/http/httpguts"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every error returned from Validate.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config holds the settings of a Handle and the defaults applied to the
// requests made from it.
type Config struct {
	// Timeout is the overall timeout of a request. Zero means none.
	Timeout time.Duration `yaml:"timeout"`
	// ConnectTimeout is the connection timeout. Zero means none.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	// ExpectTimeout is how long to wait for 100 Continue when a request
	// uses the Expect handshake.
	ExpectTimeout time.Duration `yaml:"expect_timeout"`

	FollowRedirects bool `yaml:"follow_redirects"`
	// MaxRedirects caps the redirects followed. -1 means unlimited.
	MaxRedirects int `yaml:"max_redirects"`

	UserAgent      string `yaml:"user_agent,omitempty"`
	ExpectContinue bool   `yaml:"expect_continue"`

	// Headers are added to every request passed to Apply, in name
	// order.
	Headers map[string]string `yaml:"headers,omitempty"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the level and format of the logger built by
// Config.Logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	return &Config{
		Timeout:        easyhttp.DefaultTimeout,
		ConnectTimeout: easyhttp.DefaultTimeout,
		ExpectTimeout:  time.Second,
		MaxRedirects:   50,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file and then applies environment
// overrides. If path is empty, only the defaults and the environment
// are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: failed to read config file: %w", err)
		}
		if cfg, err = parse(data); err != nil {
			return nil, err
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document over the defaults and validates the
// result. Unknown keys are an error.
func Parse(data []byte) (*Config, error) {
	cfg, err := parse(data)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// loadFromEnv overrides settings from EASYHTTP_* environment variables.
// Values which do not parse are ignored.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("EASYHTTP_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Timeout = d
		}
	}
	if val := os.Getenv("EASYHTTP_CONNECT_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.ConnectTimeout = d
		}
	}
	if val := os.Getenv("EASYHTTP_USER_AGENT"); val != "" {
		c.UserAgent = val
	}
	if val := os.Getenv("EASYHTTP_LOG_LEVEL"); val != "" {
		c.Log.Level = strings.ToLower(val)
	}
	if val := os.Getenv("EASYHTTP_LOG_FORMAT"); val != "" {
		c.Log.Format = strings.ToLower(val)
	}
}

// Validate checks every setting and reports all problems found at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("timeout must not be negative, got %v", c.Timeout))
	}
	if c.ConnectTimeout < 0 {
		errs = append(errs, fmt.Sprintf("connect_timeout must not be negative, got %v", c.ConnectTimeout))
	}
	if c.ExpectTimeout < 0 {
		errs = append(errs, fmt.Sprintf("expect_timeout must not be negative, got %v", c.ExpectTimeout))
	}
	if c.MaxRedirects < -1 {
		errs = append(errs, fmt.Sprintf("max_redirects must be at least -1, got %d", c.MaxRedirects))
	}
	if !httpguts.ValidHeaderFieldValue(c.UserAgent) {
		errs = append(errs, fmt.Sprintf("user_agent %q is not a valid header value", c.UserAgent))
	}
	for _, name := range slices.Sorted(maps.Keys(c.Headers)) {
		if !httpguts.ValidHeaderFieldName(name) {
			errs = append(errs, fmt.Sprintf("headers: %q is not a valid header name", name))
		} else if !httpguts.ValidHeaderFieldValue(c.Headers[name]) {
			errs = append(errs, fmt.Sprintf("headers: value of %q is not a valid header value", name))
		}
	}

	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, warning, error], got %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Sprintf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// NewHandle returns a Handle with the configured timeouts, redirect cap
// and user agent, logging to the configured logger on standard error.
// The session options are passed to easyhttp.New.
//
// NewHandle panics if the engine rejects a setting, which cannot
// happen for a Config that passes Validate.
func (c *Config) NewHandle(opts ...engine.SessionOption) *easyhttp.Handle {
	logger := c.Logger(os.Stderr)
	opts = append([]engine.SessionOption{engine.WithLogger(logger)}, opts...)
	h := easyhttp.New(opts...).
		Logger(logger).
		Timeout(c.Timeout).
		ConnectTimeout(c.ConnectTimeout).
		Option(engine.OptExpect100TimeoutMS, c.ExpectTimeout.Milliseconds()).
		Option(engine.OptMaxRedirs, c.MaxRedirects)
	if c.UserAgent != "" {
		h.Option(engine.OptUserAgent, c.UserAgent)
	}
	return h
}

// Apply applies the per-request defaults to r: redirect following, the
// Expect handshake, and the default headers. It returns r.
func (c *Config) Apply(r *easyhttp.Request) *easyhttp.Request {
	if c.FollowRedirects {
		r.FollowRedirects(true)
	}
	if c.ExpectContinue {
		r.ExpectContinue()
	}
	for _, name := range slices.Sorted(maps.Keys(c.Headers)) {
		r.Header(name, c.Headers[name])
	}
	return r
}
