// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/gogama/easyhttp"
	"github.com/gogama/easyhttp/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const progressInterval = 200 * time.Millisecond

type options struct {
	method         string
	headers        []string
	data           string
	dataFile       string
	follow         bool
	timeout        time.Duration
	connectTimeout time.Duration
	expectContinue bool
	chunked        bool
	contentLength  int64
	progress       bool
	include        bool
	fail           bool
	configPath     string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "easyhttp [flags] URL",
		Short: "Send one HTTP request",
		Long: `easyhttp sends one HTTP request and writes the response body to
standard output.

Examples:
  easyhttp http://localhost:8080/items
  easyhttp -d '{"name":"x"}' -H 'Content-Type: application/json' http://localhost:8080/items
  easyhttp -X PUT --data-file item.bin --chunked http://localhost:8080/items/1
  easyhttp -X DELETE -L --timeout 5s http://localhost:8080/items/1`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}
	addFlags(cmd.Flags(), o)
	return cmd
}

func addFlags(fs *pflag.FlagSet, o *options) {
	fs.StringVarP(&o.method, "request", "X", "", "Request method: GET, HEAD, POST, PUT or DELETE (default GET, or POST with a body)")
	fs.StringArrayVarP(&o.headers, "header", "H", nil, "Header to send, as 'Name: value' (repeatable); 'Name:' removes a default header")
	fs.StringVarP(&o.data, "data", "d", "", "Request body")
	fs.StringVar(&o.dataFile, "data-file", "", "Read the request body from a file, or standard input if '-'")
	fs.BoolVarP(&o.follow, "location", "L", false, "Follow redirects")
	fs.DurationVar(&o.timeout, "timeout", 0, "Overall request timeout (default from config, 30s)")
	fs.DurationVar(&o.connectTimeout, "connect-timeout", 0, "Connect timeout (default from config, 30s)")
	fs.BoolVar(&o.expectContinue, "expect-continue", false, "Use the 'Expect: 100-continue' handshake")
	fs.BoolVar(&o.chunked, "chunked", false, "Send the body with chunked transfer encoding")
	fs.Int64Var(&o.contentLength, "content-length", -1, "Send the body with this Content-Length")
	fs.BoolVar(&o.progress, "progress", false, "Report transfer progress on standard error")
	fs.BoolVarP(&o.include, "include", "i", false, "Write the status line and response headers before the body")
	fs.BoolVarP(&o.fail, "fail", "f", false, "Exit with status 1 when the response status is 400 or more")
	fs.StringVar(&o.configPath, "config", os.Getenv("EASYHTTP_CONFIG"), "Path to a YAML config file (env: EASYHTTP_CONFIG)")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Log at debug level")
}

var supportedMethods = []easyhttp.Method{
	easyhttp.MethodGet,
	easyhttp.MethodHead,
	easyhttp.MethodPost,
	easyhttp.MethodPut,
	easyhttp.MethodDelete,
}

func (o *options) run(cmd *cobra.Command, uri string) error {
	cfg, err := o.loadConfig(cmd.Flags())
	if err != nil {
		return withCode(ExitConfigError, err)
	}

	m, err := o.requestMethod()
	if err != nil {
		return withCode(ExitUsageError, err)
	}
	headers, err := parseHeaders(o.headers)
	if err != nil {
		return withCode(ExitUsageError, err)
	}
	b, closeBody, err := o.body(cmd.InOrStdin())
	if err != nil {
		return withCode(ExitUsageError, err)
	}
	defer closeBody()

	h := cfg.NewHandle().Logger(cfg.Logger(cmd.ErrOrStderr()))
	r := cfg.Apply(h.NewRequest(m, uri))
	for _, f := range headers {
		r.Header(f[0], f[1])
	}
	if b != nil {
		r.Body(b)
	}
	if o.chunked {
		r.Chunked()
	}
	if o.contentLength >= 0 {
		r.ContentLength(o.contentLength)
	}
	if o.progress {
		r.Progress(easyhttp.ThrottleProgress(progressInterval, progressPrinter(cmd.ErrOrStderr())))
	}

	resp, err := r.Exec()
	if o.progress {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		return withCode(requestExitCode(err), err)
	}

	if err = writeResponse(cmd.OutOrStdout(), resp, o.include); err != nil {
		return withCode(ExitRequestError, err)
	}
	if o.fail && resp.StatusCode >= 400 {
		return withCode(ExitHTTPError, fmt.Errorf("server returned %s", resp.Status))
	}
	return nil
}

// loadConfig loads the config file and applies the flags that were
// given on top of it.
func (o *options) loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if fs.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if fs.Changed("connect-timeout") {
		cfg.ConnectTimeout = o.connectTimeout
	}
	if o.follow {
		cfg.FollowRedirects = true
	}
	if o.expectContinue {
		cfg.ExpectContinue = true
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *options) requestMethod() (easyhttp.Method, error) {
	if o.method == "" {
		if o.data != "" || o.dataFile != "" {
			return easyhttp.MethodPost, nil
		}
		return easyhttp.MethodGet, nil
	}
	m, ok := easyhttp.ParseMethod(strings.ToUpper(o.method))
	if !ok || !slices.Contains(supportedMethods, m) {
		return 0, fmt.Errorf("unsupported request method %q", o.method)
	}
	return m, nil
}

// body returns the request body value and a function which releases
// it. The value is nil when no body was given.
func (o *options) body(stdin io.Reader) (any, func(), error) {
	noop := func() {}
	switch {
	case o.data != "" && o.dataFile != "":
		return nil, noop, errors.New("--data and --data-file cannot be used together")
	case o.data != "":
		return o.data, noop, nil
	case o.dataFile == "-":
		return stdin, noop, nil
	case o.dataFile != "":
		f, err := os.Open(o.dataFile)
		if err != nil {
			return nil, noop, err
		}
		return f, func() { _ = f.Close() }, nil
	default:
		return nil, noop, nil
	}
}

// parseHeaders splits each "Name: value" argument into its name and
// value. Whitespace around the value is removed.
func parseHeaders(args []string) ([][2]string, error) {
	fields := make([][2]string, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q: want 'Name: value'", arg)
		}
		fields = append(fields, [2]string{name, strings.TrimSpace(value)})
	}
	return fields, nil
}

func progressPrinter(w io.Writer) easyhttp.ProgressFunc {
	return func(p easyhttp.Progress) error {
		fmt.Fprintf(w, "\rup %d/%d down %d/%d", p.UploadNow, p.UploadTotal, p.DownloadNow, p.DownloadTotal)
		return nil
	}
}

func writeResponse(w io.Writer, resp *easyhttp.Response, include bool) error {
	if include {
		var sb strings.Builder
		fmt.Fprintf(&sb, "%s %s\r\n", resp.Proto, resp.Status)
		for _, name := range slices.Sorted(maps.Keys(resp.Header)) {
			for _, v := range resp.Header[name] {
				fmt.Fprintf(&sb, "%s: %s\r\n", name, v)
			}
		}
		sb.WriteString("\r\n")
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}
	_, err := w.Write(resp.Body)
	return err
}
