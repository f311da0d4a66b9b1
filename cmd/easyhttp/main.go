// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command easyhttp sends one HTTP request and writes the response body
// to standard output.
//
//	easyhttp [flags] URL
//
// Settings are read from an optional YAML file given with --config and
// from EASYHTTP_* environment variables; flags override both.
package main

import (
	"fmt"
	"io"
	"os"
)

// Version information, set with -ldflags at build time.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, in io.Reader, out, errOut io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	err := cmd.Execute()
	if err != nil {
		fmt.Fprintf(errOut, "easyhttp: %v\n", err)
	}
	return exitCode(err)
}
