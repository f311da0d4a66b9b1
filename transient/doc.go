// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors from HTTP request execution as
// transient or non-transient. This is handy for deciding whether to
// send a request again, and for other purposes such as bucketing error
// metrics or choosing a process exit code.
//
// Package transient depends only on the standard library and package
// engine, whose error codes it understands.
package transient
