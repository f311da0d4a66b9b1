// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

// Progress is a snapshot of transfer progress passed to a ProgressFunc.
//
// Totals are zero when unknown: an upload total is known when the
// request is sent with a Content-Length, and a download total is known
// when the response carries one. Counters restart for each request
// sent while following redirects.
type Progress struct {
	DownloadTotal int64
	DownloadNow   int64
	UploadTotal   int64
	UploadNow     int64
}

// A ProgressFunc receives progress reports during Perform. It is
// called synchronously on the goroutine running Perform: once before
// the request is sent and then after each block of data is written or
// read.
//
// Returning a non-nil error aborts the transfer. Perform then fails
// with code AbortedByCallback and the returned error as its cause.
type ProgressFunc func(Progress) error

type progressTracker struct {
	fn ProgressFunc
	p  Progress
}

func (t *progressTracker) reset() {
	t.p = Progress{}
}

func (t *progressTracker) report() error {
	if t.fn == nil {
		return nil
	}
	if err := t.fn(t.p); err != nil {
		return newError(AbortedByCallback, "progress", err)
	}
	return nil
}

func (t *progressTracker) uploaded(n int) error {
	t.p.UploadNow += int64(n)
	return t.report()
}

func (t *progressTracker) downloaded(n int) error {
	t.p.DownloadNow += int64(n)
	return t.report()
}
