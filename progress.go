// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"time"

	"golang.org/x/time/rate"
)

// ThrottleProgress returns a ProgressFunc which forwards at most one
// report per interval to fn. A report showing a completed download is
// always forwarded, so fn sees the final state of every transfer with
// a known response size. Errors returned by fn are passed back to the
// engine, so fn can still abort the transfer.
//
// ThrottleProgress returns nil if fn is nil.
func ThrottleProgress(interval time.Duration, fn ProgressFunc) ProgressFunc {
	if fn == nil {
		return nil
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	return func(p Progress) error {
		done := p.DownloadTotal > 0 && p.DownloadNow >= p.DownloadTotal
		if !done && !limiter.Allow() {
			return nil
		}
		return fn(p)
	}
}
