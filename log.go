// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package easyhttp

import (
	"net/url"
	"strings"
)

// sensitiveParams contains query parameter name fragments whose values
// are redacted from logged URLs. They are matched case-insensitively.
var sensitiveParams = []string{
	"api_key",
	"apikey",
	"token",
	"password",
	"auth",
	"secret",
	"key",
	"credential",
	"signature",
}

// sanitizeURL returns raw with user info and sensitive query parameter
// values redacted. A URI which cannot be parsed is not logged at all.
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[unparsable]"
	}

	q := u.Query()
	redacted := false
	for param := range q {
		if isSensitiveParam(param) {
			q.Set(param, "[REDACTED]")
			redacted = true
		}
	}

	safe := *u
	if redacted {
		safe.RawQuery = q.Encode()
	}
	return safe.Redacted()
}

func isSensitiveParam(param string) bool {
	lower := strings.ToLower(param)
	for _, sensitive := range sensitiveParams {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

func (h *Handle) logExec(x *Execution) {
	attrs := []any{
		"exec_id", x.ID,
		"method", x.Method.String(),
		"url", sanitizeURL(x.URI),
		"duration_ms", x.Duration().Milliseconds(),
	}
	if x.Err != nil {
		h.logger.Warn("http exec", append(attrs, "error", x.Err)...)
		return
	}
	attrs = append(attrs, "status", x.StatusCode())
	if x.Response != nil && x.Response.Redirects > 0 {
		attrs = append(attrs, "redirects", x.Response.Redirects)
	}
	h.logger.Debug("http exec", attrs...)
}
