// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package engine

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/url"
)

// dial connects to the host named by u, honouring both the connect
// timeout and the overall transfer deadline, and performs the TLS
// handshake for https URLs.
func (t *transfer) dial(u *url.URL, addr string) (net.Conn, error) {
	ctx := context.Background()
	if t.s.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.s.connectTimeout)
		defer cancel()
	}
	if !t.deadline.IsZero() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, t.deadline)
		defer cancel()
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, dialError(err)
	}
	if u.Scheme != "https" {
		return conn, nil
	}

	var cfg *tls.Config
	if t.s.tlsConfig != nil {
		cfg = t.s.tlsConfig.Clone()
	} else {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = u.Hostname()
	}
	tlsConn := tls.Client(conn, cfg)
	if err = tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		if isTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return nil, newError(OperationTimedout, "tls handshake", err)
		}
		return nil, newError(SSLConnectError, "tls handshake", err)
	}
	return tlsConn, nil
}

func dialError(err error) error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return newError(CouldntResolveHost, "connect", err)
	}
	if isTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return newError(OperationTimedout, "connect", err)
	}
	return newError(CouldntConnect, "connect", err)
}

// dialAddr returns the host:port to connect to for u, with the default
// port for the scheme filled in.
func dialAddr(u *url.URL) string {
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port)
}
