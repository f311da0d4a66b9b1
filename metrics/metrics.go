// Copyright 2021 The easyhttp Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package metrics records Prometheus metrics about requests executed by
// an easyhttp.Handle.
//
// Create a Collector, install it in a HandlerGroup, and give the group
// to the Handle:
//
//	c := metrics.NewCollector(prometheus.DefaultRegisterer)
//	g := &easyhttp.HandlerGroup{}
//	c.Install(g)
//	h := easyhttp.New().Handlers(g)
package metrics

import (
	"strconv"

	"github.com/gogama/easyhttp"
	"github.com/gogama/easyhttp/transient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// A Collector is an event handler which records one observation per
// executed request.
type Collector struct {
	inFlight  prometheus.Gauge
	requests  *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	redirects prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg creates unregistered metrics. NewCollector panics if the
// metrics are already registered with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		inFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "easyhttp_requests_in_flight",
				Help: "Number of requests currently executing",
			},
		),
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easyhttp_requests_total",
				Help: "Total requests which received a response, by method and status code",
			},
			[]string{"method", "code"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "easyhttp_request_errors_total",
				Help: "Total requests which failed without a response, by method and error category",
			},
			[]string{"method", "category"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "easyhttp_request_duration_seconds",
				Help:    "Request duration in seconds, by method",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		redirects: f.NewCounter(
			prometheus.CounterOpts{
				Name: "easyhttp_redirects_total",
				Help: "Total redirects followed",
			},
		),
	}
}

// Install adds c to g for the BeforeExec and AfterExec events.
func (c *Collector) Install(g *easyhttp.HandlerGroup) {
	g.PushBack(easyhttp.BeforeExec, c)
	g.PushBack(easyhttp.AfterExec, c)
}

// Handle records x. It implements easyhttp.Handler.
func (c *Collector) Handle(evt easyhttp.Event, x *easyhttp.Execution) {
	switch evt {
	case easyhttp.BeforeExec:
		c.inFlight.Inc()
	case easyhttp.AfterExec:
		c.inFlight.Dec()
		c.observe(x)
	}
}

func (c *Collector) observe(x *easyhttp.Execution) {
	method := x.Method.String()
	c.duration.WithLabelValues(method).Observe(x.Duration().Seconds())

	if x.Err != nil {
		c.errors.WithLabelValues(method, category(x.Err)).Inc()
		return
	}
	if x.Response != nil {
		c.requests.WithLabelValues(method, strconv.Itoa(x.Response.StatusCode)).Inc()
		c.redirects.Add(float64(x.Response.Redirects))
	}
}

func category(err error) string {
	cat := transient.Categorize(err)
	if cat == transient.Not {
		return "other"
	}
	return cat.String()
}
