// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package backendserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	watches      prometheus.Gauge
	joinsLimited prometheus.Counter
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "huddle_requests_total",
			Help: "Backend operations by kind, name, and result code.",
		}, []string{"kind", "operation", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "huddle_request_duration_seconds",
			Help:    "Backend operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		watches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "huddle_active_watches",
			Help: "Watch long-polls currently held open.",
		}),
		joinsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "huddle_join_rate_limited_total",
			Help: "Join attempts rejected by the rate limiter.",
		}),
	}
	registerer.MustRegister(m.requests, m.duration, m.watches, m.joinsLimited)
	return m
}

func (m *metrics) observe(kind, operation, code string, start time.Time) {
	m.requests.WithLabelValues(kind, operation, code).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
