// Copyright © 2024 The moqls authors

package lsp

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics are registered on a registry owned by the server, so several
// servers (and tests) never collide on the default registerer.
type metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	suggestions *prometheus.CounterVec
	findings    *prometheus.CounterVec
	faults      *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moqls",
			Name:      "requests_total",
			Help:      "Language server requests handled, by method.",
		}, []string{"method"}),
		suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moqls",
			Name:      "suggestions_total",
			Help:      "Completion items returned, by suggestion kind.",
		}, []string{"kind"}),
		findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moqls",
			Name:      "findings_total",
			Help:      "Diagnostics published, by rule.",
		}, []string{"rule"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "moqls",
			Name:      "faults_total",
			Help:      "Internal faults recovered, by operation.",
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.requests, m.suggestions, m.findings, m.faults)
	return m
}

func (m *metrics) request(method string) {
	m.requests.WithLabelValues(method).Inc()
}

func (m *metrics) fault(op string) {
	m.faults.WithLabelValues(op).Inc()
}
