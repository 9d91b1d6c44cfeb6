// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics defines the Prometheus collectors recorded during a run
// and writes them out in the textfile exposition format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for request and pair counters.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"

	PairOK     = "ok"
	PairFailed = "failed"
)

// Metrics holds the collectors for one run on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal *prometheus.CounterVec
	RetriesTotal  prometheus.Counter
	PagesTotal    prometheus.Counter
	PairsTotal    *prometheus.CounterVec
	WorksTotal    prometheus.Counter
	PairDuration  prometheus.Histogram
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cooccurrence_requests_total",
				Help: "HTTP attempts against the search API by outcome.",
			},
			[]string{"outcome"},
		),
		RetriesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cooccurrence_request_retries_total",
				Help: "Failed attempts that were followed by another attempt.",
			},
		),
		PagesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cooccurrence_pages_total",
				Help: "Result pages fetched successfully.",
			},
		),
		PairsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cooccurrence_pairs_total",
				Help: "Formula pairs processed by status.",
			},
			[]string{"status"},
		),
		WorksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cooccurrence_works_total",
				Help: "Detail rows accumulated across all pairs.",
			},
		),
		PairDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cooccurrence_pair_duration_seconds",
				Help:    "Wall time spent fetching all pages for one pair.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
	}

	m.Registry.MustRegister(
		m.RequestsTotal,
		m.RetriesTotal,
		m.PagesTotal,
		m.PairsTotal,
		m.WorksTotal,
		m.PairDuration,
	)
	return m
}

// WriteTextfile writes the current values to path, replacing it atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
