/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package monitoring exposes Prometheus metrics for a metadata registry.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results.
const (
	LookupUsable   = "usable"
	LookupNegative = "negative"
	LookupLoaded   = "loaded"
	LookupAbsent   = "absent"
)

// Metrics holds the registry's Prometheus collectors.
type Metrics struct {
	Lookups     *prometheus.CounterVec
	Loads       *prometheus.CounterVec
	LoadErrors  *prometheus.CounterVec
	Initialized prometheus.Counter
	Evictions   prometheus.Counter
	Unloads     prometheus.Counter
	Descriptors prometheus.Gauge
	Files       prometheus.Gauge
	Sweeps      prometheus.Histogram

	registry *prometheus.Registry
}

// New registers the collectors with reg. A nil reg gets a private registry,
// so several registries can coexist in one process.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{}
	if reg == nil {
		m.registry = prometheus.NewRegistry()
		reg = m.registry
	}
	f := promauto.With(reg)

	m.Lookups = f.NewCounterVec(prometheus.CounterOpts{
		Name: "entitymeta_lookups_total",
		Help: "Descriptor lookups by result",
	}, []string{"result"})
	m.Loads = f.NewCounterVec(prometheus.CounterOpts{
		Name: "entitymeta_loads_total",
		Help: "Batch loads by entry point",
	}, []string{"entry"})
	m.LoadErrors = f.NewCounterVec(prometheus.CounterOpts{
		Name: "entitymeta_load_errors_total",
		Help: "Errors collected by batch loads",
	}, []string{"entry"})
	m.Initialized = f.NewCounter(prometheus.CounterOpts{
		Name: "entitymeta_descriptors_initialized_total",
		Help: "Descriptors that completed initialization",
	})
	m.Evictions = f.NewCounter(prometheus.CounterOpts{
		Name: "entitymeta_descriptors_evicted_total",
		Help: "Descriptors evicted because their backing type is missing",
	})
	m.Unloads = f.NewCounter(prometheus.CounterOpts{
		Name: "entitymeta_descriptors_unloaded_total",
		Help: "Descriptors removed by unload",
	})
	m.Descriptors = f.NewGauge(prometheus.GaugeOpts{
		Name: "entitymeta_descriptors",
		Help: "Descriptors currently registered",
	})
	m.Files = f.NewGauge(prometheus.GaugeOpts{
		Name: "entitymeta_descriptor_files",
		Help: "Descriptor files currently registered",
	})
	m.Sweeps = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "entitymeta_sweep_passes",
		Help:    "Extra sweeps run per top-level load",
		Buckets: []float64{0, 1, 2, 3, 5, 8},
	})
	return m
}

// Gatherer returns the private registry created by New(nil), or nil.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m.registry == nil {
		return nil
	}
	return m.registry
}
