// Package metrics holds the process-wide Prometheus collectors and the
// HTTP endpoint that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ParseTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cxxnav_parse_total",
		Help: "Parse attempts by outcome.",
	}, []string{"result"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cxxnav_parse_seconds",
		Help:    "Time spent in the front-end parsing one translation unit.",
		Buckets: prometheus.DefBuckets,
	})

	UnitsResident = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cxxnav_units_resident",
		Help: "Translation units currently held in the store.",
	})

	PersistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cxxnav_persist_total",
		Help: "Per-unit save and load attempts by outcome.",
	}, []string{"op", "result"})

	ReferenceQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cxxnav_reference_query_seconds",
		Help:    "Time spent answering one find-all-references query.",
		Buckets: prometheus.DefBuckets,
	})

	ReferencesFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cxxnav_references_found",
		Help:    "Number of locations returned per find-all-references query.",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
	})
)

// Outcome labels.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Outcome maps an error to a result label.
func Outcome(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
