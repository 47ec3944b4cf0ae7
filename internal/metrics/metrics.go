// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - recommendation requests (mode, outcome, latency, result size)
// - oracle estimates (count, failures, latency)
// - the loaded citation index

// Recommendation modes.
const (
	ModeCombined = "combined"
	ModeKNN      = "knn"
	ModeMF       = "mf"
)

// Request outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeUnknownAuthor = "unknown_author"
	OutcomeOracleError   = "oracle_error"
	OutcomeInvalid       = "invalid"
	OutcomeCanceled      = "canceled"
)

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citewise_recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"mode", "outcome"},
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citewise_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	RecommendResultSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citewise_recommend_result_size",
			Help:    "Number of items returned per successful recommendation request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	// Oracle Metrics
	OracleEstimates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citewise_oracle_estimates_total",
			Help: "Total number of oracle estimate calls",
		},
		[]string{"oracle"},
	)

	OracleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "citewise_oracle_errors_total",
			Help: "Total number of failed oracle estimate calls",
		},
		[]string{"oracle"},
	)

	OracleEstimateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "citewise_oracle_estimate_duration_seconds",
			Help:    "Duration of single oracle estimate calls in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
		[]string{"oracle"},
	)

	// Index Metrics
	IndexAuthors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "citewise_index_authors",
			Help: "Number of authors in the loaded citation index",
		},
	)

	IndexItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "citewise_index_items",
			Help: "Number of items in the loaded citation index",
		},
	)
)

// RecordRecommendRequest records one recommendation request. size is only
// observed for successful requests.
func RecordRecommendRequest(mode, outcome string, duration time.Duration, size int) {
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if outcome == OutcomeOK {
		RecommendResultSize.WithLabelValues(mode).Observe(float64(size))
	}
}

// RecordOracleEstimate records a single oracle call.
func RecordOracleEstimate(oracle string, duration time.Duration, err error) {
	OracleEstimates.WithLabelValues(oracle).Inc()
	OracleEstimateDuration.WithLabelValues(oracle).Observe(duration.Seconds())
	if err != nil {
		OracleErrors.WithLabelValues(oracle).Inc()
	}
}

// SetIndexSize updates the citation index gauges.
func SetIndexSize(authors, items int) {
	IndexAuthors.Set(float64(authors))
	IndexItems.Set(float64(items))
}

// WriteTextfile writes every metric of the default gatherer to path in the
// text exposition format, for the node exporter textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return errors.New("metrics textfile path is empty")
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
