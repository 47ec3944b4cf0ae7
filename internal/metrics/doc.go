// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

/*
Package metrics provides Prometheus instrumentation for Citewise.

All collectors are registered with the default registry through promauto at
package initialization. Components record through the Record* helpers rather
than touching collectors directly.

# Metric Catalog

Recommendation requests:
  - citewise_recommend_requests_total{mode, outcome}
  - citewise_recommend_duration_seconds{mode}
  - citewise_recommend_result_size{mode}

Oracle calls:
  - citewise_oracle_estimates_total{oracle}
  - citewise_oracle_errors_total{oracle}
  - citewise_oracle_estimate_duration_seconds{oracle}

Citation index:
  - citewise_index_authors
  - citewise_index_items

Mode is one of combined, knn or mf. Outcome is one of ok, unknown_author,
oracle_error, invalid or canceled.

# Export

Citewise runs as a short-lived command, so there is no scrape endpoint.
WriteTextfile dumps the default gatherer in text exposition format for the
node exporter textfile collector:

	if cfg.Metrics.TextfilePath != "" {
	    if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
	        logging.Warn().Err(err).Msg("write metrics")
	    }
	}
*/
package metrics
