// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

/*
Package config provides centralized configuration management for Citewise.

# Configuration Sources

LoadWithKoanf layers three sources, later ones winning:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: $CONFIG_PATH, citewise.yaml, config.yaml, config.yml
    or /etc/citewise/config.yaml, first found
  - Mapped environment variables

# Example File

	data:
	  source: json
	  citations_path: data/author_dois.json
	models:
	  dir: data/models
	  knn_name: knn
	  mf_name: mf
	recommend:
	  num_recs: 10
	  model_num_recs: 5
	logging:
	  level: info
	  format: console

# Environment Variables

Data (DataConfig):
  - CITATIONS_SOURCE: json or snapshot (default: json)
  - CITATIONS_PATH: author-citation JSON document (default: data/author_dois.json)
  - SNAPSHOT_DIR: badger snapshot directory (default: data/snapshot)

Models (ModelsConfig):
  - MODELS_DIR: model store directory (default: data/models)
  - KNN_MODEL_NAME, MF_MODEL_NAME: model names (default: knn, mf)
  - KNN_MODEL_VERSION, MF_MODEL_VERSION: pinned versions, 0 for latest

Recommendation defaults (RecommendConfig):
  - NUM_RECS: combined budget (default: 10)
  - MODEL_NUM_RECS: single-oracle count (default: 5)

Logging (LoggingConfig):
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Metrics (MetricsConfig):
  - METRICS_TEXTFILE_PATH: write Prometheus text output here after each command

Any other environment variable is ignored.

# Validation

Config.Validate runs the go-playground/validator struct tags through the
validation package and then checks that the two model names differ, since
both oracles share one versioned store.
*/
package config
