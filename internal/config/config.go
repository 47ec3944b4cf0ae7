// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package config

import (
	"fmt"

	"github.com/tomtom215/citewise/internal/logging"
	"github.com/tomtom215/citewise/internal/validation"
)

// Data source kinds.
const (
	SourceJSON     = "json"
	SourceSnapshot = "snapshot"
)

// Config holds all application configuration loaded from config files and
// environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//   - Data: where the author-citation relation is read from
//   - Models: which fitted oracles to load from the model store
//   - Recommend: default recommendation counts
//   - Logging: log level and output format
//   - Metrics: optional Prometheus textfile export
type Config struct {
	Data      DataConfig      `koanf:"data"`
	Models    ModelsConfig    `koanf:"models"`
	Recommend RecommendConfig `koanf:"recommend"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DataConfig selects the citation source.
//
// Environment Variables:
//   - CITATIONS_SOURCE: json or snapshot (default: json)
//   - CITATIONS_PATH: path to the author_dois.json document
//   - SNAPSHOT_DIR: badger directory holding an imported snapshot
type DataConfig struct {
	// Source is json (read CitationsPath at startup) or snapshot (read the
	// badger snapshot in SnapshotDir).
	Source string `koanf:"source" validate:"oneof=json snapshot"`

	// CitationsPath is the JSON object mapping author names to DOI lists.
	// Default: data/author_dois.json
	CitationsPath string `koanf:"citations_path" validate:"required_if=Source json"`

	// SnapshotDir is the badger directory used by the snapshot source and by
	// `citewise snapshot import`.
	// Default: data/snapshot
	SnapshotDir string `koanf:"snapshot_dir" validate:"required_if=Source snapshot"`
}

// ModelsConfig names the fitted oracles in the model store.
//
// Environment Variables:
//   - MODELS_DIR: model store directory
//   - KNN_MODEL_NAME / MF_MODEL_NAME: model names in the store
//   - KNN_MODEL_VERSION / MF_MODEL_VERSION: pinned versions (0 = latest)
type ModelsConfig struct {
	Dir        string `koanf:"dir" validate:"required"`
	KNNName    string `koanf:"knn_name" validate:"required"`
	MFName     string `koanf:"mf_name" validate:"required"`
	KNNVersion int    `koanf:"knn_version" validate:"gte=0"`
	MFVersion  int    `koanf:"mf_version" validate:"gte=0"`
}

// RecommendConfig holds the default counts used when the CLI is not given -n.
type RecommendConfig struct {
	// NumRecs is the combined recommendation budget. Default: 10
	NumRecs int `koanf:"num_recs" validate:"gte=0,lte=1000"`

	// ModelNumRecs is the count for single-oracle recommendations. Default: 5
	ModelNumRecs int `koanf:"model_num_recs" validate:"gte=0,lte=1000"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: console)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"loglevel"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	// TextfilePath, when set, receives the default registry in text format
	// after every command. Point it at a node-exporter textfile directory.
	TextfilePath string `koanf:"textfile_path"`
}

// Validate checks struct tags, then cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.validateModels()
}

func (c *Config) validateModels() error {
	if c.Models.KNNName == c.Models.MFName {
		return fmt.Errorf("models.knn_name and models.mf_name must differ, both are %q", c.Models.KNNName)
	}
	return nil
}

// LogConfig converts the logging section into a logging.Config.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
