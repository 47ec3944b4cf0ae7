// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/citewise/internal/citations"
	"github.com/tomtom215/citewise/internal/config"
	"github.com/tomtom215/citewise/internal/logging"
	"github.com/tomtom215/citewise/internal/metrics"
	"github.com/tomtom215/citewise/internal/oracle"
	"github.com/tomtom215/citewise/internal/recommend"
	"github.com/tomtom215/citewise/internal/recommend/storage"
)

// loadIndex builds the citation index from the configured source.
func (c *cli) loadIndex(ctx context.Context) (*citations.Index, error) {
	var (
		index *citations.Index
		err   error
	)

	switch c.cfg.Data.Source {
	case config.SourceSnapshot:
		index, err = c.loadSnapshot(ctx)
	default:
		index, err = citations.LoadJSON(c.cfg.Data.CitationsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load citations: %w", err)
	}

	metrics.SetIndexSize(index.Len(), index.ItemCount())
	c.logger.Info().
		Str("source", c.cfg.Data.Source).
		Int("authors", index.Len()).
		Int("items", index.ItemCount()).
		Msg("citation index loaded")

	return index, nil
}

func (c *cli) loadSnapshot(ctx context.Context) (*citations.Index, error) {
	snap, err := citations.OpenSnapshot(c.cfg.Data.SnapshotDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := snap.Close(); cerr != nil {
			c.logger.Error().Err(cerr).Msg("error closing snapshot")
		}
	}()

	return snap.Load(ctx)
}

func (c *cli) openStore() (*storage.Store, error) {
	store, err := storage.NewStore(c.cfg.Models.Dir)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	return store, nil
}

// loadOracle loads one model from the store and wraps it with metrics.
func (c *cli) loadOracle(ctx context.Context, store *storage.Store, kind, name string, version int) (oracle.Oracle, error) {
	o, meta, err := oracle.Load(ctx, store, kind, name, version)
	if err != nil {
		return nil, fmt.Errorf("load %s model %q: %w", kind, name, err)
	}

	c.logger.Info().
		Str("kind", kind).
		Str("name", meta.Name).
		Int("version", meta.Version).
		Time("trained_at", meta.TrainedAt).
		Msg("model loaded")

	return oracle.Instrumented(o), nil
}

// newRecommender loads the index and both models.
func (c *cli) newRecommender(ctx context.Context) (*recommend.Recommender, error) {
	index, err := c.loadIndex(ctx)
	if err != nil {
		return nil, err
	}

	store, err := c.openStore()
	if err != nil {
		return nil, err
	}

	models := c.cfg.Models
	knn, err := c.loadOracle(ctx, store, oracle.KindKNN, models.KNNName, models.KNNVersion)
	if err != nil {
		return nil, err
	}
	mf, err := c.loadOracle(ctx, store, oracle.KindMF, models.MFName, models.MFVersion)
	if err != nil {
		return nil, err
	}

	return recommend.New(index, knn, mf, recommend.WithLogger(logging.WithComponent("recommend"))), nil
}
