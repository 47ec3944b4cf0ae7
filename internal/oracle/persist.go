// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package oracle

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/tomtom215/citewise/internal/recommend/storage"
)

// Load reads the given version of model name from store and builds the
// oracle for kind. Version 0 loads the latest version.
func Load(ctx context.Context, store *storage.Store, kind, name string, version int) (Oracle, *storage.ModelMetadata, error) {
	switch kind {
	case KindKNN:
		var params KNNParams
		meta, err := loadParams(ctx, store, kind, name, version, &params)
		if err != nil {
			return nil, nil, err
		}
		o, err := NewKNNWithMeans(name, params)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s v%d: %w", name, meta.Version, err)
		}
		return o, meta, nil

	case KindMF:
		var params MFParams
		meta, err := loadParams(ctx, store, kind, name, version, &params)
		if err != nil {
			return nil, nil, err
		}
		o, err := NewBiasedMF(name, params)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s v%d: %w", name, meta.Version, err)
		}
		return o, meta, nil

	default:
		return nil, nil, fmt.Errorf("unknown model kind %q", kind)
	}
}

func loadParams(ctx context.Context, store *storage.Store, kind, name string, version int, target interface{}) (*storage.ModelMetadata, error) {
	meta, err := store.Load(ctx, name, version, target)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	if meta.Kind != kind {
		return nil, fmt.Errorf("load %s v%d: stored kind %q, want %q", name, meta.Version, meta.Kind, kind)
	}
	return meta, nil
}

// Import decodes exported parameters of the given kind from r, validates them
// and saves them as the next version of model name.
func Import(ctx context.Context, store *storage.Store, kind, name string, r io.Reader) (*storage.ModelMetadata, error) {
	var (
		data interface{}
		meta storage.ModelMetadata
	)

	switch kind {
	case KindKNN:
		var params KNNParams
		if err := json.NewDecoder(r).Decode(&params); err != nil {
			return nil, fmt.Errorf("decode knn parameters: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		data = params
		meta = storage.ModelMetadata{
			TrainedAt:   params.TrainedAt,
			AuthorCount: len(params.Ratings),
			ItemCount:   params.itemCount(),
			RatingCount: params.ratingCount(),
		}

	case KindMF:
		var params MFParams
		if err := json.NewDecoder(r).Decode(&params); err != nil {
			return nil, fmt.Errorf("decode mf parameters: %w", err)
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}
		data = params
		meta = storage.ModelMetadata{
			TrainedAt:   params.TrainedAt,
			AuthorCount: len(params.UserFactors),
			ItemCount:   len(params.ItemFactors),
			RatingCount: params.RatingCount,
		}

	default:
		return nil, fmt.Errorf("unknown model kind %q", kind)
	}

	meta.Kind = kind
	saved, err := store.Save(ctx, name, store.NextVersion(name), data, meta)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", name, err)
	}
	return saved, nil
}
