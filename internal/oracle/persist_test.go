// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/citewise/internal/recommend/storage"
)

const knnExport = `{
  "k": 2,
  "min_k": 1,
  "rating_scale": {"min": 1, "max": 5},
  "global_mean": 3.5,
  "means": {"u1": 3, "u2": 4, "u3": 2},
  "ratings": {"u1": {"i1": 3}, "u2": {"i1": 4, "i2": 5}, "u3": {"i1": 2, "i2": 1}},
  "similarities": {"u1": {"u2": 0.5, "u3": 0.25}},
  "trained_at": "2024-03-01T00:00:00Z"
}`

const mfExport = `{
  "factors": 2,
  "rating_scale": {"min": 1, "max": 5},
  "global_mean": 3,
  "user_bias": {"a": 0.5},
  "item_bias": {"x": -0.25},
  "user_factors": {"a": [1, 2]},
  "item_factors": {"x": [0.5, 0.25], "y": [2, 2]},
  "rating_count": 42
}`

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func TestImportAndLoad_KNN(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	meta, err := Import(ctx, store, KindKNN, "knn", strings.NewReader(knnExport))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if meta.Version != 1 || meta.Kind != KindKNN {
		t.Errorf("Import() meta = %+v", meta)
	}
	if meta.AuthorCount != 3 || meta.ItemCount != 2 || meta.RatingCount != 5 {
		t.Errorf("Import() counts = %d/%d/%d, want 3/2/5", meta.AuthorCount, meta.ItemCount, meta.RatingCount)
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC); !meta.TrainedAt.Equal(want) {
		t.Errorf("TrainedAt = %v, want %v", meta.TrainedAt, want)
	}

	o, loaded, err := Load(ctx, store, KindKNN, "knn", 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Version != 1 {
		t.Errorf("Load() version = %d, want 1", loaded.Version)
	}
	got, err := o.Estimate(ctx, "u1", "i2")
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if !approxEqual(got, 3+0.25/0.75) {
		t.Errorf("Estimate() = %v, want %v", got, 3+0.25/0.75)
	}
}

func TestImportAndLoad_MF(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := Import(ctx, store, KindMF, "mf", strings.NewReader(mfExport)); err != nil {
			t.Fatalf("Import() error = %v", err)
		}
	}

	o, meta, err := Load(ctx, store, KindMF, "mf", 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if meta.Version != 2 {
		t.Errorf("Load() version = %d, want 2", meta.Version)
	}
	if meta.RatingCount != 42 || meta.AuthorCount != 1 || meta.ItemCount != 2 {
		t.Errorf("Load() meta = %+v", meta)
	}
	if o.Name() != "mf" {
		t.Errorf("Name() = %s, want mf", o.Name())
	}
	got, err := o.Estimate(ctx, "a", "x")
	if err != nil {
		t.Fatalf("Estimate() error = %v", err)
	}
	if !approxEqual(got, 4.25) {
		t.Errorf("Estimate() = %v, want 4.25", got)
	}
}

func TestImport_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    string
		doc     string
		wantErr error
	}{
		{"unknown kind", "svd", mfExport, nil},
		{"malformed json", KindKNN, `{"k":`, nil},
		{"invalid knn", KindKNN, `{"k": 0, "rating_scale": {"min": 1, "max": 5}}`, ErrMalformedModel},
		{"invalid mf", KindMF, `{"factors": 2, "rating_scale": {"min": 1, "max": 5}, "user_factors": {"a": [1]}, "item_factors": {"x": [1, 2]}}`, ErrMalformedModel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore(t)
			_, err := Import(context.Background(), store, tt.kind, "model", strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("Import() expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Import() error = %v, want %v", err, tt.wantErr)
			}
			if _, ok := store.GetLatestVersion("model"); ok {
				t.Error("rejected import must not be stored")
			}
		})
	}
}

func TestLoad_KindMismatch(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if _, err := Import(ctx, store, KindMF, "factors", strings.NewReader(mfExport)); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if _, _, err := Load(ctx, store, KindKNN, "factors", 0); err == nil {
		t.Error("Load() expected kind mismatch error")
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, _, err := Load(context.Background(), store, KindKNN, "knn", 0); !errors.Is(err, storage.ErrModelNotFound) {
		t.Errorf("Load() error = %v, want ErrModelNotFound", err)
	}
}
