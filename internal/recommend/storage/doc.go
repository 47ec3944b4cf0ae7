// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package storage persists trained oracle models on disk.
//
// Models are imported from the training pipeline's export format, converted to
// their Go representation and saved here so later runs load them without
// re-parsing.
//
// # Storage Format
//
//	filename: {model_name}_v{version}.gob.gz
//
//	structure (gob-encoded):
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip-compressed gob-encoded model state)
//
// Metadata carries a SHA-256 checksum of the uncompressed payload which Load
// verifies before decoding into the caller's target.
//
// # Usage Example
//
//	store, err := storage.NewStore("data/models")
//	if err != nil {
//	    return err
//	}
//
//	meta, err := store.Save(ctx, "knn", store.NextVersion("knn"), state, storage.ModelMetadata{
//	    Kind: "knn",
//	})
//
//	var state knnState
//	meta, err = store.Load(ctx, "knn", 0, &state) // 0 loads the latest version
//
//	removed, err := store.Prune(ctx, "knn", 3)
//
// # Thread Safety
//
// Store is safe for concurrent use. Save and Prune take an exclusive lock;
// Load and ListModels share a read lock.
package storage
