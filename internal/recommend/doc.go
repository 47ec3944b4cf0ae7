// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package recommend turns a citation index and two scoring oracles into
// article recommendations.
//
// # Architecture
//
// A Recommender is an immutable context built once at startup from:
//
//   - a citations.Index (who has cited what, and the universe of items)
//   - a neighborhood oracle (KNN)
//   - a latent-factor oracle (MF)
//
// For an author, the candidate pool is every item in the universe the author
// has not cited. The Ranker asks one oracle to score every candidate, sorts by
// score descending with ties broken by item ID ascending, and keeps the top N.
//
// Recommend runs both rankings with numRecs/2 (floor) each, in parallel, and
// returns the union of the two. Because the union collapses items both oracles
// agree on, the result may be smaller than numRecs. KNNRecommend and
// MFRecommend run a single ranking with the full numRecs.
//
// # Results
//
// Results are sets: duplicate-free and sorted by item ID. Rank order does not
// survive into the result.
//
// # Errors
//
//   - ErrUnknownAuthor: the author is not in the index; nothing is computed.
//   - *OracleError: an oracle call failed; the whole request fails, no
//     fallback score is substituted and nothing is retried.
//   - ErrInvalidCount: numRecs is negative.
//
// # Usage
//
//	rec := recommend.New(index, knn, mf, recommend.WithLogger(logger))
//
//	items, err := rec.Recommend(ctx, "Ada Lovelace", recommend.DefaultNumRecs)
//	if errors.Is(err, recommend.ErrUnknownAuthor) {
//	    // reject the request
//	}
//
// # Thread Safety
//
// A Recommender holds no mutable state; it is safe for concurrent use as long
// as its oracles are.
package recommend
