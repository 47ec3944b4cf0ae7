// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/tomtom215/citewise/internal/oracle"
)

// Scored is a candidate item with its oracle score.
type Scored struct {
	Item  string  `json:"item"`
	Score float64 `json:"score"`
}

// Ranker selects the top-scoring candidates for an author under one oracle.
type Ranker struct {
	logger zerolog.Logger
}

// NewRanker creates a ranker that logs through logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRanker(logger zerolog.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// TopN scores every candidate with o and returns the n best, ordered by score
// descending and then by item ID ascending. The first failing estimate aborts
// the ranking with an *OracleError.
func (r *Ranker) TopN(ctx context.Context, author string, o oracle.Oracle, n int, candidates []string) ([]Scored, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	if n == 0 || len(candidates) == 0 {
		return []Scored{}, nil
	}

	scored := make([]Scored, 0, len(candidates))
	for _, item := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score, err := o.Estimate(ctx, author, item)
		if err != nil {
			return nil, &OracleError{Oracle: o.Name(), Author: author, Item: item, Err: err}
		}
		if math.IsNaN(score) || math.IsInf(score, 0) {
			return nil, &OracleError{Oracle: o.Name(), Author: author, Item: item, Err: ErrNonFiniteScore}
		}
		scored = append(scored, Scored{Item: item, Score: score})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Item < scored[j].Item
	})

	if n < len(scored) {
		scored = scored[:n]
	}

	r.logger.Trace().
		Str("oracle", o.Name()).
		Str("author", author).
		Int("candidates", len(candidates)).
		Int("selected", len(scored)).
		Msg("ranked candidates")

	return scored, nil
}

// Rank is TopN with the ranking discarded: it returns the selected items as a
// set sorted by item ID.
func (r *Ranker) Rank(ctx context.Context, author string, o oracle.Oracle, n int, candidates []string) ([]string, error) {
	scored, err := r.TopN(ctx, author, o, n, candidates)
	if err != nil {
		return nil, err
	}

	items := make([]string, len(scored))
	for i, s := range scored {
		items[i] = s.Item
	}
	sort.Strings(items)
	return items, nil
}
