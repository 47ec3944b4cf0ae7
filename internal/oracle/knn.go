// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package oracle

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// KNNParams are the fitted parameters of a user-based KNN-with-means model.
// They are gob-encoded in the model store and JSON-decoded on import.
type KNNParams struct {
	// K is the maximum number of neighbors taken into account.
	K int `json:"k"`

	// MinK is the minimum number of contributing neighbors; below it the
	// estimate falls back to the author's mean.
	MinK int `json:"min_k"`

	Scale      RatingScale `json:"rating_scale"`
	GlobalMean float64     `json:"global_mean"`

	// Means holds each author's mean rating.
	Means map[string]float64 `json:"means"`

	// Ratings holds the training ratings, author -> item -> rating.
	Ratings map[string]map[string]float64 `json:"ratings"`

	// Similarities holds the sparse author-author similarity matrix.
	// Missing pairs have similarity 0.
	Similarities map[string]map[string]float64 `json:"similarities"`

	TrainedAt time.Time `json:"trained_at"`
}

// Validate checks the parameters are complete and consistent.
func (p *KNNParams) Validate() error {
	if p.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrMalformedModel, p.K)
	}
	if p.MinK < 0 {
		return fmt.Errorf("%w: min_k must not be negative, got %d", ErrMalformedModel, p.MinK)
	}
	if err := p.Scale.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	if !finite(p.GlobalMean) {
		return fmt.Errorf("%w: global mean is not finite", ErrMalformedModel)
	}
	if len(p.Ratings) == 0 {
		return fmt.Errorf("%w: no ratings", ErrMalformedModel)
	}

	for author, items := range p.Ratings {
		if mean, ok := p.Means[author]; !ok || !finite(mean) {
			return fmt.Errorf("%w: missing mean for %q", ErrMalformedModel, author)
		}
		for item, r := range items {
			if !finite(r) {
				return fmt.Errorf("%w: rating %q/%q is not finite", ErrMalformedModel, author, item)
			}
		}
	}
	for author, row := range p.Similarities {
		for other, sim := range row {
			if !finite(sim) {
				return fmt.Errorf("%w: similarity %q/%q is not finite", ErrMalformedModel, author, other)
			}
		}
	}

	return nil
}

// ratingCount returns the number of stored ratings.
func (p *KNNParams) ratingCount() int {
	n := 0
	for _, items := range p.Ratings {
		n += len(items)
	}
	return n
}

// itemCount returns the number of distinct rated items.
func (p *KNNParams) itemCount() int {
	seen := make(map[string]struct{})
	for _, items := range p.Ratings {
		for item := range items {
			seen[item] = struct{}{}
		}
	}
	return len(seen)
}

// neighbor is an author who rated the target item.
type neighbor struct {
	author     string
	similarity float64
	rating     float64
}

// KNNWithMeans estimates affinity from the mean-centered ratings of the K most
// similar authors who rated the item:
//
//	est(u, i) = mean(u) + Σ sim(u, v)·(r(v, i) − mean(v)) / Σ sim(u, v)
//
// Only neighbors with positive similarity contribute. When fewer than MinK
// contribute the estimate is mean(u). Authors or items the model never saw
// are estimated at the global mean. Estimates are clipped to the rating scale.
type KNNWithMeans struct {
	name   string
	params KNNParams

	// raters is the inverted rating index, item -> authors who rated it.
	raters map[string][]string
}

// NewKNNWithMeans validates params and builds the oracle.
//
//nolint:gocritic // params are copied once at construction
func NewKNNWithMeans(name string, params KNNParams) (*KNNWithMeans, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	raters := make(map[string][]string)
	for author, items := range params.Ratings {
		for item := range items {
			raters[item] = append(raters[item], author)
		}
	}
	for item := range raters {
		sort.Strings(raters[item])
	}

	return &KNNWithMeans{
		name:   name,
		params: params,
		raters: raters,
	}, nil
}

// Name implements Oracle.
func (k *KNNWithMeans) Name() string {
	return k.name
}

// Estimate implements Oracle.
func (k *KNNWithMeans) Estimate(ctx context.Context, author, item string) (float64, error) {
	p := &k.params

	mean, knownAuthor := p.Means[author]
	raters, knownItem := k.raters[item]
	if !knownAuthor || !knownItem {
		return p.Scale.clip(p.GlobalMean), nil
	}

	sims := p.Similarities[author]
	neighbors := make([]neighbor, 0, len(raters))
	for _, other := range raters {
		if other == author {
			continue
		}
		neighbors = append(neighbors, neighbor{
			author:     other,
			similarity: sims[other],
			rating:     p.Ratings[other][item],
		})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].similarity != neighbors[j].similarity {
			return neighbors[i].similarity > neighbors[j].similarity
		}
		return neighbors[i].author < neighbors[j].author
	})
	if len(neighbors) > p.K {
		neighbors = neighbors[:p.K]
	}

	var sumSim, sumRatings float64
	actualK := 0
	for _, n := range neighbors {
		if n.similarity <= 0 {
			continue
		}
		sumSim += n.similarity
		sumRatings += n.similarity * (n.rating - p.Means[n.author])
		actualK++
	}

	est := mean
	if actualK >= p.MinK && sumSim > 0 {
		est += sumRatings / sumSim
	}

	return p.Scale.clip(est), nil
}
