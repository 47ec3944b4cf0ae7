// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package oracle defines the scoring capability that recommendations are ranked
// by, together with the two fitted model families Citewise ships with.
//
// An Oracle answers one question: how strongly is an author expected to be drawn
// to an item? Implementations are immutable after construction and safe for
// concurrent use.
//
//   - KNNWithMeans is a user-based neighborhood model that centers ratings on
//     each author's mean.
//   - BiasedMF is a latent-factor model with global, author and item biases.
//
// Neither model is trained here. Fitted parameters are imported from an exported
// JSON document into the model store (see Import) and loaded from it at startup.
package oracle

import (
	"context"
	"errors"
	"math"
)

// Model kinds recorded in the model store.
const (
	KindKNN = "knn"
	KindMF  = "mf"
)

// ErrMalformedModel is returned when fitted parameters are internally inconsistent.
var ErrMalformedModel = errors.New("malformed model")

// Oracle scores (author, item) pairs.
type Oracle interface {
	// Name identifies the oracle in logs, metrics and errors.
	Name() string

	// Estimate returns the affinity of author for item.
	Estimate(ctx context.Context, author, item string) (float64, error)
}

// Func adapts a plain function into an Oracle.
type Func struct {
	ID string
	Fn func(ctx context.Context, author, item string) (float64, error)
}

// Name implements Oracle.
func (f Func) Name() string {
	return f.ID
}

// Estimate implements Oracle.
func (f Func) Estimate(ctx context.Context, author, item string) (float64, error) {
	return f.Fn(ctx, author, item)
}

// RatingScale is the closed interval estimates are clipped to.
type RatingScale struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// validate checks the scale is finite and ordered.
func (r RatingScale) validate() error {
	if !finite(r.Min) || !finite(r.Max) || r.Min > r.Max {
		return errors.New("rating scale must be finite with min <= max")
	}
	return nil
}

// clip bounds est to the scale.
func (r RatingScale) clip(est float64) float64 {
	return math.Max(r.Min, math.Min(r.Max, est))
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
