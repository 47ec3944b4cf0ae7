// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package oracle

import (
	"context"
	"fmt"
	"time"
)

// MFParams are the fitted parameters of a biased matrix factorization model.
type MFParams struct {
	// Factors is the latent dimensionality shared by every vector.
	Factors int `json:"factors"`

	Scale      RatingScale `json:"rating_scale"`
	GlobalMean float64     `json:"global_mean"`

	UserBias map[string]float64 `json:"user_bias"`
	ItemBias map[string]float64 `json:"item_bias"`

	UserFactors map[string][]float64 `json:"user_factors"`
	ItemFactors map[string][]float64 `json:"item_factors"`

	// RatingCount is informational; it is copied into store metadata.
	RatingCount int `json:"rating_count"`

	TrainedAt time.Time `json:"trained_at"`
}

// Validate checks the parameters are complete and consistent.
func (p *MFParams) Validate() error {
	if p.Factors < 1 {
		return fmt.Errorf("%w: factors must be at least 1, got %d", ErrMalformedModel, p.Factors)
	}
	if err := p.Scale.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedModel, err)
	}
	if !finite(p.GlobalMean) {
		return fmt.Errorf("%w: global mean is not finite", ErrMalformedModel)
	}
	if len(p.UserFactors) == 0 || len(p.ItemFactors) == 0 {
		return fmt.Errorf("%w: no latent factors", ErrMalformedModel)
	}

	for _, group := range []struct {
		kind    string
		factors map[string][]float64
		bias    map[string]float64
	}{
		{"user", p.UserFactors, p.UserBias},
		{"item", p.ItemFactors, p.ItemBias},
	} {
		for id, vec := range group.factors {
			if len(vec) != p.Factors {
				return fmt.Errorf("%w: %s %q has %d factors, want %d", ErrMalformedModel, group.kind, id, len(vec), p.Factors)
			}
			for _, x := range vec {
				if !finite(x) {
					return fmt.Errorf("%w: %s %q has a non-finite factor", ErrMalformedModel, group.kind, id)
				}
			}
		}
		for id, b := range group.bias {
			if !finite(b) {
				return fmt.Errorf("%w: %s %q has a non-finite bias", ErrMalformedModel, group.kind, id)
			}
		}
	}

	return nil
}

// BiasedMF estimates affinity as
//
//	est(u, i) = μ + b(u) + b(i) + q(i)·p(u)
//
// An author or item the model never saw contributes no bias and no factor
// term. Estimates are clipped to the rating scale.
type BiasedMF struct {
	name   string
	params MFParams
}

// NewBiasedMF validates params and builds the oracle.
//
//nolint:gocritic // params are copied once at construction
func NewBiasedMF(name string, params MFParams) (*BiasedMF, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &BiasedMF{name: name, params: params}, nil
}

// Name implements Oracle.
func (m *BiasedMF) Name() string {
	return m.name
}

// Estimate implements Oracle.
func (m *BiasedMF) Estimate(ctx context.Context, author, item string) (float64, error) {
	p := &m.params
	est := p.GlobalMean

	pu, knownAuthor := p.UserFactors[author]
	qi, knownItem := p.ItemFactors[item]

	if knownAuthor {
		est += p.UserBias[author]
	}
	if knownItem {
		est += p.ItemBias[item]
	}
	if knownAuthor && knownItem {
		// score = q_i' * p_u
		for f := range pu {
			est += qi[f] * pu[f]
		}
	}

	return p.Scale.clip(est), nil
}
