// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/citewise/internal/citations"
	"github.com/tomtom215/citewise/internal/logging"
	"github.com/tomtom215/citewise/internal/metrics"
	"github.com/tomtom215/citewise/internal/oracle"
)

const (
	// DefaultNumRecs is the default size budget for Recommend.
	DefaultNumRecs = 10

	// DefaultModelNumRecs is the default count for KNNRecommend and MFRecommend.
	DefaultModelNumRecs = 5
)

// Recommender combines a citation index with a KNN and an MF oracle.
type Recommender struct {
	index  *citations.Index
	knn    oracle.Oracle
	mf     oracle.Oracle
	ranker *Ranker
	logger zerolog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithLogger sets the logger used for request logging.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Recommender) {
		r.logger = logger
	}
}

// New creates a Recommender. The index and both oracles are required.
func New(index *citations.Index, knn, mf oracle.Oracle, opts ...Option) *Recommender {
	r := &Recommender{
		index:  index,
		knn:    knn,
		mf:     mf,
		logger: logging.WithComponent("recommend"),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.ranker = NewRanker(r.logger)
	return r
}

// Authors returns every author in the index, sorted.
func (r *Recommender) Authors() []string {
	return r.index.Authors()
}

// Items returns the item universe, sorted.
func (r *Recommender) Items() []string {
	return r.index.Items()
}

// Recommend returns the union of the KNN top numRecs/2 and the MF top
// numRecs/2 among the items author has not cited. The result holds at most
// numRecs items and fewer when the two rankings overlap.
func (r *Recommender) Recommend(ctx context.Context, author string, numRecs int) ([]string, error) {
	start := time.Now()
	logger := r.requestLogger(ctx, metrics.ModeCombined, author)

	items, err := r.recommend(ctx, author, numRecs)
	r.finish(&logger, metrics.ModeCombined, start, items, err)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Recommender) recommend(ctx context.Context, author string, numRecs int) ([]string, error) {
	candidates, err := r.index.UncitedItems(author)
	if err != nil {
		return nil, err
	}
	if numRecs < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, numRecs)
	}

	half := numRecs / 2
	var knnItems, mfItems []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := r.ranker.Rank(gctx, author, r.knn, half, candidates)
		if err != nil {
			return fmt.Errorf("knn ranking: %w", err)
		}
		knnItems = items
		return nil
	})
	g.Go(func() error {
		items, err := r.ranker.Rank(gctx, author, r.mf, half, candidates)
		if err != nil {
			return fmt.Errorf("mf ranking: %w", err)
		}
		mfItems = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return union(knnItems, mfItems), nil
}

// KNNRecommend returns the KNN oracle's top numRecs uncited items.
func (r *Recommender) KNNRecommend(ctx context.Context, author string, numRecs int) ([]string, error) {
	return r.single(ctx, metrics.ModeKNN, r.knn, author, numRecs)
}

// MFRecommend returns the MF oracle's top numRecs uncited items.
func (r *Recommender) MFRecommend(ctx context.Context, author string, numRecs int) ([]string, error) {
	return r.single(ctx, metrics.ModeMF, r.mf, author, numRecs)
}

func (r *Recommender) single(ctx context.Context, mode string, o oracle.Oracle, author string, numRecs int) ([]string, error) {
	start := time.Now()
	logger := r.requestLogger(ctx, mode, author)

	items, err := func() ([]string, error) {
		candidates, err := r.index.UncitedItems(author)
		if err != nil {
			return nil, err
		}
		return r.ranker.Rank(ctx, author, o, numRecs, candidates)
	}()

	r.finish(&logger, mode, start, items, err)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// requestLogger creates a logger with request context fields.
func (r *Recommender) requestLogger(ctx context.Context, mode, author string) zerolog.Logger {
	lc := r.logger.With().
		Str("mode", mode).
		Str("author", author)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		lc = lc.Str("correlation_id", id)
	}
	logger := lc.Logger()

	logger.Debug().Msg("processing recommendation request")
	return logger
}

func (r *Recommender) finish(logger *zerolog.Logger, mode string, start time.Time, items []string, err error) {
	elapsed := time.Since(start)
	outcome := classify(err)
	metrics.RecordRecommendRequest(mode, outcome, elapsed, len(items))

	if outcome == metrics.OutcomeOracleError {
		logger.Error().Err(err).Msg("recommendation failed")
		return
	}
	if err != nil {
		logger.Debug().Err(err).Str("outcome", outcome).Msg("recommendation rejected")
		return
	}
	logger.Debug().
		Int("returned", len(items)).
		Int64("latency_ms", elapsed.Milliseconds()).
		Msg("recommendation complete")
}

func classify(err error) string {
	var oracleErr *OracleError
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrUnknownAuthor):
		return metrics.OutcomeUnknownAuthor
	case errors.As(err, &oracleErr):
		return metrics.OutcomeOracleError
	case errors.Is(err, ErrInvalidCount):
		return metrics.OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeOracleError
	}
}

// union merges two ID-sorted sets into one ID-sorted set.
func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	sort.Strings(out)
	return out
}
