// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package oracle

import (
	"context"
	"time"

	"github.com/tomtom215/citewise/internal/metrics"
)

type instrumented struct {
	next Oracle
}

// Instrumented wraps o so that every estimate is counted and timed.
// Results and errors pass through unchanged.
func Instrumented(o Oracle) Oracle {
	return instrumented{next: o}
}

func (i instrumented) Name() string {
	return i.next.Name()
}

func (i instrumented) Estimate(ctx context.Context, author, item string) (float64, error) {
	start := time.Now()
	score, err := i.next.Estimate(ctx, author, item)
	metrics.RecordOracleEstimate(i.next.Name(), time.Since(start), err)
	return score, err
}
