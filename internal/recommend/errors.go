// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/citewise/internal/citations"
)

var (
	// ErrUnknownAuthor is returned when the author is not in the citation index.
	ErrUnknownAuthor = citations.ErrUnknownAuthor

	// ErrInvalidCount is returned for a negative recommendation count.
	ErrInvalidCount = errors.New("recommendation count must not be negative")

	// ErrNonFiniteScore is wrapped in an OracleError when an oracle returns NaN or ±Inf.
	ErrNonFiniteScore = errors.New("non-finite score")
)

// OracleError reports a failed oracle call. Err is the oracle's own error.
type OracleError struct {
	Oracle string
	Author string
	Item   string
	Err    error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle %s: estimate author %q item %q: %v", e.Oracle, e.Author, e.Item, e.Err)
}

func (e *OracleError) Unwrap() error {
	return e.Err
}
