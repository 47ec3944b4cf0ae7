// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package citations

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Loader errors.
var (
	ErrEmptyCitations = errors.New("author has no citations")
	ErrEmptyAuthor    = errors.New("empty author name")
	ErrEmptyItem      = errors.New("empty item identifier")
)

// LoadJSON reads an author to items document from path and builds an Index.
func LoadJSON(path string) (*Index, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open citations: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	relation, err := DecodeRelation(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return NewIndex(relation), nil
}

// DecodeRelation decodes and validates a {"author": ["item", ...]} document.
func DecodeRelation(r io.Reader) (map[string][]string, error) {
	var relation map[string][]string
	if err := json.NewDecoder(r).Decode(&relation); err != nil {
		return nil, err
	}
	if err := ValidateRelation(relation); err != nil {
		return nil, err
	}
	return relation, nil
}

// ValidateRelation checks the loader invariants: every author name and item
// identifier is non-blank and no author maps to an empty list.
func ValidateRelation(relation map[string][]string) error {
	for author, items := range relation {
		if strings.TrimSpace(author) == "" {
			return ErrEmptyAuthor
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyCitations, author)
		}
		for _, item := range items {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: author %q", ErrEmptyItem, author)
			}
		}
	}
	return nil
}
