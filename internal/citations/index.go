// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package citations holds the author to cited-item relation that recommendations
// are computed against.
//
// An Index is built once from a fully loaded relation and never mutated afterwards,
// so it can be shared by any number of goroutines without locking. The universe of
// items is the union of every author's citations and is computed at construction.
//
// Relations come from one of two sources:
//   - LoadJSON reads an author_dois.json document ({"author": ["doi", ...]}).
//   - Snapshot keeps the relation in BadgerDB so it survives between runs.
package citations

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownAuthor is returned when an author is not present in the index.
var ErrUnknownAuthor = errors.New("unknown author")

// Index is an immutable author to cited-items mapping.
type Index struct {
	cited    map[string]map[string]struct{}
	authors  []string
	universe []string
}

// NewIndex builds an Index from an author to items mapping. The mapping is
// copied; duplicate references within one author's list collapse.
func NewIndex(relation map[string][]string) *Index {
	idx := &Index{
		cited:   make(map[string]map[string]struct{}, len(relation)),
		authors: make([]string, 0, len(relation)),
	}

	all := make(map[string]struct{})
	for author, items := range relation {
		set := make(map[string]struct{}, len(items))
		for _, item := range items {
			set[item] = struct{}{}
			all[item] = struct{}{}
		}
		idx.cited[author] = set
		idx.authors = append(idx.authors, author)
	}
	sort.Strings(idx.authors)

	idx.universe = make([]string, 0, len(all))
	for item := range all {
		idx.universe = append(idx.universe, item)
	}
	sort.Strings(idx.universe)

	return idx
}

// Contains reports whether author is known to the index.
func (x *Index) Contains(author string) bool {
	_, ok := x.cited[author]
	return ok
}

// CitedItems returns the distinct items author has cited, sorted ascending.
func (x *Index) CitedItems(author string) ([]string, error) {
	set, ok := x.cited[author]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuthor, author)
	}

	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return items, nil
}

// UncitedItems returns the universe minus the items author has cited, sorted
// ascending. This is the candidate pool for ranking.
func (x *Index) UncitedItems(author string) ([]string, error) {
	set, ok := x.cited[author]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAuthor, author)
	}

	items := make([]string, 0, len(x.universe)-len(set))
	for _, item := range x.universe {
		if _, cited := set[item]; !cited {
			items = append(items, item)
		}
	}
	return items, nil
}

// Authors returns every known author, sorted ascending.
func (x *Index) Authors() []string {
	out := make([]string, len(x.authors))
	copy(out, x.authors)
	return out
}

// Items returns the universe of items, sorted ascending.
func (x *Index) Items() []string {
	out := make([]string, len(x.universe))
	copy(out, x.universe)
	return out
}

// Len returns the number of authors.
func (x *Index) Len() int {
	return len(x.authors)
}

// ItemCount returns the size of the universe.
func (x *Index) ItemCount() int {
	return len(x.universe)
}

// Relation returns a copy of the relation as an author to sorted items map.
func (x *Index) Relation() map[string][]string {
	out := make(map[string][]string, len(x.cited))
	for _, author := range x.authors {
		items, _ := x.CitedItems(author) //nolint:errcheck // author comes from the index
		out[author] = items
	}
	return out
}
