// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

package citations

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/citewise/internal/logging"
)

// Key prefixes for BadgerDB storage
const (
	authorKeyPrefix = "author:"
	snapshotMetaKey = "meta:snapshot"
)

// ErrEmptySnapshot is returned when loading a snapshot that holds no authors.
var ErrEmptySnapshot = errors.New("snapshot holds no citations")

// SnapshotInfo describes the last import into a Snapshot.
type SnapshotInfo struct {
	Authors    int       `json:"authors"`
	Items      int       `json:"items"`
	Source     string    `json:"source"`
	ImportedAt time.Time `json:"imported_at"`

	// Generation selects the author keys that belong to this import.
	Generation uint64 `json:"generation"`
}

// Snapshot stores the citation relation in BadgerDB. Each author is one key
// ("author:<generation>:<name>") holding a JSON array of cited items. The
// meta key names the live generation, so an import becomes visible only once
// all of its keys are written.
type Snapshot struct {
	db     *badger.DB
	logger zerolog.Logger
}

// OpenSnapshot opens (or creates) a snapshot store in dir.
func OpenSnapshot(dir string) (*Snapshot, error) {
	logger := logging.WithComponent("snapshot")

	opts := badger.DefaultOptions(dir)
	opts.Logger = logging.NewBadgerLogger(logger)
	opts.ValueLogFileSize = 64 << 20
	opts.SyncWrites = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", dir, err)
	}

	return &Snapshot{db: db, logger: logger}, nil
}

// Close releases the underlying database.
func (s *Snapshot) Close() error {
	return s.db.Close()
}

func generationPrefix(gen uint64) []byte {
	return []byte(authorKeyPrefix + strconv.FormatUint(gen, 10) + ":")
}

// Import replaces the stored relation with relation. The relation is validated
// and encoded before anything is written, and the previous import stays live
// until the new one is complete.
func (s *Snapshot) Import(ctx context.Context, relation map[string][]string, source string) (*SnapshotInfo, error) {
	if err := ValidateRelation(relation); err != nil {
		return nil, err
	}

	values := make(map[string][]byte, len(relation))
	items := make(map[string]struct{})
	for author, cited := range relation {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := json.Marshal(cited)
		if err != nil {
			return nil, fmt.Errorf("marshal citations for %q: %w", author, err)
		}
		values[author] = data
		for _, item := range cited {
			items[item] = struct{}{}
		}
	}

	previous, err := s.Info(ctx)
	if errors.Is(err, ErrEmptySnapshot) {
		previous = nil
	} else if err != nil {
		return nil, err
	}

	gen := uint64(1)
	if previous != nil {
		gen = previous.Generation + 1
	}
	prefix := generationPrefix(gen)

	// An earlier import that failed at this generation may have left keys behind.
	if err := s.db.DropPrefix(prefix); err != nil {
		return nil, fmt.Errorf("clear generation %d: %w", gen, err)
	}

	info := &SnapshotInfo{
		Authors:    len(relation),
		Items:      len(items),
		Source:     source,
		ImportedAt: time.Now().UTC(),
		Generation: gen,
	}
	if err := s.commit(ctx, prefix, values, info); err != nil {
		if derr := s.db.DropPrefix(prefix); derr != nil {
			s.logger.Warn().Err(derr).Uint64("generation", gen).Msg("failed to discard incomplete import")
		}
		return nil, err
	}

	if previous != nil {
		if err := s.db.DropPrefix(generationPrefix(previous.Generation)); err != nil {
			s.logger.Warn().Err(err).Uint64("generation", previous.Generation).Msg("failed to drop previous snapshot")
		}
	}

	s.logger.Debug().
		Uint64("generation", gen).
		Int("authors", info.Authors).
		Msg("snapshot generation committed")

	return info, nil
}

// commit writes the author keys under prefix and then points the meta key at
// the new generation.
func (s *Snapshot) commit(ctx context.Context, prefix []byte, values map[string][]byte, info *SnapshotInfo) error {
	meta, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal snapshot info: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for author, data := range values {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := append(append([]byte{}, prefix...), author...)
		if err := wb.Set(key, data); err != nil {
			return fmt.Errorf("set citations for %q: %w", author, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotMetaKey), meta)
	})
	if err != nil {
		return fmt.Errorf("store snapshot info: %w", err)
	}
	return nil
}

// Info returns metadata about the last import.
func (s *Snapshot) Info(ctx context.Context) (*SnapshotInfo, error) {
	var info *SnapshotInfo

	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		info, err = readInfo(txn)
		return err
	})
	if err != nil {
		return nil, err
	}

	return info, nil
}

func readInfo(txn *badger.Txn) (*SnapshotInfo, error) {
	item, err := txn.Get([]byte(snapshotMetaKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrEmptySnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot info: %w", err)
	}

	var info SnapshotInfo
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &info)
	}); err != nil {
		return nil, fmt.Errorf("decode snapshot info: %w", err)
	}
	return &info, nil
}

// scan calls fn for every author key of the live generation. It does nothing
// when no import has completed.
func (s *Snapshot) scan(ctx context.Context, prefetch bool, fn func(author string, item *badger.Item) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		info, err := readInfo(txn)
		if errors.Is(err, ErrEmptySnapshot) {
			return nil
		}
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = prefetch
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := generationPrefix(info.Generation)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			if err := fn(string(item.Key()[len(prefix):]), item); err != nil {
				return err
			}
		}
		return nil
	})
}

// Relation reads the stored relation.
func (s *Snapshot) Relation(ctx context.Context) (map[string][]string, error) {
	relation := make(map[string][]string)

	err := s.scan(ctx, true, func(author string, item *badger.Item) error {
		var cited []string
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cited)
		}); err != nil {
			return fmt.Errorf("decode citations for %q: %w", author, err)
		}
		relation[author] = cited
		return nil
	})
	if err != nil {
		return nil, err
	}

	return relation, nil
}

// Load builds an Index from the stored relation.
func (s *Snapshot) Load(ctx context.Context) (*Index, error) {
	relation, err := s.Relation(ctx)
	if err != nil {
		return nil, err
	}
	if len(relation) == 0 {
		return nil, ErrEmptySnapshot
	}
	if err := ValidateRelation(relation); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	return NewIndex(relation), nil
}

// Count returns the number of stored authors.
func (s *Snapshot) Count(ctx context.Context) (int, error) {
	count := 0

	err := s.scan(ctx, false, func(string, *badger.Item) error {
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count snapshot: %w", err)
	}

	return count, nil
}
