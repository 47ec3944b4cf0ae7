// Citewise - Article Recommendations from Citation History
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/citewise

// Package storage persists fitted oracle parameters.
//
// Each model version is one file, {name}_v{version}.gob.gz, holding gob-encoded
// metadata plus the gzip-compressed gob encoding of the model state. A SHA-256
// checksum of the uncompressed state is verified on every load.
//
// Versions are monotonically increasing per model name. Loading version 0
// selects the latest version.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrModelNotFound is returned when no stored version matches a request.
var ErrModelNotFound = errors.New("model not found")

const modelFileSuffix = ".gob.gz"

// ModelMetadata contains information about a stored model.
type ModelMetadata struct {
	// Name is the model name (e.g., "knn", "mf").
	Name string `json:"name"`

	// Kind is the model family: "knn" or "mf".
	Kind string `json:"kind"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the exported parameters were fitted.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the model was written to the store.
	SavedAt time.Time `json:"saved_at"`

	AuthorCount int `json:"author_count"`
	ItemCount   int `json:"item_count"`
	RatingCount int `json:"rating_count"`

	// Checksum is the SHA-256 checksum of the uncompressed model data.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed model size in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// Store manages model persistence.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name
	versions map[string]int
}

// NewStore creates a model store rooted at baseDir, creating the directory
// if needed, and indexes the versions already present.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, fmt.Errorf("scan existing models: %w", err)
	}

	return s, nil
}

// Dir returns the store's base directory.
func (s *Store) Dir() string {
	return s.baseDir
}

// scanModels records the latest version of every model file in baseDir.
func (s *Store) scanModels() error {
	found, err := s.listVersions()
	if err != nil {
		return err
	}

	for name, versions := range found {
		s.versions[name] = versions[0]
	}
	return nil
}

// listVersions returns every stored version per model name, newest first.
func (s *Store) listVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	found := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), modelFileSuffix) {
			continue
		}

		name, version := parseModelFilename(strings.TrimSuffix(entry.Name(), modelFileSuffix))
		if name == "" {
			continue
		}
		found[name] = append(found[name], version)
	}

	for name := range found {
		sort.Sort(sort.Reverse(sort.IntSlice(found[name])))
	}
	return found, nil
}

// parseModelFilename splits "knn_v3" into ("knn", 3).
func parseModelFilename(name string) (modelName string, version int) {
	idx := strings.LastIndex(name, "_v")
	if idx <= 0 {
		return "", 0
	}

	if _, err := fmt.Sscanf(name[idx+2:], "%d", &version); err != nil || version <= 0 {
		return "", 0
	}

	return name[:idx], version
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Save stores data as the given version of model name and returns the
// metadata that was written.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, version int, data interface{}, meta ModelMetadata) (*ModelMetadata, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid model name %q", name)
	}
	if version <= 0 {
		return nil, fmt.Errorf("invalid model version %d", version)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()
	meta.Name = name
	meta.Version = version

	f, err := os.Create(s.modelPath(name, version)) //nolint:gosec // filename is built from a validated name
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // write errors surface from Encode

	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(f).Encode(sf); err != nil {
		return nil, fmt.Errorf("write model file: %w", err)
	}

	if current, ok := s.versions[name]; !ok || version > current {
		s.versions[name] = version
	}

	return &meta, nil
}

// Load decodes the given version of model name into target.
// Version 0 loads the latest version.
func (s *Store) Load(ctx context.Context, name string, version int, target interface{}) (*ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
	}

	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // filename is built from a validated name
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s version %d", ErrModelNotFound, name, version)
	}
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("decompress model: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // in-memory reader

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(target); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	return &sf.Metadata, nil
}

// GetLatestVersion returns the latest version number for a model.
func (s *Store) GetLatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// NextVersion returns the version a new save of name should use.
func (s *Store) NextVersion(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.versions[name] + 1
}

// ListModels returns metadata for the latest version of every model, sorted by name.
// Files that cannot be read are skipped.
func (s *Store) ListModels(ctx context.Context) ([]ModelMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	models := make([]ModelMetadata, 0, len(s.versions))
	for name, version := range s.versions {
		meta, err := s.readMetadata(name, version)
		if err != nil {
			continue
		}
		models = append(models, *meta)
	}

	sort.Slice(models, func(i, j int) bool {
		return models[i].Name < models[j].Name
	})

	return models, nil
}

// readMetadata decodes only the metadata of a model file.
func (s *Store) readMetadata(name string, version int) (*ModelMetadata, error) {
	f, err := os.Open(s.modelPath(name, version)) //nolint:gosec // filename is built from a validated name
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, err
	}
	return &sf.Metadata, nil
}

// Prune removes old versions of name, keeping the newest keepVersions (at least 1).
// It returns the versions that were removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	found, err := s.listVersions()
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	versions := found[name]
	if len(versions) <= keepVersions {
		return nil, nil
	}

	var removed []int
	for _, v := range versions[keepVersions:] {
		if err := os.Remove(s.modelPath(name, v)); err != nil {
			return removed, fmt.Errorf("remove %s version %d: %w", name, v, err)
		}
		removed = append(removed, v)
	}

	s.versions[name] = versions[0]
	return removed, nil
}

// modelPath returns the file path for a model version.
func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, modelFileSuffix))
}
