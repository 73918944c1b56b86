// Package cache persists fetched datasets to disk together with integrity
// metadata, and loads them back with checksum verification.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

// ErrNotFound is returned when a dataset has no usable cache on disk. A
// checksum mismatch or a missing companion file is reported the same way as
// an absent cache, so callers always fall through to a re-fetch.
var ErrNotFound = errors.New("cache entry not found")

// Store reads and writes dataset caches under a root directory. Each dataset
// is a data file plus a sibling metadata file; the metadata is only written
// after the data write succeeded.
type Store struct {
	rootDir string
}

// NewStore creates a Store rooted at cacheDirectory. The directory is
// created on first save.
func NewStore(cacheDirectory string) *Store {
	return &Store{rootDir: cacheDirectory}
}

func (s *Store) dataPath(dataset translation.Dataset) string {
	return filepath.Join(s.rootDir, string(dataset)+".json")
}

func (s *Store) metaPath(dataset translation.Dataset) string {
	return filepath.Join(s.rootDir, string(dataset)+".meta.json")
}

// Checksum returns the hex sha256 digest of the serialized record bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveDictionary writes the dictionary entries and their metadata. The
// metadata checksum is replaced with the digest of the bytes actually
// written, so a later load can verify the file it reads; the final metadata
// is returned.
func (s *Store) SaveDictionary(entries []translation.DictionaryEntry, meta translation.CacheMetadata) (translation.CacheMetadata, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return meta, fmt.Errorf("json.Marshal(dictionary entries) > %w", err)
	}
	meta.Checksum = Checksum(data)
	meta.TotalEntries = len(entries)
	if err := s.save(translation.DatasetDictionary, data, meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LoadDictionary reads the dictionary cache back, verifying its checksum.
func (s *Store) LoadDictionary() ([]translation.DictionaryEntry, translation.CacheMetadata, error) {
	var meta translation.CacheMetadata
	data, err := s.load(translation.DatasetDictionary, &meta)
	if err != nil {
		return nil, meta, err
	}
	if Checksum(data) != meta.Checksum {
		return nil, meta, ErrNotFound
	}

	var entries []translation.DictionaryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, meta, ErrNotFound
	}
	return entries, meta, nil
}

// SaveAudio writes the audio index and its metadata, including aggregate
// duration figures recomputed from the entries.
func (s *Store) SaveAudio(entries []translation.AudioEntry, meta translation.AudioCacheMetadata) (translation.AudioCacheMetadata, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return meta, fmt.Errorf("json.Marshal(audio entries) > %w", err)
	}
	meta.Checksum = Checksum(data)
	meta.TotalEntries = len(entries)

	var total float64
	for _, entry := range entries {
		total += entry.DurationSeconds
	}
	meta.TotalDurationSeconds = total
	meta.AverageDurationSeconds = 0
	if len(entries) > 0 {
		meta.AverageDurationSeconds = total / float64(len(entries))
	}

	if err := s.save(translation.DatasetAudio, data, meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// LoadAudio reads the audio index back, verifying its checksum.
func (s *Store) LoadAudio() ([]translation.AudioEntry, translation.AudioCacheMetadata, error) {
	var meta translation.AudioCacheMetadata
	data, err := s.load(translation.DatasetAudio, &meta)
	if err != nil {
		return nil, meta, err
	}
	if Checksum(data) != meta.Checksum {
		return nil, meta, ErrNotFound
	}

	var entries []translation.AudioEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, meta, ErrNotFound
	}
	return entries, meta, nil
}

func (s *Store) save(dataset translation.Dataset, data []byte, meta any) error {
	if err := os.MkdirAll(s.rootDir, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", s.rootDir, err)
	}

	// Write data through a temp file so a failure leaves any previous cache
	// files untouched.
	dataPath := s.dataPath(dataset)
	tmpPath := dataPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dataPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Rename(%s) > %w", dataPath, err)
	}

	metaData, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("json.Marshal(metadata) > %w", err)
	}
	if err := os.WriteFile(s.metaPath(dataset), metaData, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", s.metaPath(dataset), err)
	}
	return nil
}

func (s *Store) load(dataset translation.Dataset, meta any) ([]byte, error) {
	metaData, err := os.ReadFile(s.metaPath(dataset))
	if err != nil {
		return nil, ErrNotFound
	}
	if err := json.Unmarshal(metaData, meta); err != nil {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(s.dataPath(dataset))
	if err != nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Clear removes the data and metadata files of a dataset. A dataset that
// was never cached is not an error.
func (s *Store) Clear(dataset translation.Dataset) error {
	for _, path := range []string{s.dataPath(dataset), s.metaPath(dataset)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("os.Remove(%s) > %w", path, err)
		}
	}
	return nil
}

// Info describes the on-disk state of a dataset cache.
type Info struct {
	Exists    bool
	SizeBytes int64
	Metadata  *translation.CacheMetadata
}

// Describe reports whether a dataset cache exists, its size on disk and its
// metadata. A corrupt or partial cache is reported as absent.
func (s *Store) Describe(dataset translation.Dataset) Info {
	var meta translation.CacheMetadata
	switch dataset {
	case translation.DatasetAudio:
		var audioMeta translation.AudioCacheMetadata
		data, err := s.load(dataset, &audioMeta)
		if err != nil || Checksum(data) != audioMeta.Checksum {
			return Info{}
		}
		meta = audioMeta.CacheMetadata
	default:
		data, err := s.load(dataset, &meta)
		if err != nil || Checksum(data) != meta.Checksum {
			return Info{}
		}
	}

	stat, err := os.Stat(s.dataPath(dataset))
	if err != nil {
		return Info{}
	}
	return Info{Exists: true, SizeBytes: stat.Size(), Metadata: &meta}
}
