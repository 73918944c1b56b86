// Package loader coordinates dataset acquisition: it collapses concurrent
// load requests into a single fetch per dataset, serves cached data while it
// is fresh, and refreshes stale data in the background without blocking
// readers.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/cache"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/sources"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

// Origin records where a working set came from.
type Origin string

const (
	OriginCache  Origin = "cache"
	OriginRemote Origin = "remote"
	OriginSample Origin = "sample"
)

// DictionarySnapshot is an immutable generation of the dictionary working
// set. Readers hold a snapshot; reloads publish a new one wholesale.
type DictionarySnapshot struct {
	Entries  []translation.DictionaryEntry
	Metadata translation.CacheMetadata
	Origin   Origin
	LoadedAt time.Time
}

// AudioSnapshot is an immutable generation of the audio index working set.
type AudioSnapshot struct {
	Entries  []translation.AudioEntry
	Metadata translation.AudioCacheMetadata
	Origin   Origin
	LoadedAt time.Time
}

// Fetcher pulls dataset records from one remote source.
type Fetcher interface {
	FetchDictionary(ctx context.Context, source sources.Source, maxEntries int) ([]translation.DictionaryEntry, int, error)
	FetchAudio(ctx context.Context, source sources.Source, maxEntries int) ([]translation.AudioEntry, int, error)
}

// SourceFinder lists the active sources serving a dataset kind.
type SourceFinder interface {
	FindActive(ctx context.Context, kind sources.Kind) ([]sources.Source, error)
}

// Config controls the Coordinator's staleness policy and fetch caps.
type Config struct {
	// CacheMaxAge is how old a working set may be before a background
	// refresh is scheduled.
	CacheMaxAge time.Duration
	// MaxEntries caps how many records are fetched per dataset; 0 means
	// unlimited.
	MaxEntries int
}

type loadTask struct {
	done  chan struct{}
	dict  *DictionarySnapshot
	audio *AudioSnapshot
	err   error
}

// Coordinator is the sole serialization point for dataset loads. A
// dataset-scoped in-flight task guarantees that the fetcher is invoked at
// most once per dataset at any time; concurrent callers attach to the task
// and observe the same outcome.
type Coordinator struct {
	fetcher  Fetcher
	store    *cache.Store
	registry SourceFinder
	cfg      Config
	clock    func() time.Time

	mu         sync.Mutex
	dict       *DictionarySnapshot
	audio      *AudioSnapshot
	inflight   map[translation.Dataset]*loadTask
	refreshing map[translation.Dataset]bool
	refreshed  sync.WaitGroup
}

// NewCoordinator creates a Coordinator over the given collaborators.
func NewCoordinator(fetcher Fetcher, store *cache.Store, registry SourceFinder, cfg Config) *Coordinator {
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = 24 * time.Hour
	}
	return &Coordinator{
		fetcher:    fetcher,
		store:      store,
		registry:   registry,
		cfg:        cfg,
		clock:      time.Now,
		inflight:   make(map[translation.Dataset]*loadTask),
		refreshing: make(map[translation.Dataset]bool),
	}
}

// Dictionary returns the dictionary working set, loading it on first use.
// A stale working set is returned immediately while a detached background
// refresh runs; the caller is never blocked on a refresh it didn't request.
func (c *Coordinator) Dictionary(ctx context.Context) (*DictionarySnapshot, error) {
	c.mu.Lock()
	if snapshot := c.dict; snapshot != nil {
		if c.clock().Sub(snapshot.LoadedAt) > c.cfg.CacheMaxAge && !c.refreshing[translation.DatasetDictionary] {
			c.refreshing[translation.DatasetDictionary] = true
			c.refreshed.Add(1)
			go c.refreshDictionary()
		}
		c.mu.Unlock()
		return snapshot, nil
	}

	if task, ok := c.inflight[translation.DatasetDictionary]; ok {
		c.mu.Unlock()
		select {
		case <-task.done:
			if task.err != nil {
				// A failed force reload keeps the previous working set.
				c.mu.Lock()
				current := c.dict
				c.mu.Unlock()
				if current != nil {
					return current, nil
				}
			}
			return task.dict, task.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	task := &loadTask{done: make(chan struct{})}
	c.inflight[translation.DatasetDictionary] = task
	c.mu.Unlock()

	snapshot, err := c.loadDictionary(ctx, true)
	c.finishDictionaryTask(task, snapshot, err)
	return snapshot, err
}

// Audio returns the audio index working set, loading it on first use, with
// the same staleness and single-flight behavior as Dictionary.
func (c *Coordinator) Audio(ctx context.Context) (*AudioSnapshot, error) {
	c.mu.Lock()
	if snapshot := c.audio; snapshot != nil {
		if c.clock().Sub(snapshot.LoadedAt) > c.cfg.CacheMaxAge && !c.refreshing[translation.DatasetAudio] {
			c.refreshing[translation.DatasetAudio] = true
			c.refreshed.Add(1)
			go c.refreshAudio()
		}
		c.mu.Unlock()
		return snapshot, nil
	}

	if task, ok := c.inflight[translation.DatasetAudio]; ok {
		c.mu.Unlock()
		select {
		case <-task.done:
			if task.err != nil {
				c.mu.Lock()
				current := c.audio
				c.mu.Unlock()
				if current != nil {
					return current, nil
				}
			}
			return task.audio, task.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	task := &loadTask{done: make(chan struct{})}
	c.inflight[translation.DatasetAudio] = task
	c.mu.Unlock()

	snapshot, err := c.loadAudio(ctx, true)
	c.finishAudioTask(task, snapshot, err)
	return snapshot, err
}

// ForceReload re-fetches a dataset from its remote sources unconditionally.
// With clearCache the on-disk cache is deleted first, so a corrupt cache
// cannot resurrect itself. On failure the current working set is untouched.
func (c *Coordinator) ForceReload(ctx context.Context, dataset translation.Dataset, clearCache bool) error {
	if clearCache {
		if err := c.store.Clear(dataset); err != nil {
			return fmt.Errorf("store.Clear(%s) > %w", dataset, err)
		}
	}

	// A force reload never falls back to sample data: on failure the current
	// working set stays as it is and the error surfaces to the caller.
	switch dataset {
	case translation.DatasetAudio:
		task, err := c.beginTask(ctx, translation.DatasetAudio)
		if err != nil {
			return err
		}

		snapshot, err := c.fetchAudioRemote(ctx)
		c.finishAudioTask(task, snapshot, err)
		if err != nil {
			return fmt.Errorf("fetchAudioRemote() > %w", err)
		}
	default:
		task, err := c.beginTask(ctx, translation.DatasetDictionary)
		if err != nil {
			return err
		}

		snapshot, err := c.fetchDictionaryRemote(ctx)
		c.finishDictionaryTask(task, snapshot, err)
		if err != nil {
			return fmt.Errorf("fetchDictionaryRemote() > %w", err)
		}
	}
	return nil
}

// beginTask installs a new in-flight task for the dataset, waiting out any
// existing one first so at most one acquisition per dataset runs at a time.
func (c *Coordinator) beginTask(ctx context.Context, dataset translation.Dataset) (*loadTask, error) {
	for {
		c.mu.Lock()
		existing, ok := c.inflight[dataset]
		if !ok {
			task := &loadTask{done: make(chan struct{})}
			c.inflight[dataset] = task
			c.mu.Unlock()
			return task, nil
		}
		c.mu.Unlock()

		select {
		case <-existing.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (c *Coordinator) finishDictionaryTask(task *loadTask, snapshot *DictionarySnapshot, err error) {
	c.mu.Lock()
	if c.inflight[translation.DatasetDictionary] == task {
		delete(c.inflight, translation.DatasetDictionary)
	}
	if err == nil {
		c.dict = snapshot
	}
	task.dict = snapshot
	task.err = err
	c.mu.Unlock()
	close(task.done)
}

func (c *Coordinator) finishAudioTask(task *loadTask, snapshot *AudioSnapshot, err error) {
	c.mu.Lock()
	if c.inflight[translation.DatasetAudio] == task {
		delete(c.inflight, translation.DatasetAudio)
	}
	if err == nil {
		c.audio = snapshot
	}
	task.audio = snapshot
	task.err = err
	c.mu.Unlock()
	close(task.done)
}

// refreshDictionary runs detached from any caller: its only side effect is a
// single snapshot swap on success. Failures are logged and discarded.
func (c *Coordinator) refreshDictionary() {
	defer c.refreshed.Done()
	defer func() {
		c.mu.Lock()
		delete(c.refreshing, translation.DatasetDictionary)
		c.mu.Unlock()
	}()

	snapshot, err := c.fetchDictionaryRemote(context.Background())
	if err != nil {
		slog.Default().Warn("background dictionary refresh failed, keeping current working set",
			"error", err)
		return
	}

	c.mu.Lock()
	c.dict = snapshot
	c.mu.Unlock()
	slog.Default().Info("dictionary refreshed in background",
		"entries", len(snapshot.Entries))
}

func (c *Coordinator) refreshAudio() {
	defer c.refreshed.Done()
	defer func() {
		c.mu.Lock()
		delete(c.refreshing, translation.DatasetAudio)
		c.mu.Unlock()
	}()

	snapshot, err := c.fetchAudioRemote(context.Background())
	if err != nil {
		slog.Default().Warn("background audio refresh failed, keeping current working set",
			"error", err)
		return
	}

	c.mu.Lock()
	c.audio = snapshot
	c.mu.Unlock()
	slog.Default().Info("audio index refreshed in background",
		"entries", len(snapshot.Entries))
}

// WaitForRefresh blocks until in-flight background refreshes complete. It
// exists for administrative callers and tests; readers never need it.
func (c *Coordinator) WaitForRefresh() {
	c.refreshed.Wait()
}

func (c *Coordinator) loadDictionary(ctx context.Context, useCache bool) (*DictionarySnapshot, error) {
	if useCache {
		entries, meta, err := c.store.LoadDictionary()
		if err == nil {
			return &DictionarySnapshot{
				Entries:  entries,
				Metadata: meta,
				Origin:   OriginCache,
				LoadedAt: meta.LastUpdated,
			}, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("store.LoadDictionary() > %w", err)
		}
	}

	snapshot, err := c.fetchDictionaryRemote(ctx)
	if err == nil {
		return snapshot, nil
	}

	slog.Default().Warn("dictionary fetch failed, falling back to bundled sample data",
		"error", err)
	entries, sampleErr := sampleDictionary()
	if sampleErr != nil {
		return nil, fmt.Errorf("sampleDictionary() > %w", sampleErr)
	}
	now := c.clock()
	return &DictionarySnapshot{
		Entries: entries,
		Metadata: translation.CacheMetadata{
			LastUpdated:  now,
			TotalEntries: len(entries),
			SourceID:     "bundled-sample",
		},
		Origin:   OriginSample,
		LoadedAt: now,
	}, nil
}

func (c *Coordinator) loadAudio(ctx context.Context, useCache bool) (*AudioSnapshot, error) {
	if useCache {
		entries, meta, err := c.store.LoadAudio()
		if err == nil {
			return &AudioSnapshot{
				Entries:  entries,
				Metadata: meta,
				Origin:   OriginCache,
				LoadedAt: meta.LastUpdated,
			}, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			return nil, fmt.Errorf("store.LoadAudio() > %w", err)
		}
	}

	snapshot, err := c.fetchAudioRemote(ctx)
	if err == nil {
		return snapshot, nil
	}

	// There is no bundled audio corpus; an empty index is the degraded mode.
	slog.Default().Warn("audio fetch failed, serving empty audio index",
		"error", err)
	now := c.clock()
	return &AudioSnapshot{
		Metadata: translation.AudioCacheMetadata{
			CacheMetadata: translation.CacheMetadata{
				LastUpdated: now,
				SourceID:    "none",
			},
		},
		Origin:   OriginSample,
		LoadedAt: now,
	}, nil
}

// fetchDictionaryRemote pulls from every active dictionary source in
// priority order and writes the merged result through to the disk cache.
func (c *Coordinator) fetchDictionaryRemote(ctx context.Context) (*DictionarySnapshot, error) {
	active, err := c.registry.FindActive(ctx, sources.KindDictionary)
	if err != nil {
		return nil, fmt.Errorf("registry.FindActive(dictionary) > %w", err)
	}
	if len(active) == 0 {
		return nil, errors.New("no active dictionary sources")
	}

	var merged []translation.DictionaryEntry
	var firstSource *sources.Source
	var lastErr error
	for _, source := range active {
		entries, reported, err := c.fetcher.FetchDictionary(ctx, source, c.cfg.MaxEntries)
		if err != nil {
			lastErr = err
			slog.Default().Warn("dictionary source fetch failed",
				"source", source.ID,
				"error", err)
			continue
		}
		if firstSource == nil {
			firstSource = &source
		}
		merged = append(merged, entries...)
		slog.Default().Debug("dictionary source fetched",
			"source", source.ID,
			"entries", len(entries),
			"reported_total", reported)
	}
	if len(merged) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("all dictionary sources failed > %w", lastErr)
		}
		return nil, errors.New("active dictionary sources returned no entries")
	}

	now := c.clock()
	meta := translation.CacheMetadata{
		LastUpdated:    now,
		TotalEntries:   len(merged),
		DatasetVersion: firstSource.Dataset,
		SourceID:       firstSource.ID,
	}
	meta, err = c.store.SaveDictionary(merged, meta)
	if err != nil {
		return nil, fmt.Errorf("store.SaveDictionary() > %w", err)
	}

	return &DictionarySnapshot{
		Entries:  merged,
		Metadata: meta,
		Origin:   OriginRemote,
		LoadedAt: now,
	}, nil
}

func (c *Coordinator) fetchAudioRemote(ctx context.Context) (*AudioSnapshot, error) {
	active, err := c.registry.FindActive(ctx, sources.KindAudio)
	if err != nil {
		return nil, fmt.Errorf("registry.FindActive(audio) > %w", err)
	}
	if len(active) == 0 {
		return nil, errors.New("no active audio sources")
	}

	var merged []translation.AudioEntry
	seen := make(map[string]bool)
	var firstSource *sources.Source
	var lastErr error
	for _, source := range active {
		entries, reported, err := c.fetcher.FetchAudio(ctx, source, c.cfg.MaxEntries)
		if err != nil {
			lastErr = err
			slog.Default().Warn("audio source fetch failed",
				"source", source.ID,
				"error", err)
			continue
		}
		if firstSource == nil {
			firstSource = &source
		}
		// Higher-priority sources win on id collisions across sources.
		for _, entry := range entries {
			if seen[entry.ID] {
				continue
			}
			seen[entry.ID] = true
			merged = append(merged, entry)
		}
		slog.Default().Debug("audio source fetched",
			"source", source.ID,
			"entries", len(entries),
			"reported_total", reported)
	}
	if len(merged) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("all audio sources failed > %w", lastErr)
		}
		return nil, errors.New("active audio sources returned no entries")
	}

	now := c.clock()
	meta := translation.AudioCacheMetadata{
		CacheMetadata: translation.CacheMetadata{
			LastUpdated:    now,
			TotalEntries:   len(merged),
			DatasetVersion: firstSource.Dataset,
			SourceID:       firstSource.ID,
		},
	}
	meta, err = c.store.SaveAudio(merged, meta)
	if err != nil {
		return nil, fmt.Errorf("store.SaveAudio() > %w", err)
	}

	return &AudioSnapshot{
		Entries:  merged,
		Metadata: meta,
		Origin:   OriginRemote,
		LoadedAt: now,
	}, nil
}

// DatasetStats describes one dataset's working set for administrative calls.
type DatasetStats struct {
	Loaded   bool
	Entries  int
	Origin   Origin
	LoadedAt time.Time
	Stale    bool
}

// Stats reports the current working sets without triggering any load.
func (c *Coordinator) Stats() map[translation.Dataset]DatasetStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := make(map[translation.Dataset]DatasetStats, 2)
	if c.dict != nil {
		stats[translation.DatasetDictionary] = DatasetStats{
			Loaded:   true,
			Entries:  len(c.dict.Entries),
			Origin:   c.dict.Origin,
			LoadedAt: c.dict.LoadedAt,
			Stale:    c.clock().Sub(c.dict.LoadedAt) > c.cfg.CacheMaxAge,
		}
	} else {
		stats[translation.DatasetDictionary] = DatasetStats{}
	}
	if c.audio != nil {
		stats[translation.DatasetAudio] = DatasetStats{
			Loaded:   true,
			Entries:  len(c.audio.Entries),
			Origin:   c.audio.Origin,
			LoadedAt: c.audio.LoadedAt,
			Stale:    c.clock().Sub(c.audio.LoadedAt) > c.cfg.CacheMaxAge,
		}
	} else {
		stats[translation.DatasetAudio] = DatasetStats{}
	}
	return stats
}
