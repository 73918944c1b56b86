// Package audio manages the audio asset lifecycle: indexing, paginated
// listing, transcription search, duration enrichment and prioritized batch
// downloads of the payloads referenced by the dataset.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"resty.dev/v3"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

const (
	maxPageSize    = 100
	maxSearchLimit = 50
)

// Config controls where audio payloads and the duration cache live.
type Config struct {
	// AudioDirectory holds one file per downloaded audio id.
	AudioDirectory string
	// DurationsFile is the JSON duration cache maintained by the
	// transcription pipeline; it may be absent.
	DurationsFile string
	// BatchDelay is slept between download chunks to respect remote rate
	// limits.
	BatchDelay time.Duration
}

// Manager owns the audio working set. Entries are replaced wholesale via
// SetEntries; only the download routine mutates the download-state fields.
type Manager struct {
	cfg        Config
	httpClient *resty.Client

	mu      sync.RWMutex
	entries []translation.AudioEntry
	index   map[string]int
}

// NewManager creates a Manager for the given directories.
func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:        cfg,
		httpClient: resty.New(),
		index:      make(map[string]int),
	}
}

func (m *Manager) Close() error {
	return m.httpClient.Close()
}

func (m *Manager) localPath(id string) string {
	return filepath.Join(m.cfg.AudioDirectory, id+".wav")
}

// SetEntries replaces the working set and reconciles each entry's download
// state against the files actually on disk, so the audio directory stays
// authoritative across restarts.
func (m *Manager) SetEntries(entries []translation.AudioEntry) {
	indexed := make([]translation.AudioEntry, len(entries))
	copy(indexed, entries)
	index := make(map[string]int, len(indexed))

	for i := range indexed {
		entry := &indexed[i]
		index[entry.ID] = i

		path := m.localPath(entry.ID)
		stat, err := os.Stat(path)
		if err != nil {
			entry.IsDownloaded = false
			entry.LocalPath = ""
			entry.FileSizeBytes = nil
			continue
		}
		size := stat.Size()
		entry.IsDownloaded = true
		entry.LocalPath = path
		entry.FileSizeBytes = &size
	}

	m.mu.Lock()
	m.entries = indexed
	m.index = index
	m.mu.Unlock()
}

// List returns one page of the audio index plus the page actually served.
// page is 1-based and clamped to at least 1; pageSize is clamped into
// [1, 100]. Callers must report the returned page, not the requested one.
func (m *Manager) List(page, pageSize int) ([]translation.AudioEntry, int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	total := len(m.entries)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= total {
		return nil, page, total, totalPages
	}
	end := min(start+pageSize, total)

	pageEntries := make([]translation.AudioEntry, end-start)
	copy(pageEntries, m.entries[start:end])
	return pageEntries, page, total, totalPages
}

// SearchByTranscription returns entries whose transcription contains the
// query, case-insensitively, plus the total match count. The limit is
// clamped into [1, 50].
func (m *Manager) SearchByTranscription(query string, limit int) ([]translation.AudioEntry, int) {
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	needle := strings.ToLower(strings.TrimSpace(query))

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []translation.AudioEntry
	count := 0
	for _, entry := range m.entries {
		if !strings.Contains(strings.ToLower(entry.Transcription), needle) {
			continue
		}
		count++
		if len(matches) < limit {
			matches = append(matches, entry)
		}
	}
	return matches, count
}

// Stats summarizes the download state of the working set.
type Stats struct {
	TotalEntries   int
	Downloaded     int
	Pending        int
	TotalSizeBytes int64
}

// DownloadStats reports how much of the audio corpus is available locally.
func (m *Manager) DownloadStats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{TotalEntries: len(m.entries)}
	for _, entry := range m.entries {
		if !entry.IsDownloaded {
			stats.Pending++
			continue
		}
		stats.Downloaded++
		if entry.FileSizeBytes != nil {
			stats.TotalSizeBytes += *entry.FileSizeBytes
		}
	}
	return stats
}

// ClearDownloaded deletes every locally downloaded file and resets the
// download state on all entries. The dataset caches are not touched.
func (m *Manager) ClearDownloaded() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for i := range m.entries {
		entry := &m.entries[i]
		if !entry.IsDownloaded {
			continue
		}
		path := entry.LocalPath
		if path == "" {
			path = m.localPath(entry.ID)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("os.Remove(%s) > %w", path, err)
		}
		entry.IsDownloaded = false
		entry.LocalPath = ""
		entry.FileSizeBytes = nil
		removed++
	}
	return removed, nil
}

// pendingIDs returns the not-yet-downloaded entry ids ordered by download
// priority (high first), keeping original dataset order within a tier.
func (m *Manager) pendingIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type pending struct {
		id   string
		rank int
		pos  int
	}
	var queue []pending
	for i, entry := range m.entries {
		if entry.IsDownloaded {
			continue
		}
		queue = append(queue, pending{id: entry.ID, rank: entry.DownloadPriority.Rank(), pos: i})
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].rank != queue[j].rank {
			return queue[i].rank < queue[j].rank
		}
		return queue[i].pos < queue[j].pos
	})

	ids := make([]string, len(queue))
	for i, item := range queue {
		ids[i] = item.id
	}
	return ids
}
