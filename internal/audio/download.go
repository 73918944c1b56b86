package audio

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

const defaultBatchSize = 10

// DownloadResult reports the outcome of one audio download.
type DownloadResult struct {
	ID        string
	Success   bool
	LocalPath string
	Error     string
}

// DownloadOne downloads a single audio file by id. An already-downloaded
// entry succeeds without touching the network.
func (m *Manager) DownloadOne(ctx context.Context, id string) DownloadResult {
	m.mu.RLock()
	position, ok := m.index[id]
	var entry translation.AudioEntry
	if ok {
		entry = m.entries[position]
	}
	m.mu.RUnlock()

	if !ok {
		return DownloadResult{ID: id, Error: "unknown audio id"}
	}
	if entry.IsDownloaded {
		return DownloadResult{ID: id, Success: true, LocalPath: entry.LocalPath}
	}
	if entry.RemoteURL == "" {
		return DownloadResult{ID: id, Error: "entry has no remote url"}
	}

	path := m.localPath(id)
	if err := m.fetchFile(ctx, entry.RemoteURL, path); err != nil {
		return DownloadResult{ID: id, Error: err.Error()}
	}

	stat, err := os.Stat(path)
	if err != nil {
		return DownloadResult{ID: id, Error: fmt.Sprintf("os.Stat(%s) > %v", path, err)}
	}
	size := stat.Size()

	m.mu.Lock()
	if position, ok := m.index[id]; ok {
		stored := &m.entries[position]
		stored.IsDownloaded = true
		stored.LocalPath = path
		stored.FileSizeBytes = &size
	}
	m.mu.Unlock()

	return DownloadResult{ID: id, Success: true, LocalPath: path}
}

// DownloadBatch downloads the given ids in sequential chunks of batchSize,
// with bounded concurrency inside a chunk and a pacing delay between chunks.
// One failed download never aborts the batch; every id gets a result.
func (m *Manager) DownloadBatch(ctx context.Context, ids []string, batchSize int) []DownloadResult {
	if batchSize < 1 {
		batchSize = defaultBatchSize
	}

	results := make([]DownloadResult, len(ids))
	for start := 0; start < len(ids); start += batchSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(ids); i++ {
				results[i] = DownloadResult{ID: ids[i], Error: err.Error()}
			}
			return results
		}

		end := min(start+batchSize, len(ids))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = m.DownloadOne(ctx, ids[i])
			}(i)
		}
		wg.Wait()

		if end < len(ids) && m.cfg.BatchDelay > 0 {
			select {
			case <-time.After(m.cfg.BatchDelay):
			case <-ctx.Done():
			}
		}
	}
	return results
}

// DownloadAll downloads every pending entry, high priority first.
func (m *Manager) DownloadAll(ctx context.Context, batchSize int) []DownloadResult {
	return m.DownloadBatch(ctx, m.pendingIDs(), batchSize)
}

func (m *Manager) fetchFile(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(m.cfg.AudioDirectory, 0755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", m.cfg.AudioDirectory, err)
	}

	response, err := m.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return fmt.Errorf("httpClient.Get(%s) > %w", url, err)
	}
	if response.IsError() {
		return fmt.Errorf("download %s: status %d", url, response.StatusCode())
	}

	// Write through a temp file so an interrupted download never leaves a
	// half-written payload that SetEntries would count as downloaded.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, response.Bytes(), 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("os.Rename(%s) > %w", path, err)
	}
	return nil
}
