package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	manager := NewManager(Config{
		AudioDirectory: filepath.Join(dir, "audio"),
		DurationsFile:  filepath.Join(dir, "durations.json"),
	})
	t.Cleanup(func() {
		require.NoError(t, manager.Close())
	})
	return manager
}

func testEntries(count int) []translation.AudioEntry {
	entries := make([]translation.AudioEntry, count)
	for i := range entries {
		entries[i] = translation.AudioEntry{
			ID:               fmt.Sprintf("audio_%03d", i),
			Transcription:    fmt.Sprintf("transcription %d", i),
			DurationSeconds:  1,
			DownloadPriority: translation.PriorityMedium,
		}
	}
	return entries
}

func TestManager_SetEntriesReconcilesDiskState(t *testing.T) {
	manager := newTestManager(t)

	require.NoError(t, os.MkdirAll(manager.cfg.AudioDirectory, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(manager.cfg.AudioDirectory, "audio_001.wav"), []byte("payload"), 0644))

	manager.SetEntries([]translation.AudioEntry{
		{ID: "audio_000", Transcription: "anasü", IsDownloaded: true},
		{ID: "audio_001", Transcription: "kasa pünülia"},
	})

	stats := manager.DownloadStats()
	assert.Equal(t, 2, stats.TotalEntries)
	assert.Equal(t, 1, stats.Downloaded)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, int64(len("payload")), stats.TotalSizeBytes)

	entries, _, _, _ := manager.List(1, 10)
	require.Len(t, entries, 2)
	// The stale downloaded flag was corrected against the directory.
	assert.False(t, entries[0].IsDownloaded)
	assert.True(t, entries[1].IsDownloaded)
	assert.NotEmpty(t, entries[1].LocalPath)
}

func TestManager_List(t *testing.T) {
	manager := newTestManager(t)
	manager.SetEntries(testEntries(250))

	tests := []struct {
		name           string
		page           int
		pageSize       int
		wantPage       int
		wantLen        int
		wantFirstID    string
		wantTotalPages int
	}{
		{
			name:           "first page",
			page:           1,
			pageSize:       50,
			wantPage:       1,
			wantLen:        50,
			wantFirstID:    "audio_000",
			wantTotalPages: 5,
		},
		{
			name:           "middle page",
			page:           2,
			pageSize:       100,
			wantPage:       2,
			wantLen:        100,
			wantFirstID:    "audio_100",
			wantTotalPages: 3,
		},
		{
			name:           "last partial page",
			page:           3,
			pageSize:       100,
			wantPage:       3,
			wantLen:        50,
			wantFirstID:    "audio_200",
			wantTotalPages: 3,
		},
		{
			name:           "page and size are clamped",
			page:           0,
			pageSize:       1000,
			wantPage:       1,
			wantLen:        100,
			wantFirstID:    "audio_000",
			wantTotalPages: 3,
		},
		{
			name:           "page past the end is empty",
			page:           9,
			pageSize:       100,
			wantPage:       9,
			wantLen:        0,
			wantTotalPages: 3,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			entries, page, total, totalPages := manager.List(tc.page, tc.pageSize)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, 250, total)
			assert.Equal(t, tc.wantTotalPages, totalPages)
			assert.Len(t, entries, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirstID, entries[0].ID)
			}
		})
	}
}

func TestManager_SearchByTranscription(t *testing.T) {
	manager := newTestManager(t)
	manager.SetEntries([]translation.AudioEntry{
		{ID: "audio_000", Transcription: "Anasü wayuu"},
		{ID: "audio_001", Transcription: "kasa pünülia"},
		{ID: "audio_002", Transcription: "anasü süpüla"},
	})

	matches, total := manager.SearchByTranscription("ANASÜ", 10)
	assert.Equal(t, 2, total)
	require.Len(t, matches, 2)
	assert.Equal(t, "audio_000", matches[0].ID)
	assert.Equal(t, "audio_002", matches[1].ID)

	// The limit caps results but not the reported match count.
	matches, total = manager.SearchByTranscription("anasü", 1)
	assert.Equal(t, 2, total)
	assert.Len(t, matches, 1)

	matches, total = manager.SearchByTranscription("missing", 10)
	assert.Equal(t, 0, total)
	assert.Empty(t, matches)
}

func TestManager_EnrichWithDurations(t *testing.T) {
	manager := newTestManager(t)

	durations := map[string]DurationRecord{
		"audio_000": {DurationSeconds: 3.5, Calculated: true},
		"audio_001": {DurationSeconds: 0, Calculated: true, Error: "decode failed"},
	}
	data, err := json.Marshal(durations)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(manager.cfg.DurationsFile, data, 0644))

	entries := []translation.AudioEntry{
		{ID: "audio_000", DurationSeconds: 1},
		{ID: "audio_001", DurationSeconds: 2},
		{ID: "audio_002", DurationSeconds: 4},
	}
	enriched, err := manager.EnrichWithDurations(entries)
	require.NoError(t, err)
	require.Len(t, enriched, 3)

	assert.True(t, enriched[0].Calculated)
	assert.Equal(t, 3.5, enriched[0].DurationSeconds)

	// A record with an error keeps the dataset duration.
	assert.False(t, enriched[1].Calculated)
	assert.Equal(t, 2.0, enriched[1].DurationSeconds)

	// A missing record is not an error.
	assert.False(t, enriched[2].Calculated)
	assert.Equal(t, 4.0, enriched[2].DurationSeconds)
}

func TestManager_EnrichWithDurations_MissingFile(t *testing.T) {
	manager := newTestManager(t)

	enriched, err := manager.EnrichWithDurations(testEntries(2))
	require.NoError(t, err)
	require.Len(t, enriched, 2)
	assert.False(t, enriched[0].Calculated)
}

func newAudioServer(t *testing.T, failingIDs map[string]bool) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := filepath.Base(r.URL.Path)
		if failingIDs[id] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("RIFF" + id))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestManager_DownloadBatchToleratesFailures(t *testing.T) {
	server := newAudioServer(t, map[string]bool{"audio_002": true})
	manager := newTestManager(t)

	entries := testEntries(5)
	for i := range entries {
		entries[i].RemoteURL = server.URL + "/" + entries[i].ID
	}
	manager.SetEntries(entries)

	ids := []string{"audio_000", "audio_001", "audio_002", "audio_003", "audio_004"}
	results := manager.DownloadBatch(context.Background(), ids, 2)
	require.Len(t, results, 5)

	succeeded := 0
	for _, result := range results {
		if result.ID == "audio_002" {
			assert.False(t, result.Success)
			assert.Contains(t, result.Error, "status 404")
			continue
		}
		assert.True(t, result.Success, result.ID)
		assert.FileExists(t, result.LocalPath)
		succeeded++
	}
	assert.Equal(t, 4, succeeded)

	stats := manager.DownloadStats()
	assert.Equal(t, 4, stats.Downloaded)
	assert.Equal(t, 1, stats.Pending)
}

func TestManager_DownloadOne(t *testing.T) {
	server := newAudioServer(t, nil)
	manager := newTestManager(t)

	entries := testEntries(1)
	entries[0].RemoteURL = server.URL + "/" + entries[0].ID
	manager.SetEntries(entries)

	result := manager.DownloadOne(context.Background(), "audio_000")
	require.True(t, result.Success)
	assert.FileExists(t, result.LocalPath)

	// A second download is a no-op success.
	again := manager.DownloadOne(context.Background(), "audio_000")
	assert.True(t, again.Success)
	assert.Equal(t, result.LocalPath, again.LocalPath)

	unknown := manager.DownloadOne(context.Background(), "audio_999")
	assert.False(t, unknown.Success)
	assert.Equal(t, "unknown audio id", unknown.Error)
}

func TestManager_DownloadAllOrdersByPriority(t *testing.T) {
	var mu sync.Mutex
	var order []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		order = append(order, filepath.Base(r.URL.Path))
		mu.Unlock()
		_, _ = w.Write([]byte("RIFF"))
	}))
	t.Cleanup(server.Close)

	manager := newTestManager(t)
	entries := []translation.AudioEntry{
		{ID: "audio_000", Transcription: "a", DownloadPriority: translation.PriorityLow},
		{ID: "audio_001", Transcription: "b", DownloadPriority: translation.PriorityHigh},
		{ID: "audio_002", Transcription: "c", DownloadPriority: translation.PriorityMedium},
	}
	for i := range entries {
		entries[i].RemoteURL = server.URL + "/" + entries[i].ID
	}
	manager.SetEntries(entries)

	// Batch size 1 keeps the requests sequential so the order is observable.
	results := manager.DownloadAll(context.Background(), 1)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"audio_001", "audio_002", "audio_000"}, order)
}

func TestManager_ClearDownloaded(t *testing.T) {
	server := newAudioServer(t, nil)
	manager := newTestManager(t)

	entries := testEntries(3)
	for i := range entries {
		entries[i].RemoteURL = server.URL + "/" + entries[i].ID
	}
	manager.SetEntries(entries)

	results := manager.DownloadAll(context.Background(), 10)
	require.Len(t, results, 3)

	removed, err := manager.ClearDownloaded()
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	stats := manager.DownloadStats()
	assert.Equal(t, 0, stats.Downloaded)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, int64(0), stats.TotalSizeBytes)

	dirEntries, err := os.ReadDir(manager.cfg.AudioDirectory)
	require.NoError(t, err)
	assert.Empty(t, dirEntries)
}
