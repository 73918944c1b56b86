// Package fetcher pulls paginated dataset rows from a remote source with
// partial-failure tolerance: once any rows have been collected, a page-level
// error ends the fetch early instead of failing it.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"

	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/sources"
	"github.com/fredygallego8/wayuu-spanish-translator-sub001/internal/translation"
)

// Config controls paging and pacing of a Client.
type Config struct {
	// Endpoint is the base URL of the datasets rows API.
	Endpoint string
	// PageSize is the number of rows requested per page.
	PageSize int
	// PageDelay is slept between successful pages to avoid hammering the
	// remote source.
	PageDelay time.Duration
	// RetryAttempts is the number of retries per page on retryable errors.
	RetryAttempts uint
}

// Client fetches dataset rows from a paginated rows endpoint.
type Client struct {
	httpClient    *resty.Client
	pageSize      int
	pageDelay     time.Duration
	retryAttempts uint
}

// NewClient creates a Client for the configured endpoint.
func NewClient(cfg Config) *Client {
	client := resty.New()
	client.SetBaseURL(cfg.Endpoint)
	client.SetHeader("Accept", "application/json")

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Client{
		httpClient:    client,
		pageSize:      pageSize,
		pageDelay:     cfg.PageDelay,
		retryAttempts: cfg.RetryAttempts,
	}
}

func (c *Client) Close() error {
	return c.httpClient.Close()
}

type rowsResponse struct {
	Rows []struct {
		RowIdx int             `json:"row_idx"`
		Row    json.RawMessage `json:"row"`
	} `json:"rows"`
	NumRowsTotal int `json:"num_rows_total"`
}

// isRetryableError determines if a page error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	if strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

func (c *Client) fetchPage(ctx context.Context, source sources.Source, offset int) (*rowsResponse, error) {
	var page *rowsResponse
	if err := retry.Do(
		func() error {
			response, err := c.httpClient.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"dataset": source.Dataset,
					"config":  source.Config,
					"split":   source.Split,
					"offset":  fmt.Sprintf("%d", offset),
					"length":  fmt.Sprintf("%d", c.pageSize),
				}).
				SetResult(&rowsResponse{}).
				Get("/rows")
			if err != nil {
				return fmt.Errorf("httpClient.Get > %w", err)
			}
			if response.IsError() {
				err := fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			page = response.Result().(*rowsResponse)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts+1),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	); err != nil {
		return nil, err
	}
	return page, nil
}

// fetchAll walks the pages of a source and hands every raw row to parse.
// It returns the server-reported total and whether the fetch was cut short
// by a page-level error after rows had already been collected.
func (c *Client) fetchAll(ctx context.Context, source sources.Source, maxEntries int, parse func(json.RawMessage) bool) (int, error) {
	offset := 0
	totalReported := 0
	collected := 0

	for {
		page, err := c.fetchPage(ctx, source, offset)
		if err != nil {
			if collected == 0 {
				return 0, fmt.Errorf("fetchPage(offset=%d) > %w", offset, err)
			}
			// Stale-but-present data beats no data: keep what we have.
			slog.Default().Warn("partial dataset fetch, keeping collected rows",
				"source", source.ID,
				"collected", collected,
				"offset", offset,
				"error", err)
			return totalReported, nil
		}

		if totalReported == 0 {
			totalReported = page.NumRowsTotal
		}
		for _, row := range page.Rows {
			if maxEntries > 0 && collected >= maxEntries {
				return totalReported, nil
			}
			if parse(row.Row) {
				collected++
			}
		}

		slog.Default().Debug("fetched dataset page",
			"source", source.ID,
			"offset", offset,
			"rows", len(page.Rows),
			"collected", collected)

		offset += c.pageSize
		if len(page.Rows) < c.pageSize {
			return totalReported, nil
		}
		if maxEntries > 0 && collected >= maxEntries {
			return totalReported, nil
		}
		if totalReported > 0 && offset >= totalReported {
			return totalReported, nil
		}

		if c.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return totalReported, ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}
	}
}

type dictionaryRow struct {
	Guc string `json:"guc"`
	Spa string `json:"es"`
}

// FetchDictionary pulls dictionary rows from a source. Rows missing either
// side of the translation are skipped with a counted warning instead of
// aborting the batch.
func (c *Client) FetchDictionary(ctx context.Context, source sources.Source, maxEntries int) ([]translation.DictionaryEntry, int, error) {
	var entries []translation.DictionaryEntry
	skipped := 0

	total, err := c.fetchAll(ctx, source, maxEntries, func(raw json.RawMessage) bool {
		var row dictionaryRow
		if err := json.Unmarshal(raw, &row); err != nil || row.Guc == "" || row.Spa == "" {
			skipped++
			return false
		}
		entries = append(entries, translation.DictionaryEntry{
			GucWord: row.Guc,
			SpaWord: row.Spa,
		})
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetchAll(%s) > %w", source.ID, err)
	}
	if skipped > 0 {
		slog.Default().Warn("skipped malformed dictionary rows",
			"source", source.ID,
			"skipped", skipped)
	}
	return entries, total, nil
}

type audioRow struct {
	ID              string  `json:"id"`
	Transcription   string  `json:"transcription"`
	DurationSeconds float64 `json:"duration_seconds"`
	Priority        string  `json:"download_priority"`
	Audio           []struct {
		Src string `json:"src"`
	} `json:"audio"`
}

// FetchAudio pulls audio index rows from a source. Entries are unique by id
// within a source; later duplicates are dropped.
func (c *Client) FetchAudio(ctx context.Context, source sources.Source, maxEntries int) ([]translation.AudioEntry, int, error) {
	var entries []translation.AudioEntry
	seen := make(map[string]bool)
	skipped := 0

	total, err := c.fetchAll(ctx, source, maxEntries, func(raw json.RawMessage) bool {
		var row audioRow
		if err := json.Unmarshal(raw, &row); err != nil || row.ID == "" || row.Transcription == "" {
			skipped++
			return false
		}
		if seen[row.ID] {
			skipped++
			return false
		}
		seen[row.ID] = true

		entry := translation.AudioEntry{
			ID:               row.ID,
			Transcription:    row.Transcription,
			DurationSeconds:  row.DurationSeconds,
			DownloadPriority: parsePriority(row.Priority),
			SourceID:         source.ID,
		}
		if len(row.Audio) > 0 {
			entry.RemoteURL = row.Audio[0].Src
		}
		entries = append(entries, entry)
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("fetchAll(%s) > %w", source.ID, err)
	}
	if skipped > 0 {
		slog.Default().Warn("skipped malformed or duplicate audio rows",
			"source", source.ID,
			"skipped", skipped)
	}
	return entries, total, nil
}

func parsePriority(value string) translation.DownloadPriority {
	switch translation.DownloadPriority(value) {
	case translation.PriorityHigh, translation.PriorityMedium, translation.PriorityLow:
		return translation.DownloadPriority(value)
	}
	return translation.PriorityMedium
}
