package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SourceRepository defines operations for managing remote source configs.
// Lookups on an unknown id return (nil, nil) so administrative callers can
// degrade gracefully instead of handling faults.
type SourceRepository interface {
	FindAll(ctx context.Context) ([]Source, error)
	FindByID(ctx context.Context, id string) (*Source, error)
	FindActive(ctx context.Context, kind Kind) ([]Source, error)
	Add(ctx context.Context, source *Source) error
	Update(ctx context.Context, id string, patch Patch) (*Source, error)
	Remove(ctx context.Context, id string) (bool, error)
	Toggle(ctx context.Context, id string) (*Source, error)
}

// DBSourceRepository implements SourceRepository using SQLite.
type DBSourceRepository struct {
	db *sqlx.DB
}

// NewDBSourceRepository creates a new DBSourceRepository.
func NewDBSourceRepository(db *sqlx.DB) *DBSourceRepository {
	return &DBSourceRepository{db: db}
}

// FindAll returns every registered source ordered by priority.
func (r *DBSourceRepository) FindAll(ctx context.Context) ([]Source, error) {
	var all []Source
	if err := r.db.SelectContext(ctx, &all, "SELECT * FROM remote_sources ORDER BY priority, id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(remote_sources) > %w", err)
	}
	return all, nil
}

// FindByID returns a source by id, or nil if not found.
func (r *DBSourceRepository) FindByID(ctx context.Context, id string) (*Source, error) {
	var source Source
	err := r.db.GetContext(ctx, &source, "SELECT * FROM remote_sources WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(remote_source) > %w", err)
	}
	return &source, nil
}

// FindActive returns the active sources serving a kind, ascending by
// priority. This order decides which source wins when the same logical entry
// could come from several sources.
func (r *DBSourceRepository) FindActive(ctx context.Context, kind Kind) ([]Source, error) {
	var active []Source
	err := r.db.SelectContext(ctx, &active,
		"SELECT * FROM remote_sources WHERE is_active = 1 AND kind IN (?, ?) ORDER BY priority, id",
		kind, KindMixed)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(active remote_sources) > %w", err)
	}
	return active, nil
}

// Add inserts a source, assigning it the lowest priority (max existing + 1)
// unless one was set explicitly.
func (r *DBSourceRepository) Add(ctx context.Context, source *Source) error {
	if source.Priority == 0 {
		var maxPriority sql.NullInt64
		if err := r.db.GetContext(ctx, &maxPriority, "SELECT MAX(priority) FROM remote_sources"); err != nil {
			return fmt.Errorf("db.GetContext(max priority) > %w", err)
		}
		source.Priority = int(maxPriority.Int64) + 1
	}
	if source.Config == "" {
		source.Config = "default"
	}
	if source.Split == "" {
		source.Split = "train"
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO remote_sources (id, name, dataset, config, split, kind, is_active, priority)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		source.ID, source.Name, source.Dataset, source.Config, source.Split, source.Kind, source.IsActive, source.Priority)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert remote_source) > %w", err)
	}
	return nil
}

// Update applies the non-nil fields of patch to a source and returns the
// updated row, or nil if the id is unknown.
func (r *DBSourceRepository) Update(ctx context.Context, id string, patch Patch) (*Source, error) {
	source, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("FindByID(%s) > %w", id, err)
	}
	if source == nil {
		return nil, nil
	}

	if patch.Name != nil {
		source.Name = *patch.Name
	}
	if patch.Dataset != nil {
		source.Dataset = *patch.Dataset
	}
	if patch.Config != nil {
		source.Config = *patch.Config
	}
	if patch.Split != nil {
		source.Split = *patch.Split
	}
	if patch.Kind != nil {
		source.Kind = *patch.Kind
	}
	if patch.IsActive != nil {
		source.IsActive = *patch.IsActive
	}
	if patch.Priority != nil {
		source.Priority = *patch.Priority
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE remote_sources
		SET name = ?, dataset = ?, config = ?, split = ?, kind = ?, is_active = ?, priority = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		source.Name, source.Dataset, source.Config, source.Split, source.Kind, source.IsActive, source.Priority, id)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext(update remote_source) > %w", err)
	}
	return source, nil
}

// Remove deletes a source and reports whether it existed.
func (r *DBSourceRepository) Remove(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM remote_sources WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("db.ExecContext(delete remote_source) > %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return affected > 0, nil
}

// Toggle flips a source's active flag and returns the updated row, or nil if
// the id is unknown.
func (r *DBSourceRepository) Toggle(ctx context.Context, id string) (*Source, error) {
	source, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("FindByID(%s) > %w", id, err)
	}
	if source == nil {
		return nil, nil
	}

	active := !source.IsActive
	return r.Update(ctx, id, Patch{IsActive: &active})
}

// DefaultSources are the sources a fresh installation starts with.
var DefaultSources = []Source{
	{
		ID:       "wayuu-spa-dict",
		Name:     "Wayuu-Spanish dictionary",
		Dataset:  "Gaxys/wayuu_CO_dict",
		Config:   "default",
		Split:    "train",
		Kind:     KindDictionary,
		IsActive: true,
		Priority: 1,
	},
	{
		ID:       "wayuu-audio",
		Name:     "Wayuu audio corpus",
		Dataset:  "Gaxys/wayuu_CO_audio",
		Config:   "default",
		Split:    "train",
		Kind:     KindAudio,
		IsActive: true,
		Priority: 2,
	},
}

// Seed inserts the default sources when the registry is empty so a fresh
// install can sync immediately.
func (r *DBSourceRepository) Seed(ctx context.Context) error {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM remote_sources"); err != nil {
		return fmt.Errorf("db.GetContext(count remote_sources) > %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, source := range DefaultSources {
		if err := r.Add(ctx, &source); err != nil {
			return fmt.Errorf("Add(%s) > %w", source.ID, err)
		}
	}
	return nil
}
