package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"traderaven/internal/domain"
)

// PlayerValueStore implements domain.ValueStore using PostgreSQL. One row per
// canonical player name; upserts refresh the last_updated timestamp, so it is
// monotonically non-decreasing per key. Rows are never deleted.
type PlayerValueStore struct {
	pool *pgxpool.Pool
}

// NewPlayerValueStore creates a PlayerValueStore backed by the given pool.
func NewPlayerValueStore(pool *pgxpool.Pool) *PlayerValueStore {
	return &PlayerValueStore{pool: pool}
}

const upsertQuery = `
	INSERT INTO player_values (player_name, value, last_updated)
	VALUES ($1, $2, NOW())
	ON CONFLICT (player_name) DO UPDATE SET
		value = EXCLUDED.value,
		last_updated = EXCLUDED.last_updated`

// Upsert inserts or overwrites the value for name. Both paths succeed; the
// write is durable when the call returns.
func (s *PlayerValueStore) Upsert(ctx context.Context, name string, value float64) error {
	if _, err := s.pool.Exec(ctx, upsertQuery, name, value); err != nil {
		return fmt.Errorf("postgres: upsert player value %q: %w", name, err)
	}
	return nil
}

// UpsertAll writes every pair through the store using a pgx batch. Names are
// queued in sorted order so failures report a deterministic position.
func (s *PlayerValueStore) UpsertAll(ctx context.Context, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	batch := &pgx.Batch{}
	for _, name := range names {
		batch.Queue(upsertQuery, name, values[name])
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i, name := range names {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("postgres: upsert batch item %d (%q): %w", i, name, err)
		}
	}
	return nil
}

// LoadAll returns every stored value record.
func (s *PlayerValueStore) LoadAll(ctx context.Context) ([]domain.ValueRecord, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT player_name, value, last_updated FROM player_values")
	if err != nil {
		return nil, fmt.Errorf("postgres: load player values: %w", err)
	}
	defer rows.Close()

	var records []domain.ValueRecord
	for rows.Next() {
		var rec domain.ValueRecord
		if err := rows.Scan(&rec.Name, &rec.Value, &rec.LastUpdated); err != nil {
			return nil, fmt.Errorf("postgres: scan player value: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load player values: %w", err)
	}
	return records, nil
}

// FindLike returns stored names containing pattern, case-insensitively.
// Diagnostics helper; not on the resolution hot path.
func (s *PlayerValueStore) FindLike(ctx context.Context, pattern string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT player_name FROM player_values WHERE player_name ILIKE '%' || $1 || '%' ORDER BY player_name",
		pattern)
	if err != nil {
		return nil, fmt.Errorf("postgres: find names like %q: %w", pattern, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("postgres: scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: find names like %q: %w", pattern, err)
	}
	return names, nil
}

// Compile-time interface check.
var _ domain.ValueStore = (*PlayerValueStore)(nil)
