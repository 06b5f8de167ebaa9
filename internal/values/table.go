// Package values holds the in-memory player-value table and the two
// subsystems built around it: the name resolver (exact, override, and fuzzy
// lookup) and the bulk ingestor that refreshes the table from the external
// value source.
package values

import (
	"sort"
	"sync"

	"traderaven/internal/domain"
)

// Table is the in-memory canonical-name to value map that resolution reads on
// the hot path. Only the ingestor replaces its contents; all other access is
// read-only, so a single RWMutex keeps the single-writer discipline honest
// across goroutines.
type Table struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{values: make(map[string]float64)}
}

// Get returns the value stored under the exact canonical name.
func (t *Table) Get(name string) (float64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[name]
	return v, ok
}

// Names returns a sorted snapshot of every canonical name in the table.
// Sorted so that fuzzy matching scans keys in a deterministic order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.values))
	for name := range t.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// ReplaceAll swaps the entire table for a copy of values. Callers guarantee
// values is non-empty; the all-or-nothing policy lives in the ingestor.
func (t *Table) ReplaceAll(values map[string]float64) {
	fresh := make(map[string]float64, len(values))
	for name, v := range values {
		fresh[name] = v
	}
	t.mu.Lock()
	t.values = fresh
	t.mu.Unlock()
}

// Seed merges persisted records into the table without removing existing
// entries. Used once at startup so resolution works before the first bulk
// refresh completes.
func (t *Table) Seed(records []domain.ValueRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		t.values[rec.Name] = rec.Value
	}
}
