// Package domain defines the core types shared across the trade-raven
// subsystems: player value records, trade events, fairness verdicts, and the
// store/cache contracts their implementations satisfy.
package domain

import "time"

// ValueRecord is one row of the persistent player-value cache. Name is the
// canonical form under which the value is stored; aliases never reach the
// store.
type ValueRecord struct {
	Name        string
	Value       float64
	LastUpdated time.Time
}
