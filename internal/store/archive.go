package store

import (
	"sync"

	"grid_balance_simulator/internal/model"
)

// Archive holds every tick record of a run. It is never trimmed.
type Archive struct {
	mu      sync.RWMutex
	records []model.TickRecord
}

func NewArchive() *Archive {
	return &Archive{}
}

// Append adds a record to the end of the archive.
func (a *Archive) Append(r model.TickRecord) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, r)
}

// Len returns the number of archived records.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}

// Snapshot returns a copy of all records, safe to analyse while the run continues.
func (a *Archive) Snapshot() []model.TickRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]model.TickRecord, len(a.records))
	copy(out, a.records)
	return out
}

// Reset drops all records.
func (a *Archive) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = nil
}
