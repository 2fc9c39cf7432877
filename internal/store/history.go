package store

import (
	"sync"

	"grid_balance_simulator/internal/model"
)

// History is the rolling display window: the most recent maxPoints records.
type History struct {
	mu        sync.RWMutex
	maxPoints int
	records   []model.TickRecord
}

func NewHistory(maxPoints int) *History {
	if maxPoints < 1 {
		maxPoints = 1
	}
	return &History{
		maxPoints: maxPoints,
		records:   make([]model.TickRecord, 0, maxPoints),
	}
}

// Append adds a record and evicts the oldest ones beyond the window.
func (h *History) Append(r model.TickRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	if excess := len(h.records) - h.maxPoints; excess > 0 {
		h.records = h.records[excess:]
	}
}

// Len returns the number of records in the window.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// MaxPoints returns the window bound.
func (h *History) MaxPoints() int {
	return h.maxPoints
}

// Window returns a copy of the current window, oldest first.
func (h *History) Window() []model.TickRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]model.TickRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Reset drops all records.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}
