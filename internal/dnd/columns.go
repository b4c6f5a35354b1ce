package dnd

import "sync"

// ColumnRect is a day column's on-screen bounding rectangle.
type ColumnRect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// ColumnRegistry maps day indexes to their rectangles. Columns register as
// they mount and deregister with a nil rect; reads mid-drag must tolerate a
// stale or missing entry, which the machine treats as "no valid target".
type ColumnRegistry struct {
	mu   sync.RWMutex
	cols map[int]ColumnRect
}

func NewColumnRegistry() *ColumnRegistry {
	return &ColumnRegistry{cols: make(map[int]ColumnRect)}
}

func (r *ColumnRegistry) Register(dayIndex int, rect *ColumnRect) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rect == nil {
		delete(r.cols, dayIndex)
		return
	}

	r.cols[dayIndex] = *rect
}

func (r *ColumnRegistry) Lookup(dayIndex int) (ColumnRect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rect, ok := r.cols[dayIndex]

	return rect, ok
}
