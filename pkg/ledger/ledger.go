// Package ledger accumulates completed tour stops for the current session.
package ledger

import (
	"fmt"
	"sync"

	"snaptour/pkg/model"
)

// Ledger is the ordered record of completed tour stops. Entries are
// deduplicated by landmark name; a retry that resolves to an
// already-recorded landmark does not create a second entry.
type Ledger struct {
	mu    sync.RWMutex
	stops []*model.TourStop
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append adds a completed stop. It is a no-op returning false if a stop with
// the same landmark name is already recorded.
func (l *Ledger) Append(stop *model.TourStop) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.stops {
		if s.Landmark.Name == stop.Landmark.Name {
			return false
		}
	}
	l.stops = append(l.stops, stop)
	return true
}

// SelectByIndex returns the stop at index i. The returned stop is a shared
// view; media resources are not cloned.
func (l *Ledger) SelectByIndex(i int) (*model.TourStop, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if i < 0 || i >= len(l.stops) {
		return nil, fmt.Errorf("ledger index %d out of range [0,%d)", i, len(l.stops))
	}
	return l.stops[i], nil
}

// Len returns the number of recorded stops.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.stops)
}

// Summarize returns the ordered landmark list for display.
func (l *Ledger) Summarize() []model.LandmarkInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.LandmarkInfo, len(l.stops))
	for i, s := range l.stops {
		out[i] = s.Landmark
	}
	return out
}

// Clear releases all owned image resources and truncates the ledger.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.stops {
		s.Image.Release()
	}
	l.stops = nil
}
