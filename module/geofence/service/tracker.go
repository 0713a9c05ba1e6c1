package service

import (
	"sync"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

// Tracker holds the most recent GPS fix. Zone creation derives its center
// from it, which is why creating a zone fails until at least one sample has
// arrived.
type Tracker struct {
	mu   sync.RWMutex
	last *domain.Position
}

func NewTracker() *Tracker {
	return &Tracker{}
}

func (t *Tracker) Update(p domain.Position) {
	t.mu.Lock()
	t.last = &p
	t.mu.Unlock()
}

func (t *Tracker) Current() (domain.Position, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.last == nil {
		return domain.Position{}, false
	}
	return *t.last, true
}
