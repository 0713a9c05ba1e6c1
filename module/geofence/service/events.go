package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/hgvtools/geofence/module/geofence/domain"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/storage"
)

// maxEvents caps the log by insertion order: once full, the oldest entry is
// dropped for every new append.
const maxEvents = 50

// EventService is the append-only geofence event log, newest first.
type EventService struct {
	mu      sync.RWMutex
	storage storage.EventStorage
	logger  *zap.Logger
	events  []domain.Event
}

func NewEventService(ctx context.Context, st storage.EventStorage, logger *zap.Logger) (*EventService, error) {
	events, err := st.LoadEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	return &EventService{storage: st, logger: logger, events: events}, nil
}

// Append prepends the event and truncates to the cap. The new list is
// persisted before the in-memory view changes, so a storage failure leaves
// the log exactly as it was.
func (s *EventService) Append(ctx context.Context, e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.Event, 0, len(s.events)+1)
	next = append(next, e)
	next = append(next, s.events...)
	if len(next) > maxEvents {
		next = next[:maxEvents]
	}

	if err := s.storage.SaveEvents(ctx, next); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	s.events = next

	s.logger.Debug("geofence event appended",
		zap.String("event_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("zone", e.ZoneName),
	)
	return nil
}

// List returns up to limit events, newest first. A non-positive limit
// returns the whole retained log.
func (s *EventService) List(ctx context.Context, limit int) []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.events)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Event, n)
	copy(out, s.events[:n])
	return out
}

// Clear empties the log unconditionally; asking the user first is the UI's
// job.
func (s *EventService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveEvents(ctx, []domain.Event{}); err != nil {
		return fmt.Errorf("persist events: %w", err)
	}
	s.events = nil
	s.logger.Info("geofence event log cleared")
	return nil
}
