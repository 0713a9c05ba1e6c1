package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hgvtools/geofence/module/geofence/domain"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/storage"
)

type eventRecorder interface {
	Append(ctx context.Context, e domain.Event) error
}

type positionProvider interface {
	Current() (domain.Position, bool)
}

// ZoneService owns the zone collection. Every mutation writes the full
// collection to storage before touching the in-memory view, so callers never
// observe a zone list that diverges from what is persisted.
type ZoneService struct {
	mu      sync.RWMutex
	storage storage.ZoneStorage
	events  eventRecorder
	tracker positionProvider
	logger  *zap.Logger
	zones   []domain.Zone
}

func NewZoneService(ctx context.Context, st storage.ZoneStorage, events eventRecorder, tracker positionProvider, logger *zap.Logger) (*ZoneService, error) {
	zones, err := st.LoadZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	// LastStatus is not persisted; every zone starts the process unknown.
	for i := range zones {
		zones[i].LastStatus = domain.StatusUnknown
	}
	return &ZoneService{storage: st, events: events, tracker: tracker, logger: logger, zones: zones}, nil
}

type CreateZoneInput struct {
	Name                string
	Category            domain.Category
	RadiusMeters        int
	AutoNotify          bool
	NotifyMinutesBefore int
	NotificationMethod  domain.NotificationMethod
	NotifyParty         domain.NotifyParty
}

// UpdateZoneInput carries the editable fields; nil means "leave unchanged".
// Center, id and creation time are immutable.
type UpdateZoneInput struct {
	Name                *string
	RadiusMeters        *int
	AutoNotify          *bool
	NotifyMinutesBefore *int
	NotificationMethod  *domain.NotificationMethod
	NotifyParty         *domain.NotifyParty
}

func (s *ZoneService) Create(ctx context.Context, in CreateZoneInput) (*domain.Zone, error) {
	if in.Category == "" {
		in.Category = domain.CategoryOther
	}
	if in.NotificationMethod == "" {
		in.NotificationMethod = domain.MethodAlert
	}
	if err := validateZoneFields(in.Name, in.RadiusMeters, in.NotifyMinutesBefore, in.Category, in.NotificationMethod); err != nil {
		return nil, err
	}

	fix, ok := s.tracker.Current()
	if !ok {
		return nil, domain.NewValidationError("center", "no current GPS fix to derive the zone center from")
	}

	zone := domain.Zone{
		ID:                  uuid.NewString(),
		Name:                strings.TrimSpace(in.Name),
		Category:            in.Category,
		Center:              fix.Coordinate,
		RadiusMeters:        in.RadiusMeters,
		Enabled:             true,
		CreatedAt:           time.Now().UTC(),
		AutoNotify:          in.AutoNotify,
		NotifyMinutesBefore: in.NotifyMinutesBefore,
		NotificationMethod:  in.NotificationMethod,
		NotifyParty:         in.NotifyParty,
		LastStatus:          domain.StatusUnknown,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(copyZones(s.zones), zone)
	if err := s.storage.SaveZones(ctx, next); err != nil {
		return nil, fmt.Errorf("persist zones: %w", err)
	}
	s.zones = next

	s.logger.Info("zone created",
		zap.String("zone_id", zone.ID),
		zap.String("name", zone.Name),
		zap.Int("radius_meters", zone.RadiusMeters),
	)
	return &zone, nil
}

// List returns zones in creation order.
func (s *ZoneService) List(ctx context.Context) []domain.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyZones(s.zones)
}

func (s *ZoneService) Get(ctx context.Context, id string) (*domain.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.zones {
		if s.zones[i].ID == id {
			z := s.zones[i]
			return &z, nil
		}
	}
	return nil, domain.ErrZoneNotFound
}

func (s *ZoneService) Update(ctx context.Context, id string, in UpdateZoneInput) (*domain.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrZoneNotFound
	}

	next := copyZones(s.zones)
	z := &next[idx]
	if in.Name != nil {
		z.Name = strings.TrimSpace(*in.Name)
	}
	if in.RadiusMeters != nil {
		z.RadiusMeters = *in.RadiusMeters
	}
	if in.AutoNotify != nil {
		z.AutoNotify = *in.AutoNotify
	}
	if in.NotifyMinutesBefore != nil {
		z.NotifyMinutesBefore = *in.NotifyMinutesBefore
	}
	if in.NotificationMethod != nil {
		z.NotificationMethod = *in.NotificationMethod
	}
	if in.NotifyParty != nil {
		z.NotifyParty = *in.NotifyParty
	}

	if err := validateZoneFields(z.Name, z.RadiusMeters, z.NotifyMinutesBefore, z.Category, z.NotificationMethod); err != nil {
		return nil, err
	}

	if err := s.storage.SaveZones(ctx, next); err != nil {
		return nil, fmt.Errorf("persist zones: %w", err)
	}
	s.zones = next

	updated := next[idx]
	s.logger.Info("zone updated", zap.String("zone_id", id))
	return &updated, nil
}

// SetEnabled toggles monitoring for a zone and records the enabled/disabled
// lifecycle event. Setting the flag to its current value is a no-op.
func (s *ZoneService) SetEnabled(ctx context.Context, id string, enabled bool) (*domain.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrZoneNotFound
	}
	if s.zones[idx].Enabled == enabled {
		z := s.zones[idx]
		return &z, nil
	}

	next := copyZones(s.zones)
	next[idx].Enabled = enabled

	if err := s.storage.SaveZones(ctx, next); err != nil {
		return nil, fmt.Errorf("persist zones: %w", err)
	}
	s.zones = next

	z := next[idx]
	typ := domain.EventDisabled
	if enabled {
		typ = domain.EventEnabled
	}
	if err := s.events.Append(ctx, domain.NewLifecycleEvent(&z, typ)); err != nil {
		return nil, err
	}

	s.logger.Info("zone toggled", zap.String("zone_id", id), zap.Bool("enabled", enabled))
	return &z, nil
}

// Delete removes the zone and records the deleted lifecycle event. Deleting
// an unknown id is a no-op; there is no undo.
func (s *ZoneService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil
	}

	deleted := s.zones[idx]
	next := make([]domain.Zone, 0, len(s.zones)-1)
	next = append(next, s.zones[:idx]...)
	next = append(next, s.zones[idx+1:]...)

	if err := s.storage.SaveZones(ctx, next); err != nil {
		return fmt.Errorf("persist zones: %w", err)
	}
	s.zones = next

	if err := s.events.Append(ctx, domain.NewLifecycleEvent(&deleted, domain.EventDeleted)); err != nil {
		return err
	}

	s.logger.Info("zone deleted", zap.String("zone_id", id), zap.String("name", deleted.Name))
	return nil
}

func (s *ZoneService) EnabledCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.zones {
		if s.zones[i].Enabled {
			n++
		}
	}
	return n
}

// enabledSnapshot and setLastStatus exist for the Monitor: status flips are
// transient state and bypass persistence on purpose.
func (s *ZoneService) enabledSnapshot() []domain.Zone {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Zone, 0, len(s.zones))
	for i := range s.zones {
		if s.zones[i].Enabled {
			out = append(out, s.zones[i])
		}
	}
	return out
}

func (s *ZoneService) setLastStatus(id string, status domain.ZoneStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.zones {
		if s.zones[i].ID == id {
			s.zones[i].LastStatus = status
			return
		}
	}
}

func (s *ZoneService) indexOf(id string) int {
	for i := range s.zones {
		if s.zones[i].ID == id {
			return i
		}
	}
	return -1
}

func copyZones(zones []domain.Zone) []domain.Zone {
	out := make([]domain.Zone, len(zones))
	copy(out, zones)
	return out
}

func validateZoneFields(name string, radius, notifyMinutes int, category domain.Category, method domain.NotificationMethod) error {
	if strings.TrimSpace(name) == "" {
		return domain.NewValidationError("name", "must not be empty")
	}
	if radius < domain.MinRadiusMeters || radius > domain.MaxRadiusMeters {
		return domain.NewValidationError("radius_meters",
			fmt.Sprintf("must be between %d and %d", domain.MinRadiusMeters, domain.MaxRadiusMeters))
	}
	if notifyMinutes < 0 {
		return domain.NewValidationError("notify_minutes_before", "must not be negative")
	}
	if !category.Valid() {
		return domain.NewValidationError("category", "unknown category")
	}
	if !method.Valid() {
		return domain.NewValidationError("notification_method", "unknown method")
	}
	return nil
}
