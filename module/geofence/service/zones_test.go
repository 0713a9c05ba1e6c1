package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

type mockZoneStorage struct {
	loadZonesFn func(ctx context.Context) ([]domain.Zone, error)
	saveZonesFn func(ctx context.Context, zones []domain.Zone) error
}

func (m *mockZoneStorage) LoadZones(ctx context.Context) ([]domain.Zone, error) {
	if m.loadZonesFn != nil {
		return m.loadZonesFn(ctx)
	}
	return nil, nil
}

func (m *mockZoneStorage) SaveZones(ctx context.Context, zones []domain.Zone) error {
	if m.saveZonesFn != nil {
		return m.saveZonesFn(ctx, zones)
	}
	return nil
}

type mockRecorder struct {
	appendFn func(ctx context.Context, e domain.Event) error
	recorded []domain.Event
}

func (m *mockRecorder) Append(ctx context.Context, e domain.Event) error {
	m.recorded = append(m.recorded, e)
	if m.appendFn != nil {
		return m.appendFn(ctx, e)
	}
	return nil
}

type stubTracker struct {
	pos domain.Position
	ok  bool
}

func (s *stubTracker) Current() (domain.Position, bool) {
	return s.pos, s.ok
}

func fixAt(lat, lon float64) *stubTracker {
	return &stubTracker{
		pos: domain.Position{
			Coordinate: domain.Coordinate{Lat: lat, Lon: lon},
			Timestamp:  time.Unix(1715003456, 0),
		},
		ok: true,
	}
}

func newTestZoneService(t *testing.T, st *mockZoneStorage, rec *mockRecorder, tracker positionProvider) *ZoneService {
	t.Helper()
	svc, err := NewZoneService(context.Background(), st, rec, tracker, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func validInput(name string, radius int) CreateZoneInput {
	return CreateZoneInput{
		Name:         name,
		Category:     domain.CategoryDelivery,
		RadiusMeters: radius,
	}
}

func TestCreateZone_Success(t *testing.T) {
	var saved []domain.Zone
	st := &mockZoneStorage{
		saveZonesFn: func(_ context.Context, zones []domain.Zone) error {
			saved = zones
			return nil
		},
	}
	svc := newTestZoneService(t, st, &mockRecorder{}, fixAt(51.5, -0.1))

	zone, err := svc.Create(context.Background(), validInput("Depot A", 250))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.ID == "" {
		t.Error("expected assigned id")
	}
	if zone.Center.Lat != 51.5 || zone.Center.Lon != -0.1 {
		t.Errorf("expected center from current fix, got %v", zone.Center)
	}
	if !zone.Enabled {
		t.Error("expected new zone enabled")
	}
	if zone.LastStatus != domain.StatusUnknown {
		t.Errorf("expected unknown status, got %s", zone.LastStatus)
	}
	if zone.NotificationMethod != domain.MethodAlert {
		t.Errorf("expected default alert method, got %s", zone.NotificationMethod)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 persisted zone, got %d", len(saved))
	}
}

func TestCreateZone_RadiusBounds(t *testing.T) {
	cases := []struct {
		radius int
		ok     bool
	}{
		{5, false},
		{9, false},
		{10, true},
		{5000, true},
		{5001, false},
	}

	for _, tc := range cases {
		svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))
		_, err := svc.Create(context.Background(), validInput("Depot", tc.radius))

		if tc.ok && err != nil {
			t.Errorf("radius %d: unexpected error: %v", tc.radius, err)
		}
		if !tc.ok {
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("radius %d: expected ValidationError, got %v", tc.radius, err)
			}
		}
	}
}

func TestCreateZone_EmptyName(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))

	_, err := svc.Create(context.Background(), validInput("   ", 100))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateZone_NoCurrentFix(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, &stubTracker{})

	_, err := svc.Create(context.Background(), validInput("Depot", 100))
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestCreateZone_PersistFailureLeavesStoreUnchanged(t *testing.T) {
	st := &mockZoneStorage{
		saveZonesFn: func(_ context.Context, _ []domain.Zone) error {
			return errors.New("storage down")
		},
	}
	svc := newTestZoneService(t, st, &mockRecorder{}, fixAt(51.5, -0.1))

	if _, err := svc.Create(context.Background(), validInput("Depot", 100)); err == nil {
		t.Fatal("expected error")
	}
	if len(svc.List(context.Background())) != 0 {
		t.Error("expected no zone committed after persist failure")
	}
}

func TestListZones_CreationOrder(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))

	for _, name := range []string{"first", "second", "third"} {
		if _, err := svc.Create(context.Background(), validInput(name, 100)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	zones := svc.List(context.Background())
	if len(zones) != 3 {
		t.Fatalf("expected 3 zones, got %d", len(zones))
	}
	if zones[0].Name != "first" || zones[2].Name != "third" {
		t.Errorf("expected creation order, got %s..%s", zones[0].Name, zones[2].Name)
	}
}

func TestUpdateZone_MutableFieldsOnly(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))

	created, err := svc.Create(context.Background(), validInput("Depot", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	name := "Depot East"
	radius := 400
	method := domain.MethodBoth
	updated, err := svc.Update(context.Background(), created.ID, UpdateZoneInput{
		Name:               &name,
		RadiusMeters:       &radius,
		NotificationMethod: &method,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Depot East" || updated.RadiusMeters != 400 {
		t.Errorf("expected updated fields, got %s/%d", updated.Name, updated.RadiusMeters)
	}
	if updated.Center != created.Center {
		t.Error("update must not move the zone center")
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must not change id or creation time")
	}
}

func TestUpdateZone_NotFound(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))

	name := "x"
	_, err := svc.Update(context.Background(), "missing", UpdateZoneInput{Name: &name})
	if !errors.Is(err, domain.ErrZoneNotFound) {
		t.Fatalf("expected ErrZoneNotFound, got %v", err)
	}
}

func TestUpdateZone_InvalidRadius(t *testing.T) {
	svc := newTestZoneService(t, &mockZoneStorage{}, &mockRecorder{}, fixAt(51.5, -0.1))

	created, err := svc.Create(context.Background(), validInput("Depot", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	radius := 5001
	_, err = svc.Update(context.Background(), created.ID, UpdateZoneInput{RadiusMeters: &radius})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := svc.Get(context.Background(), created.ID)
	if got.RadiusMeters != 100 {
		t.Errorf("expected radius unchanged, got %d", got.RadiusMeters)
	}
}

func TestSetEnabled_EmitsLifecycleEvents(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTestZoneService(t, &mockZoneStorage{}, rec, fixAt(51.5, -0.1))

	created, err := svc.Create(context.Background(), validInput("Depot", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.SetEnabled(context.Background(), created.ID, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.SetEnabled(context.Background(), created.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.recorded) != 2 {
		t.Fatalf("expected 2 lifecycle events, got %d", len(rec.recorded))
	}
	if rec.recorded[0].Type != domain.EventDisabled || rec.recorded[1].Type != domain.EventEnabled {
		t.Errorf("expected disabled then enabled, got %s then %s", rec.recorded[0].Type, rec.recorded[1].Type)
	}
	if rec.recorded[0].DistanceMeters != nil {
		t.Error("lifecycle events must carry no distance")
	}
}

func TestSetEnabled_SameValueIsNoOp(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTestZoneService(t, &mockZoneStorage{}, rec, fixAt(51.5, -0.1))

	created, err := svc.Create(context.Background(), validInput("Depot", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.SetEnabled(context.Background(), created.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.recorded) != 0 {
		t.Errorf("expected no event for unchanged flag, got %d", len(rec.recorded))
	}
}

func TestDeleteZone_EmitsDeletedEvent(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTestZoneService(t, &mockZoneStorage{}, rec, fixAt(51.5, -0.1))

	created, err := svc.Create(context.Background(), validInput("Depot", 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(svc.List(context.Background())) != 0 {
		t.Error("expected zone removed")
	}
	if len(rec.recorded) != 1 || rec.recorded[0].Type != domain.EventDeleted {
		t.Fatalf("expected a deleted event, got %v", rec.recorded)
	}
}

func TestDeleteZone_AbsentIsNoOp(t *testing.T) {
	rec := &mockRecorder{}
	svc := newTestZoneService(t, &mockZoneStorage{}, rec, fixAt(51.5, -0.1))

	if err := svc.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if len(rec.recorded) != 0 {
		t.Errorf("expected no event, got %d", len(rec.recorded))
	}
}

func TestNewZoneService_ResetsLastStatus(t *testing.T) {
	st := &mockZoneStorage{
		loadZonesFn: func(_ context.Context) ([]domain.Zone, error) {
			return []domain.Zone{{ID: "z1", Name: "Depot", Category: domain.CategoryDepot, RadiusMeters: 100, Enabled: true}}, nil
		},
	}
	svc := newTestZoneService(t, st, &mockRecorder{}, fixAt(51.5, -0.1))

	zones := svc.List(context.Background())
	if len(zones) != 1 {
		t.Fatalf("expected 1 zone, got %d", len(zones))
	}
	if zones[0].LastStatus != domain.StatusUnknown {
		t.Errorf("expected unknown status after load, got %s", zones[0].LastStatus)
	}
}
