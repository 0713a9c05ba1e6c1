package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hgvtools/geofence/module/geofence/domain"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/notifier"
)

// advanceCooldown suppresses repeat advance warnings per zone.
const advanceCooldown = 60 * time.Second

// sampleSource delivers position samples into the Monitor while started.
type sampleSource interface {
	Start() error
	Stop() error
}

type MonitorStatus struct {
	Active       bool
	EnabledZones int
}

// Monitor evaluates each incoming position sample against every enabled zone,
// flips the per-zone inside/outside status, records transition events and
// dispatches notifications.
//
// Arrival estimates for advance warnings assume straight-line travel at the
// current speed toward the zone center. That is a known approximation; no
// heading or routing is considered.
type Monitor struct {
	zones    *ZoneService
	events   eventRecorder
	notifier notifier.Notifier
	tracker  *Tracker
	logger   *zap.Logger

	mu          sync.Mutex
	source      sampleSource
	active      bool
	cooldownTTL time.Duration
	cooldowns   map[string]*time.Timer
}

func NewMonitor(zones *ZoneService, events eventRecorder, n notifier.Notifier, tracker *Tracker, logger *zap.Logger) *Monitor {
	return &Monitor{
		zones:       zones,
		events:      events,
		notifier:    n,
		tracker:     tracker,
		logger:      logger,
		cooldownTTL: advanceCooldown,
		cooldowns:   make(map[string]*time.Timer),
	}
}

// AttachSource wires the sample source controlled by Start/Stop. It is
// separate from the constructor because the source (an MQTT subscriber)
// needs the Monitor to push samples into.
func (m *Monitor) AttachSource(src sampleSource) {
	m.mu.Lock()
	m.source = src
	m.mu.Unlock()
}

// Start begins sample delivery. Starting an active monitor is a no-op, so a
// double start never creates duplicate subscriptions.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return nil
	}
	if m.source != nil {
		if err := m.source.Start(); err != nil {
			return fmt.Errorf("start source: %w", err)
		}
	}
	m.active = true
	m.logger.Info("geofence monitoring started")
	return nil
}

// Stop halts sample delivery and cancels pending advance cooldown timers.
// Zone statuses keep their last computed value, so resuming continues from
// known state instead of re-triggering first-sample classification.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.active {
		return nil
	}
	var err error
	if m.source != nil {
		err = m.source.Stop()
	}
	for id, timer := range m.cooldowns {
		timer.Stop()
		delete(m.cooldowns, id)
	}
	m.active = false
	m.logger.Info("geofence monitoring stopped")
	return err
}

func (m *Monitor) Status() MonitorStatus {
	m.mu.Lock()
	active := m.active
	m.mu.Unlock()
	return MonitorStatus{Active: active, EnabledZones: m.zones.EnabledCount()}
}

// Evaluate runs one monitoring cycle for the given sample. Samples are
// expected strictly sequentially; the engine keeps only the latest fix and
// the derived per-zone status, never a sample history.
func (m *Monitor) Evaluate(ctx context.Context, sample domain.Position) error {
	m.tracker.Update(sample)

	for _, zone := range m.zones.enabledSnapshot() {
		distance := Distance(sample.Coordinate, zone.Center)
		isInside := distance <= float64(zone.RadiusMeters)

		if err := m.applyTransition(ctx, &zone, distance, isInside); err != nil {
			return err
		}

		if !isInside && zone.AutoNotify && zone.NotifyMinutesBefore > 0 {
			m.checkAdvance(ctx, &zone, distance, sample.SpeedMPS)
		}
	}
	return nil
}

// HandleSourceError is called when the GPS collaborator reports an error
// instead of a sample. The cycle is skipped and no zone status changes;
// retrying is the source's business, not ours.
func (m *Monitor) HandleSourceError(err error) {
	m.logger.Warn("gps source error, skipping cycle", zap.Error(err))
}

func (m *Monitor) applyTransition(ctx context.Context, zone *domain.Zone, distance float64, isInside bool) error {
	switch {
	case zone.LastStatus == domain.StatusUnknown:
		// First classification is silent: a vehicle that starts out inside
		// a zone has not "entered" it.
		status := domain.StatusOutside
		if isInside {
			status = domain.StatusInside
		}
		m.zones.setLastStatus(zone.ID, status)

	case zone.LastStatus == domain.StatusOutside && isInside:
		m.zones.setLastStatus(zone.ID, domain.StatusInside)
		if err := m.recordTransition(ctx, zone, domain.EventEntered, distance); err != nil {
			return err
		}
		m.notifyTransition(ctx, zone, fmt.Sprintf("Entered %s", zone.Name))

	case zone.LastStatus == domain.StatusInside && !isInside:
		m.zones.setLastStatus(zone.ID, domain.StatusOutside)
		if err := m.recordTransition(ctx, zone, domain.EventExited, distance); err != nil {
			return err
		}
		m.notifyTransition(ctx, zone, fmt.Sprintf("Left %s", zone.Name))
	}
	return nil
}

func (m *Monitor) recordTransition(ctx context.Context, zone *domain.Zone, typ domain.EventType, distance float64) error {
	event := domain.NewTransitionEvent(zone, typ, math.Round(distance))
	if err := m.events.Append(ctx, event); err != nil {
		return fmt.Errorf("record %s event: %w", typ, err)
	}
	m.logger.Info("zone transition",
		zap.String("zone_id", zone.ID),
		zap.String("zone", zone.Name),
		zap.String("type", string(typ)),
		zap.Float64("distance_meters", math.Round(distance)),
	)
	return nil
}

// checkAdvance fires a predictive warning when the estimated arrival falls in
// the (NotifyMinutesBefore-1, NotifyMinutesBefore] window, then arms a
// per-zone cooldown so the warning does not repeat on every sample.
func (m *Monitor) checkAdvance(ctx context.Context, zone *domain.Zone, distance float64, speedMPS *float64) {
	if speedMPS == nil || *speedMPS <= 0 {
		return
	}

	minutesToReach := distance / *speedMPS / 60
	window := float64(zone.NotifyMinutesBefore)
	if minutesToReach > window || minutesToReach <= window-1 {
		return
	}

	m.mu.Lock()
	if _, coolingDown := m.cooldowns[zone.ID]; coolingDown {
		m.mu.Unlock()
		return
	}
	m.cooldowns[zone.ID] = time.AfterFunc(m.cooldownTTL, func() {
		m.mu.Lock()
		delete(m.cooldowns, zone.ID)
		m.mu.Unlock()
	})
	m.mu.Unlock()

	minutes := int(math.Round(minutesToReach))
	unit := "minutes"
	if minutes == 1 {
		unit = "minute"
	}
	m.dispatch(ctx, zone, fmt.Sprintf("Approaching %s in %d %s", zone.Name, minutes, unit))

	m.logger.Info("advance notification",
		zap.String("zone_id", zone.ID),
		zap.String("zone", zone.Name),
		zap.Int("minutes", minutes),
	)
}

// notifyTransition routes an enter/exit message. Zones without auto-notify
// still get a default on-screen message so a transition is never silent.
func (m *Monitor) notifyTransition(ctx context.Context, zone *domain.Zone, message string) {
	if !zone.AutoNotify {
		m.showMessage(ctx, message, styleFor(zone.Category))
		return
	}
	m.dispatch(ctx, zone, message)
}

func (m *Monitor) dispatch(ctx context.Context, zone *domain.Zone, message string) {
	style := styleFor(zone.Category)

	switch zone.NotificationMethod {
	case domain.MethodSound:
		m.playTone(ctx)
	case domain.MethodBoth:
		m.showMessage(ctx, message, style)
		m.playTone(ctx)
	case domain.MethodSMS:
		m.showMessage(ctx, message+"\n\nSMS notification: please send manually to "+zone.NotifyParty.Phone, style)
	case domain.MethodEmail:
		m.showMessage(ctx, message+"\n\nEmail notification: please send manually to "+zone.NotifyParty.Email, style)
	default:
		m.showMessage(ctx, message, style)
	}
}

func (m *Monitor) showMessage(ctx context.Context, text, style string) {
	if err := m.notifier.ShowMessage(ctx, text, style); err != nil {
		m.logger.Warn("show message failed", zap.Error(err))
	}
}

func (m *Monitor) playTone(ctx context.Context) {
	if err := m.notifier.PlayTone(ctx); err != nil {
		m.logger.Warn("play tone failed", zap.Error(err))
	}
}

func styleFor(category domain.Category) string {
	if category == domain.CategoryRestricted {
		return "warning"
	}
	return "success"
}
