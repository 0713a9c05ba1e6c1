package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventEntered  EventType = "entered"
	EventExited   EventType = "exited"
	EventEnabled  EventType = "enabled"
	EventDisabled EventType = "disabled"
	EventDeleted  EventType = "deleted"
)

// Event is an append-only record in the geofence event log. DistanceMeters
// is set for entered/exited transitions and nil for lifecycle events.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	ZoneName       string    `json:"zone_name"`
	ZoneCategory   Category  `json:"zone_category"`
	Timestamp      time.Time `json:"timestamp"`
	DistanceMeters *float64  `json:"distance_meters"`
}

func NewTransitionEvent(zone *Zone, typ EventType, distanceMeters float64) Event {
	return Event{
		ID:             uuid.NewString(),
		Type:           typ,
		ZoneName:       zone.Name,
		ZoneCategory:   zone.Category,
		Timestamp:      time.Now().UTC(),
		DistanceMeters: &distanceMeters,
	}
}

func NewLifecycleEvent(zone *Zone, typ EventType) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         typ,
		ZoneName:     zone.Name,
		ZoneCategory: zone.Category,
		Timestamp:    time.Now().UTC(),
	}
}
