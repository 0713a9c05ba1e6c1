package storage

import (
	"context"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

// The engine persists whole collections, not deltas: each store reads its
// full collection once at startup and rewrites it on every mutation.

type ZoneStorage interface {
	LoadZones(ctx context.Context) ([]domain.Zone, error)
	SaveZones(ctx context.Context, zones []domain.Zone) error
}

type EventStorage interface {
	LoadEvents(ctx context.Context) ([]domain.Event, error)
	SaveEvents(ctx context.Context, events []domain.Event) error
}
