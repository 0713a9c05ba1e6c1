package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hgvtools/geofence/module/geofence/domain"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/storage"
)

var (
	_ storage.ZoneStorage  = (*Storage)(nil)
	_ storage.EventStorage = (*Storage)(nil)
)

const (
	zonesKey  = "hgv:geofence:zones"
	eventsKey = "hgv:geofence:events"
)

// Storage keeps each collection as a single JSONB document in a key-value
// table, matching the full-read/full-write persistence contract:
//
//	CREATE TABLE geofence_store (
//	    key        TEXT PRIMARY KEY,
//	    value      JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type Storage struct {
	db *sql.DB
}

func NewStorage(db *sql.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) LoadZones(ctx context.Context) ([]domain.Zone, error) {
	var zones []domain.Zone
	if err := s.load(ctx, zonesKey, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (s *Storage) SaveZones(ctx context.Context, zones []domain.Zone) error {
	return s.save(ctx, zonesKey, zones)
}

func (s *Storage) LoadEvents(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	if err := s.load(ctx, eventsKey, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Storage) SaveEvents(ctx context.Context, events []domain.Event) error {
	return s.save(ctx, eventsKey, events)
}

func (s *Storage) load(ctx context.Context, key string, dest interface{}) error {
	row := s.db.QueryRowContext(ctx,
		`SELECT value FROM geofence_store WHERE key = $1`,
		key,
	)

	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("select %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Storage) save(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO geofence_store (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, raw,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
