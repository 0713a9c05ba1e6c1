package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

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

type Storage struct {
	client *redis.Client
}

func NewStorage(client *redis.Client) *Storage {
	return &Storage{client: client}
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
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
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
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
