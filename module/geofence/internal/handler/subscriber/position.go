package subscriber

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/hgvtools/geofence/module/geofence/domain"
)

const (
	positionTopic = "/hgv/vehicle/+/position"
	gpsErrorTopic = "/hgv/vehicle/+/gps_error"
)

type monitorService interface {
	Evaluate(ctx context.Context, sample domain.Position) error
	HandleSourceError(err error)
}

type positionMessage struct {
	VehicleID string   `json:"vehicle_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	SpeedMPS  *float64 `json:"speed_mps,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type gpsErrorMessage struct {
	VehicleID string `json:"vehicle_id"`
	Code      int    `json:"code"`
	Message   string `json:"message"`
}

// PositionSubscriber is the GPS source collaborator: it turns the MQTT
// position stream into Monitor evaluation cycles, and source-reported errors
// into skipped cycles. Start and Stop are driven by the Monitor.
type PositionSubscriber struct {
	client  mqtt.Client
	monitor monitorService
	logger  *zap.Logger
}

func NewPositionSubscriber(client mqtt.Client, monitor monitorService, logger *zap.Logger) *PositionSubscriber {
	return &PositionSubscriber{client: client, monitor: monitor, logger: logger}
}

func (s *PositionSubscriber) Start() error {
	if token := s.client.Subscribe(positionTopic, 1, s.handlePosition); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	if token := s.client.Subscribe(gpsErrorTopic, 1, s.handleGPSError); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (s *PositionSubscriber) Stop() error {
	token := s.client.Unsubscribe(positionTopic, gpsErrorTopic)
	token.Wait()
	return token.Error()
}

func (s *PositionSubscriber) handlePosition(_ mqtt.Client, msg mqtt.Message) {
	var raw positionMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid position message", zap.Error(err))
		return
	}

	if err := validatePositionMessage(&raw); err != nil {
		s.logger.Warn("position message rejected", zap.Error(err))
		return
	}

	sample := domain.Position{
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		SpeedMPS:   raw.SpeedMPS,
		Timestamp:  time.Unix(raw.Timestamp, 0),
	}

	if err := s.monitor.Evaluate(context.Background(), sample); err != nil {
		s.logger.Error("monitor evaluation failed", zap.Error(err))
	}
}

func (s *PositionSubscriber) handleGPSError(_ mqtt.Client, msg mqtt.Message) {
	var raw gpsErrorMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.logger.Warn("invalid gps error message", zap.Error(err))
		return
	}
	s.monitor.HandleSourceError(fmt.Errorf("gps source error %d: %s", raw.Code, raw.Message))
}

func validatePositionMessage(msg *positionMessage) error {
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	if msg.SpeedMPS != nil && *msg.SpeedMPS < 0 {
		return fmt.Errorf("speed_mps: must not be negative")
	}
	return nil
}
