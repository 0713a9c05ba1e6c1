package geofence

import (
	"context"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	handler "github.com/hgvtools/geofence/module/geofence/internal/handler/http"
	"github.com/hgvtools/geofence/module/geofence/internal/handler/subscriber"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/notifier/rabbitmq"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/storage"
	"github.com/hgvtools/geofence/module/geofence/service"
)

type Module struct {
	Zones   *service.ZoneService
	Events  *service.EventService
	Monitor *service.Monitor

	zoneHandler       *handler.ZoneHandler
	eventHandler      *handler.EventHandler
	monitoringHandler *handler.MonitoringHandler
}

func Build(ctx context.Context, zoneStorage storage.ZoneStorage, eventStorage storage.EventStorage, mqttClient mqtt.Client, amqpConn *amqp.Connection, logger *zap.Logger) (*Module, error) {
	notif, err := rabbitmq.NewNotifier(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("notifier: %w", err)
	}

	events, err := service.NewEventService(ctx, eventStorage, logger)
	if err != nil {
		return nil, fmt.Errorf("event service: %w", err)
	}

	tracker := service.NewTracker()

	zones, err := service.NewZoneService(ctx, zoneStorage, events, tracker, logger)
	if err != nil {
		return nil, fmt.Errorf("zone service: %w", err)
	}

	monitor := service.NewMonitor(zones, events, notif, tracker, logger)
	monitor.AttachSource(subscriber.NewPositionSubscriber(mqttClient, monitor, logger))

	return &Module{
		Zones:             zones,
		Events:            events,
		Monitor:           monitor,
		zoneHandler:       handler.NewZoneHandler(zones),
		eventHandler:      handler.NewEventHandler(events),
		monitoringHandler: handler.NewMonitoringHandler(monitor),
	}, nil
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.zoneHandler.Register(r)
	m.eventHandler.Register(r)
	m.monitoringHandler.Register(r)
}
