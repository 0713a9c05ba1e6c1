package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/hgvtools/geofence/config"
	"github.com/hgvtools/geofence/module/geofence"
	"github.com/hgvtools/geofence/module/geofence/internal/repository/storage"
	postgresstorage "github.com/hgvtools/geofence/module/geofence/internal/repository/storage/postgres"
	redisstorage "github.com/hgvtools/geofence/module/geofence/internal/repository/storage/redis"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var (
		zoneStorage  storage.ZoneStorage
		eventStorage storage.EventStorage
		redisClient  *redis.Client
		db           *sql.DB
	)

	switch cfg.StorageBackend {
	case "postgres":
		db, err = config.NewPostgres(cfg)
		if err != nil {
			logger.Fatal("postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()

		st := postgresstorage.NewStorage(db)
		zoneStorage, eventStorage = st, st
	default:
		redisClient, err = config.NewRedis(ctx, cfg)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		st := redisstorage.NewStorage(redisClient)
		zoneStorage, eventStorage = st, st
	}

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		logger.Fatal("rabbitmq", zap.Error(err))
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		logger.Fatal("mqtt", zap.Error(err))
	}
	defer mqttClient.Disconnect(250)

	module, err := geofence.Build(ctx, zoneStorage, eventStorage, mqttClient, amqpConn, logger)
	if err != nil {
		logger.Fatal("geofence module", zap.Error(err))
	}

	r := gin.Default()

	health := config.NewHealthChecker(redisClient, db, amqpConn, mqttClient)
	health.Register(r)

	module.RegisterRoutes(&r.RouterGroup)

	logger.Info("listening", zap.String("port", cfg.HTTPPort))
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		logger.Fatal("server", zap.Error(err))
	}
}
