package main

import (
	"context"

	"kuchikomi/pkg/cache"
	"kuchikomi/pkg/config"
	"kuchikomi/pkg/database"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/queue"
	"kuchikomi/pkg/storage"
	"kuchikomi/pkg/tracing"
	boardApp "kuchikomi/services/board/internal/app"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// @title           Kuchikomi Board API
// @version         1.0
// @description     Community photo board for restaurant recommendations with likes, rankings and sponsored posts
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New()
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	// Migrations are handled by goose - see cmd/migrate/main.go

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v (continuing without rate limits)", err)
		redisClient = nil
	}

	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		log.Error("Failed to create blob store: %v", err)
		panic(err)
	}

	var queueClient *queue.Client
	if cfg.RabbitMQHost != "" {
		queueClient, err = queue.NewRabbitMQClient(cfg, log)
		if err != nil {
			log.Error("Failed to connect to RabbitMQ: %v (continuing without queue)", err)
			queueClient = nil
		}
	}

	shutdownTracing, err := tracing.Init(context.Background(), cfg)
	if err != nil {
		log.Error("Failed to init tracing: %v (continuing without traces)", err)
		shutdownTracing = nil
	}

	boardApp.Run(cfg, log, db, store, queueClient, redisClient, shutdownTracing)
}
