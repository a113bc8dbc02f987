package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kuchikomi/pkg/config"
	"kuchikomi/pkg/jwt"
	"kuchikomi/pkg/logger"
	"kuchikomi/pkg/middleware"
	"kuchikomi/pkg/queue"
	"kuchikomi/pkg/storage"
	boardHTTP "kuchikomi/services/board/internal/controller/http"
	"kuchikomi/services/board/internal/repo/persistent"
	"kuchikomi/services/board/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"gorm.io/gorm"

	_ "kuchikomi/services/board/docs" // Swagger docs
)

// Run serves the board until SIGINT or SIGTERM. queueClient and
// redisClient may be nil; ad events are then only stored and rate limits
// are not enforced.
func Run(
	cfg *config.Config,
	log *logger.Logger,
	db *gorm.DB,
	store storage.BlobStore,
	queueClient *queue.Client,
	redisClient *redis.Client,
	shutdownTracing func(context.Context) error,
) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error("Failed to get database handle: %v", err)
		panic(err)
	}

	// Initialize repositories
	userRepo := persistent.NewUserRepository(db)
	postRepo := persistent.NewPostRepository(db)
	likeRepo := persistent.NewLikeRepository(db)
	trackingRepo := persistent.NewTrackingRepository(db)

	var publisher usecase.AdEventPublisher
	if queueClient != nil {
		publisher = queueClient
	}

	// Initialize use cases
	identityUseCase := usecase.NewIdentityUseCase(userRepo, cfg, log)
	postUseCase := usecase.NewPostUseCase(postRepo, likeRepo, store, cfg, log)
	likeUseCase := usecase.NewLikeUseCase(postRepo, likeRepo, log)
	rankingUseCase := usecase.NewRankingUseCase(postRepo, cfg)
	trackingUseCase := usecase.NewTrackingUseCase(postRepo, trackingRepo, publisher, cfg, log)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := identityUseCase.EnsureAdvertiser(startupCtx); err != nil {
		log.Error("Failed to ensure advertiser account: %v", err)
	}
	cancelStartup()

	// Initialize HTTP handlers
	sessions := boardHTTP.NewSessionStore(
		jwt.NewService(cfg.SessionSecret, boardHTTP.SessionTTL),
		cfg.IsProduction(),
		cfg.AdvertiserUserID,
		log,
	)
	handlers := boardHTTP.Handlers{
		Post:     boardHTTP.NewPostHandler(postUseCase, log),
		Admin:    boardHTTP.NewAdminHandler(identityUseCase, postUseCase, log),
		Like:     boardHTTP.NewLikeHandler(likeUseCase, log),
		Ranking:  boardHTTP.NewRankingHandler(rankingUseCase, postUseCase, log),
		Tracking: boardHTTP.NewTrackingHandler(trackingUseCase, log),
		Health:   boardHTTP.NewHealthHandler(sqlDB, log),
	}

	// Setup router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.StorageDriver == "local" {
		r.Static(cfg.UploadURLPrefix, cfg.UploadDir)
	}

	boardHTTP.RegisterRoutes(r, handlers, boardHTTP.IdentityMiddleware(sessions, identityUseCase, log), redisClient)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           otelhttp.NewHandler(r, "kuchikomi"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Board service starting on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Failed to start server: %v", err)
			panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down board service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := sqlDB.Close(); err != nil {
		log.Error("Error closing database: %v", err)
	}

	// Close Redis connection
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis: %v", err)
		}
	}

	// Close RabbitMQ connection once pending ad events are out
	if queueClient != nil {
		if err := trackingUseCase.WaitForPublishes(ctx); err != nil {
			log.Warn("Ad events still publishing at shutdown: %v", err)
		}
		queueClient.Close()
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			log.Error("Error flushing traces: %v", err)
		}
	}

	log.Info("Board service exited")
}
