package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/api"
	"resumeforge/internal/config"
	"resumeforge/internal/database"
	"resumeforge/internal/render"
	"resumeforge/internal/render/pdf"
	"resumeforge/internal/storage"
	"resumeforge/internal/templates"
)

// renderLimitPerMinute 限制每个客户端每分钟的同步渲染次数。
const renderLimitPerMinute = 60

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	log.Printf("database ready")

	catalog, err := templates.LoadCatalog(cfg.Render.CatalogPath)
	if err != nil {
		log.Fatalf("load template catalog: %v", err)
	}
	log.Printf("template catalog loaded, %d templates", len(catalog.Entries()))

	engine := render.NewEngine(catalog,
		pdf.WithCompression(cfg.Render.PDFCompression),
		pdf.WithWatermark(cfg.Render.WatermarkText),
	).WithDefaultTemplate(cfg.Render.DefaultTemplate)

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
	defer asynqClient.Close()

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, api.Dependencies{
		DB:             db,
		Engine:         engine,
		Tasks:          asynqClient,
		Storage:        storageClient,
		Redis:          redisClient,
		Logger:         logger,
		InternalSecret: cfg.API.InternalSecret,
		RenderLimit:    renderLimitPerMinute,
		MaxRetry:       cfg.Worker.MaxRetry,
	})

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("addr", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
