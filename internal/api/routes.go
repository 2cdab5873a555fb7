package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/render"
)

// objectStore 是 handler 需要的存储能力，*storage.Client 满足该接口。
type objectStore interface {
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
	GeneratePresignedURLWithParams(ctx context.Context, objectKey string, duration time.Duration, params map[string]string) (string, error)
	DeletePrefix(ctx context.Context, prefix string) error
}

// taskEnqueuer is satisfied by *asynq.Client.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dependencies 汇总路由注册所需的外部组件。
type Dependencies struct {
	DB             *gorm.DB
	Engine         *render.Engine
	Tasks          taskEnqueuer
	Storage        objectStore
	Redis          *redis.Client
	Logger         *slog.Logger
	InternalSecret string
	// RenderLimit 是每个客户端每分钟允许的同步渲染次数，0 表示不限制。
	RenderLimit int
	MaxRetry    int
}

// RegisterRoutes 注册 /v1 与 /internal 路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderHandler := NewRenderHandler(deps.Engine)
	templateHandler := NewTemplateHandler(deps.Engine, deps.DB, deps.Tasks, deps.Storage)
	documentHandler := NewDocumentHandler(deps.DB, deps.Engine, deps.Tasks, deps.Storage, deps.MaxRetry)
	wsHandler := NewWsHandler(deps.Redis, logger, nil)

	var limiter gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if deps.Redis != nil && deps.RenderLimit > 0 {
		limiter = RenderRateLimit(deps.Redis, deps.RenderLimit)
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/ws", wsHandler.HandleConnection)

		templateGroup := v1.Group("/templates")
		{
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.GET("/:id", templateHandler.GetTemplate)
			templateGroup.POST("/:id/preview-image", templateHandler.EnqueuePreviewImage)
		}

		renderGroup := v1.Group("/render")
		renderGroup.Use(limiter)
		{
			renderGroup.POST("/preview", renderHandler.Preview)
			renderGroup.POST("/pdf", renderHandler.PDF)
		}

		documentGroup := v1.Group("/documents")
		{
			documentGroup.GET("", documentHandler.ListDocuments)
			documentGroup.POST("", documentHandler.CreateDocument)
			documentGroup.GET("/:id", documentHandler.GetDocument)
			documentGroup.PUT("/:id", documentHandler.UpdateDocument)
			documentGroup.DELETE("/:id", documentHandler.DeleteDocument)
			documentGroup.POST("/:id/export", documentHandler.ExportDocument)
			documentGroup.GET("/:id/download-link", documentHandler.GetDownloadLink)
		}
	}

	internal := router.Group("/internal")
	internal.Use(middleware.InternalSecretMiddleware(deps.InternalSecret))
	{
		internal.GET("/templates/:id/sample", templateHandler.SamplePage)
	}
}
