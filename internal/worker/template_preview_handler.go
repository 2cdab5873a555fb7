package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
	"resumeforge/internal/templates"
)

const (
	previewQuality = 80
	previewURLTTL  = 7 * 24 * time.Hour
)

// thumbnailStore is satisfied by *storage.Client.
type thumbnailStore interface {
	objectWriter
	GeneratePresignedURL(ctx context.Context, objectKey string, duration time.Duration) (string, error)
}

// captureFunc 渲染页面并返回 JPEG 截图。
type captureFunc func(ctx context.Context, logger *slog.Logger, targetURL string, headers map[string]string, quality int) ([]byte, error)

// TemplatePreviewHandler 负责模板缩略图生成任务：截图内部示例页并上传到 MinIO。
type TemplatePreviewHandler struct {
	db             *gorm.DB
	catalog        *templates.Catalog
	storage        thumbnailStore
	logger         *slog.Logger
	apiBaseURL     string
	internalSecret string
	capture        captureFunc
}

func NewTemplatePreviewHandler(
	db *gorm.DB,
	catalog *templates.Catalog,
	storageClient thumbnailStore,
	logger *slog.Logger,
	apiBaseURL string,
	internalSecret string,
) *TemplatePreviewHandler {
	return &TemplatePreviewHandler{
		db:             db,
		catalog:        catalog,
		storage:        storageClient,
		logger:         logger,
		apiBaseURL:     strings.TrimRight(strings.TrimSpace(apiBaseURL), "/"),
		internalSecret: internalSecret,
		capture:        captureJPEG,
	}
}

func (h *TemplatePreviewHandler) sampleURL(templateID string) string {
	return fmt.Sprintf("%s/internal/templates/%s/sample", h.apiBaseURL, url.PathEscape(templateID))
}

func (h *TemplatePreviewHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	log := h.logger

	var payload tasks.TemplatePreviewPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal template preview payload failed", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	if h.internalSecret == "" {
		log.Error("internal api secret missing")
		return fmt.Errorf("internal api secret missing: %w", asynq.SkipRetry)
	}

	log = log.With(
		slog.String("template_id", payload.TemplateID),
		slog.String("correlation_id", payload.CorrelationID),
	)

	if _, ok := h.catalog.Lookup(payload.TemplateID); !ok {
		log.Warn("template not in catalog, skipping task")
		return nil
	}
	log.Info("starting template preview generation")

	headers := map[string]string{"X-Internal-Secret": h.internalSecret}
	previewBytes, err := h.capture(ctx, log, h.sampleURL(payload.TemplateID), headers, previewQuality)
	if err != nil {
		log.Error("capture template screenshot failed", slog.Any("error", err))
		return err
	}

	objectName := storage.TemplateThumbnailKey(payload.TemplateID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(previewBytes), int64(len(previewBytes)), "image/jpeg"); err != nil {
		log.Error("upload template preview failed", slog.Any("error", err))
		return err
	}

	signedURL, err := h.storage.GeneratePresignedURL(ctx, objectName, previewURLTTL)
	if err != nil {
		log.Error("generate template preview url failed", slog.Any("error", err))
		return err
	}

	var preview database.TemplatePreview
	if err := h.db.WithContext(ctx).
		Where(database.TemplatePreview{TemplateID: payload.TemplateID}).
		Assign(database.TemplatePreview{ObjectKey: objectName, URL: signedURL}).
		FirstOrCreate(&preview).Error; err != nil {
		log.Error("save template preview failed", slog.Any("error", err))
		return err
	}

	log.Info("template preview generation completed", slog.String("object", objectName))
	return nil
}
