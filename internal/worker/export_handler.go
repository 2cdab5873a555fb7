package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"resumeforge/internal/database"
	"resumeforge/internal/document"
	"resumeforge/internal/errcode"
	"resumeforge/internal/metrics"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
	"resumeforge/internal/templates"
)

type objectReader interface {
	ReadObject(ctx context.Context, objectKey string) ([]byte, string, error)
}

type objectWriter interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// exportStore 是导出任务所需的存储能力，*storage.Client 满足该接口。
type exportStore interface {
	objectReader
	objectWriter
	DeleteObject(ctx context.Context, objectKey string) error
}

// ExportHandler 负责消费文档 PDF 导出任务。
type ExportHandler struct {
	db        *gorm.DB
	engine    *render.Engine
	storage   exportStore
	publisher publisher
	logger    *slog.Logger
}

// NewExportHandler 创建任务处理器。
func NewExportHandler(db *gorm.DB, engine *render.Engine, storage exportStore, publisher publisher, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		db:        db,
		engine:    engine,
		storage:   storage,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *ExportHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.DocumentExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Uint64("document_id", uint64(payload.DocumentID)),
	)
	log.Info("starting document export")

	var doc database.Document
	if err := h.db.WithContext(ctx).First(&doc, payload.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("document not found, skipping task")
			return nil
		}
		log.Error("query document failed", slog.Any("error", err))
		return err
	}

	defer func() {
		if retErr == nil {
			return
		}
		if !errors.Is(retErr, asynq.SkipRetry) && !isFinalAsynqAttempt(ctx) {
			return
		}
		h.fail(ctx, log, &doc, payload.CorrelationID, retErr)
	}()

	in, err := document.Decode(doc.Content)
	if err != nil {
		log.Error("stored document is invalid", slog.Any("error", err))
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	missingKeys, err := inlinePhoto(ctx, h.storage, &in)
	if err != nil {
		log.Error("inline photo failed", slog.Any("error", err))
		return err
	}

	start := time.Now()
	res, err := h.engine.RenderToBuffer(in)
	metrics.ObserveRender("pdf", doc.TemplateID, start, err)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		return err
	}
	metrics.ObservePages(res.Pages)

	objectName := storage.DocumentExportKey(doc.ID, uuid.NewString())
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(res.Data), int64(len(res.Data)), "application/pdf"); err != nil {
		if storage.IsNoSuchBucket(err) {
			log.Error("export bucket is missing", slog.Any("error", err))
		} else {
			log.Error("upload pdf to minio failed", slog.Any("error", err))
		}
		return err
	}

	update := map[string]any{
		"pdf_key": objectName,
		"pages":   res.Pages,
		"status":  database.StatusCompleted,
	}
	result := h.db.WithContext(ctx).Model(&database.Document{}).
		Where("id = ? AND status = ?", doc.ID, database.StatusQueued).
		Updates(update)
	if result.Error != nil {
		log.Error("update document failed", slog.Any("error", result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 导出期间文档被编辑或删除，这份 PDF 已过期
		log.Warn("document changed during export, discarding pdf", slog.String("object", objectName))
		if err := h.storage.DeleteObject(ctx, objectName); err != nil {
			log.Error("delete stale pdf failed", slog.Any("error", err))
		}
		return nil
	}

	notify := ExportNotifyMessage{
		Status:        database.StatusCompleted,
		DocumentID:    doc.ID,
		CorrelationID: payload.CorrelationID,
		Pages:         res.Pages,
		ErrorCode:     errcode.OK,
	}
	if len(missingKeys) > 0 {
		notify.ErrorCode = errcode.ResourceMissing
		notify.ErrorMessage = "照片资源缺失或无效，已跳过照片并继续导出"
		notify.MissingKeys = missingKeys
		log.Warn("pdf exported with missing photo", slog.Any("missing_keys", missingKeys))
	}
	if err := publishExportNotify(ctx, h.publisher, notify); err != nil {
		// PDF 已经就绪，通知失败只记录日志，客户端仍可轮询下载链接。
		log.Error("publish redis notification failed", slog.Any("error", err))
	}

	log.Info("document export completed", slog.Int("pages", res.Pages), slog.String("object", objectName))
	return nil
}

// fail 标记文档导出失败并通知前端。
func (h *ExportHandler) fail(ctx context.Context, log *slog.Logger, doc *database.Document, correlationID string, cause error) {
	err := h.db.WithContext(ctx).Model(&database.Document{}).
		Where("id = ? AND status = ?", doc.ID, database.StatusQueued).
		Update("status", database.StatusFailed).Error
	if err != nil {
		log.Error("mark document failed", slog.Any("error", err))
	}
	notify := ExportNotifyMessage{
		Status:        database.StatusFailed,
		DocumentID:    doc.ID,
		CorrelationID: correlationID,
		ErrorCode:     exportErrorCode(cause),
		ErrorMessage:  strings.TrimSpace(cause.Error()),
	}
	if err := publishExportNotify(ctx, h.publisher, notify); err != nil {
		log.Error("publish export error notification failed", slog.Any("error", err))
	}
}

func exportErrorCode(err error) int {
	switch {
	case errors.Is(err, document.ErrInvalidInput):
		return errcode.InvalidDocument
	case errors.Is(err, templates.ErrTemplateUnavailable):
		return errcode.TemplateUnavailable
	}
	return errcode.SystemError
}
