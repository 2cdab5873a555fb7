package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/database"
	"resumeforge/internal/document"
	"resumeforge/internal/render"
	"resumeforge/internal/tasks"
	"resumeforge/internal/templates"
)

const thumbnailURLTTL = 24 * time.Hour

// TemplateHandler 负责模板目录相关的 API。
type TemplateHandler struct {
	engine  *render.Engine
	db      *gorm.DB
	tasks   taskEnqueuer
	storage objectStore
}

func NewTemplateHandler(engine *render.Engine, db *gorm.DB, tasks taskEnqueuer, storage objectStore) *TemplateHandler {
	return &TemplateHandler{engine: engine, db: db, tasks: tasks, storage: storage}
}

type templateListItem struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Layout      templates.Layout `json:"layout"`
	HasPhoto    bool             `json:"has_photo"`
}

type templateDetailResponse struct {
	templateListItem
	Config       templates.Config `json:"config"`
	ThumbnailURL string           `json:"thumbnail_url,omitempty"`
}

func newTemplateListItem(e templates.Entry) templateListItem {
	return templateListItem{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Description: e.Description,
		Layout:      e.Config.Layout,
		HasPhoto:    e.Config.HasPhoto,
	}
}

// GET /v1/templates?q=
// 列表：q 非空时按模糊匹配分数排序。
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	entries := h.engine.Catalog().Search(c.Query("q"))
	items := make([]templateListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, newTemplateListItem(e))
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/:id
// 详情：返回解析后的完整配置，以及已生成的缩略图链接。
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	entry, ok := h.engine.Catalog().Lookup(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}

	resp := templateDetailResponse{
		templateListItem: newTemplateListItem(entry),
		Config:           h.engine.Catalog().Resolve(entry.ID, nil, templates.Preferences{}),
	}
	resp.ThumbnailURL = h.thumbnailURL(c, entry.ID)

	c.JSON(http.StatusOK, resp)
}

func (h *TemplateHandler) thumbnailURL(c *gin.Context, templateID string) string {
	if h.db == nil {
		return ""
	}
	var preview database.TemplatePreview
	err := h.db.WithContext(c.Request.Context()).Where("template_id = ?", templateID).First(&preview).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.LoggerFromContext(c).Warn("query template preview failed", slog.Any("error", err))
		}
		return ""
	}
	if h.storage != nil && preview.ObjectKey != "" {
		if url, err := h.storage.GeneratePresignedURL(c.Request.Context(), preview.ObjectKey, thumbnailURLTTL); err == nil {
			return url
		}
	}
	return preview.URL
}

// POST /v1/templates/:id/preview-image
// 缩略图生成入队；同一模板重复请求只保留一个排队任务。
func (h *TemplateHandler) EnqueuePreviewImage(c *gin.Context) {
	entry, ok := h.engine.Catalog().Lookup(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}

	task, err := tasks.NewTemplatePreviewTask(entry.ID, middleware.GetCorrelationID(c))
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	info, err := h.tasks.EnqueueContext(c.Request.Context(), task,
		asynq.MaxRetry(3),
		asynq.TaskID(fmt.Sprintf("template-preview:%s", entry.ID)),
		asynq.Retention(10*time.Minute),
	)
	switch {
	case errors.Is(err, asynq.ErrTaskIDConflict):
		c.JSON(http.StatusAccepted, gin.H{"message": "preview generation already queued"})
		return
	case err != nil:
		middleware.LoggerFromContext(c).Error("enqueue template preview failed", slog.Any("error", err))
		Internal(c, "failed to enqueue preview generation")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "preview generation request accepted",
		"task_id": info.ID,
	})
}

// GET /internal/templates/:id/sample?kind=
// 供 worker 截图使用的示例页面，仅内部可访问。
func (h *TemplateHandler) SamplePage(c *gin.Context) {
	entry, ok := h.engine.Catalog().Lookup(c.Param("id"))
	if !ok {
		NotFound(c, "template not found")
		return
	}

	in := document.Sample(document.Kind(c.DefaultQuery("kind", string(document.KindResume))), entry.ID)
	markup, err := h.engine.Preview(in)
	if err != nil {
		middleware.LoggerFromContext(c).Error("render sample page failed", slog.Any("error", err))
		Internal(c, "failed to render sample")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}
