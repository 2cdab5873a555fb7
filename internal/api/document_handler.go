package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/database"
	"resumeforge/internal/document"
	"resumeforge/internal/render"
	"resumeforge/internal/storage"
	"resumeforge/internal/tasks"
)

const downloadLinkTTL = 5 * time.Minute

// DocumentHandler 负责文档的持久化与异步导出。
type DocumentHandler struct {
	db       *gorm.DB
	engine   *render.Engine
	tasks    taskEnqueuer
	storage  objectStore
	maxRetry int
}

// NewDocumentHandler 构造 DocumentHandler。
func NewDocumentHandler(db *gorm.DB, engine *render.Engine, tasks taskEnqueuer, storage objectStore, maxRetry int) *DocumentHandler {
	if maxRetry <= 0 {
		maxRetry = 3
	}
	return &DocumentHandler{db: db, engine: engine, tasks: tasks, storage: storage, maxRetry: maxRetry}
}

var errInvalidDocumentID = errors.New("invalid document id")

type saveDocumentRequest struct {
	Title    string         `json:"title"`
	Document datatypes.JSON `json:"document" binding:"required"`
}

type documentListItem struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Kind       string    `json:"kind"`
	TemplateID string    `json:"template_id,omitempty"`
	Status     string    `json:"status"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type documentResponse struct {
	documentListItem
	Pages     int            `json:"pages,omitempty"`
	Document  datatypes.JSON `json:"document"`
	CreatedAt time.Time      `json:"created_at"`
}

func newDocumentListItem(d database.Document) documentListItem {
	return documentListItem{
		ID:         d.ID,
		Title:      d.Title,
		Kind:       d.Kind,
		TemplateID: d.TemplateID,
		Status:     d.Status,
		UpdatedAt:  d.UpdatedAt,
	}
}

func newDocumentResponse(d database.Document) documentResponse {
	return documentResponse{
		documentListItem: newDocumentListItem(d),
		Pages:            d.Pages,
		Document:         d.Content,
		CreatedAt:        d.CreatedAt,
	}
}

// bindDocument 解析并校验请求；失败时已写好响应。
func (h *DocumentHandler) bindDocument(c *gin.Context) (saveDocumentRequest, document.Input, bool) {
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return req, document.Input{}, false
	}
	in, err := document.Decode(req.Document)
	if err != nil {
		InvalidDocument(c, err)
		return req, document.Input{}, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		req.Title = h.defaultTitle(in)
	}
	return req, in, true
}

func (h *DocumentHandler) defaultTitle(in document.Input) string {
	if view, err := document.Prepare(in, h.engine.Config(in)); err == nil {
		return view.Title
	}
	return "Untitled"
}

// CreateDocument 保存一份新的渲染输入。
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	req, in, ok := h.bindDocument(c)
	if !ok {
		return
	}

	doc := database.Document{
		Title:      req.Title,
		Kind:       string(in.Type),
		TemplateID: in.Template(),
		Content:    req.Document,
		Status:     database.StatusDraft,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&doc).Error; err != nil {
		Internal(c, "failed to create document")
		return
	}

	c.JSON(http.StatusCreated, newDocumentResponse(doc))
}

// ListDocuments 按更新时间倒序列出文档。
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Order("updated_at DESC")
	if kind := strings.TrimSpace(c.Query("kind")); kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var docs []database.Document
	if err := query.Find(&docs).Error; err != nil {
		Internal(c, "failed to list documents")
		return
	}

	items := make([]documentListItem, 0, len(docs))
	for _, d := range docs {
		items = append(items, newDocumentListItem(d))
	}
	c.JSON(http.StatusOK, items)
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newDocumentResponse(*doc))
}

// UpdateDocument 覆盖文档内容；已有的导出结果视为过期。
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}
	req, in, ok := h.bindDocument(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	updates := map[string]any{
		"title":       req.Title,
		"kind":        string(in.Type),
		"template_id": in.Template(),
		"content":     req.Document,
		"status":      database.StatusDraft,
	}
	if err := h.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
		Internal(c, "failed to update document")
		return
	}
	if err := h.db.WithContext(ctx).First(doc, doc.ID).Error; err != nil {
		Internal(c, "failed to reload document")
		return
	}

	c.JSON(http.StatusOK, newDocumentResponse(*doc))
}

// DeleteDocument 删除文档及其全部导出文件。
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Delete(&database.Document{}, doc.ID).Error; err != nil {
		Internal(c, "failed to delete document")
		return
	}
	if h.storage != nil {
		if err := h.storage.DeletePrefix(ctx, storage.DocumentExportPrefix(doc.ID)); err != nil {
			middleware.LoggerFromContext(c).Warn("delete exported files failed",
				slog.Uint64("document_id", uint64(doc.ID)),
				slog.Any("error", err),
			)
		}
	}

	c.Status(http.StatusNoContent)
}

// ExportDocument 将 PDF 导出任务入队并立即返回 202。
func (h *DocumentHandler) ExportDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	task, err := tasks.NewDocumentExportTask(doc.ID, correlationID)
	if err != nil {
		Internal(c, "failed to create task")
		return
	}

	// 先标记 queued 再入队，worker 只会把 queued 的文档改为 completed
	ctx := c.Request.Context()
	previous := doc.Status
	if err := h.db.WithContext(ctx).Model(doc).Update("status", database.StatusQueued).Error; err != nil {
		Internal(c, "failed to queue export")
		return
	}

	info, err := h.tasks.EnqueueContext(ctx, task, asynq.MaxRetry(h.maxRetry))
	if err != nil {
		middleware.LoggerFromContext(c).Error("enqueue export failed", slog.Any("error", err))
		rollback := h.db.WithContext(ctx).Model(&database.Document{}).
			Where("id = ? AND status = ?", doc.ID, database.StatusQueued).
			Update("status", previous)
		if rollback.Error != nil {
			middleware.LoggerFromContext(c).Warn("restore document status failed", slog.Any("error", rollback.Error))
		}
		Internal(c, "failed to enqueue export")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message":        "PDF export request accepted",
		"task_id":        info.ID,
		"correlation_id": correlationID,
	})
}

// GetDownloadLink 生成导出 PDF 的预签名下载链接；导出完成前返回 409。
func (h *DocumentHandler) GetDownloadLink(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	if doc.Status != database.StatusCompleted || doc.PdfKey == "" {
		Conflict(c, "pdf not ready")
		return
	}

	params := map[string]string{
		"response-content-disposition": fmt.Sprintf(`attachment; filename="%s.pdf"`, safeFilename(doc.Title)),
	}
	signedURL, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), doc.PdfKey, downloadLinkTTL, params)
	if err != nil {
		Internal(c, "failed to generate download link")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": signedURL, "pages": doc.Pages})
}

// loadDocument 按路径参数读取文档；失败时已写好响应。
func (h *DocumentHandler) loadDocument(c *gin.Context) (*database.Document, bool) {
	doc, err := h.findDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, errInvalidDocumentID):
			BadRequest(c, "invalid document id")
		case errors.Is(err, gorm.ErrRecordNotFound):
			NotFound(c, "document not found")
		default:
			Internal(c, "failed to query document")
		}
		return nil, false
	}
	return doc, true
}

func (h *DocumentHandler) findDocument(ctx context.Context, rawID string) (*database.Document, error) {
	id, err := strconv.ParseUint(rawID, 10, 64)
	if err != nil || id == 0 {
		return nil, errInvalidDocumentID
	}
	var doc database.Document
	if err := h.db.WithContext(ctx).First(&doc, uint(id)).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func safeFilename(title string) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(title, "_"), "_")
	if name == "" {
		return "document"
	}
	return name
}
