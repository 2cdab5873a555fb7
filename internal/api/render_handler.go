package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/api/middleware"
	"resumeforge/internal/document"
	"resumeforge/internal/metrics"
	"resumeforge/internal/render"
)

// maxDocumentBytes 限制单个渲染输入的大小（内联照片占大头）。
const maxDocumentBytes = 8 << 20

// RenderHandler 负责同步渲染：HTML 预览与 PDF 下载。
type RenderHandler struct {
	engine *render.Engine
}

func NewRenderHandler(engine *render.Engine) *RenderHandler {
	return &RenderHandler{engine: engine}
}

// Preview 返回交互式预览 HTML。模板问题会静默回落到默认样式。
func (h *RenderHandler) Preview(c *gin.Context) {
	in, ok := readDocument(c)
	if !ok {
		return
	}

	start := time.Now()
	markup, err := h.engine.Preview(in)
	metrics.ObserveRender("preview", templateLabel(in), start, err)
	if err != nil {
		middleware.LoggerFromContext(c).Error("render preview failed", slog.Any("error", err))
		RenderFailed(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

// PDF 同步生成 PDF 并以附件形式返回。
func (h *RenderHandler) PDF(c *gin.Context) {
	in, ok := readDocument(c)
	if !ok {
		return
	}

	log := middleware.LoggerFromContext(c).With(slog.String("template", templateLabel(in)))
	start := time.Now()
	res, err := h.engine.RenderToBuffer(in)
	metrics.ObserveRender("pdf", templateLabel(in), start, err)
	if err != nil {
		log.Error("render pdf failed", slog.Any("error", err))
		RenderFailed(c, err)
		return
	}
	metrics.ObservePages(res.Pages)

	filename := pdfFilename(h.engine, in)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("X-Page-Count", strconv.Itoa(res.Pages))
	c.Data(http.StatusOK, "application/pdf", res.Data)
}

// readDocument 读取请求体并做 schema 校验；失败时已写好响应。
func readDocument(c *gin.Context) (document.Input, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		Error(c, http.StatusRequestEntityTooLarge, "document too large")
		return document.Input{}, false
	}
	in, err := document.Decode(raw)
	if err != nil {
		InvalidDocument(c, err)
		return document.Input{}, false
	}
	return in, true
}

func templateLabel(in document.Input) string {
	if id := in.Template(); id != "" {
		return id
	}
	return "default"
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// pdfFilename 由文档标题生成 ASCII 文件名，例如 "Jane_Doe_-_Resume.pdf"。
func pdfFilename(engine *render.Engine, in document.Input) string {
	title := "document"
	if view, err := document.Prepare(in, engine.Config(in)); err == nil && view.Title != "" {
		title = view.Title
	}
	return safeFilename(title) + ".pdf"
}
