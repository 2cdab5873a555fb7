package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeforge/internal/document"
	"resumeforge/internal/errcode"
	"resumeforge/internal/templates"
)

const msgExportFailed = "export failed, try again"

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ErrorWithCode 附带 errcode，便于前端区分输入错误与模板缺失。
func ErrorWithCode(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { Error(c, http.StatusInternalServerError, msg) }

func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, "too many render requests, slow down")
}

func InvalidDocument(c *gin.Context, err error) {
	ErrorWithCode(c, http.StatusUnprocessableEntity, errcode.InvalidDocument, err.Error())
}

// RenderFailed maps renderer errors onto responses. Anything that is not an input
// problem is reported with the generic export message.
func RenderFailed(c *gin.Context, err error) {
	switch {
	case errors.Is(err, document.ErrInvalidInput):
		InvalidDocument(c, err)
	case errors.Is(err, templates.ErrTemplateUnavailable):
		ErrorWithCode(c, http.StatusServiceUnavailable, errcode.TemplateUnavailable, msgExportFailed)
	default:
		ErrorWithCode(c, http.StatusInternalServerError, errcode.SystemError, msgExportFailed)
	}
}
