package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 文档导出状态。
const (
	StatusDraft     = "draft"
	StatusQueued    = "queued"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Document 保存一份渲染输入（简历、CV 或求职信）及其最近一次导出结果。
type Document struct {
	gorm.Model
	Title      string         `gorm:"size:255"`
	Kind       string         `gorm:"size:32;index"`
	TemplateID string         `gorm:"size:64"`
	Content    datatypes.JSON `gorm:"type:jsonb"` // JSONB 存储完整的渲染输入 {type, templateId, overrides, data}
	Status     string         `gorm:"size:32"`
	PdfKey     string         `gorm:"size:512"`
	Pages      int
}

// TemplatePreview records the generated thumbnail for a catalog template.
type TemplatePreview struct {
	gorm.Model
	TemplateID string `gorm:"size:64;uniqueIndex"`
	ObjectKey  string `gorm:"size:512"`
	URL        string `gorm:"size:2048"`
}
