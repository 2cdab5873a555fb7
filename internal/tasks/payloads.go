package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeDocumentExport  = "document:export"
	TypeTemplatePreview = "template:preview"
)

// DocumentExportPayload 描述导出一份文档 PDF 所需的最小信息。
type DocumentExportPayload struct {
	DocumentID    uint   `json:"document_id"`
	CorrelationID string `json:"correlation_id"`
}

// TemplatePreviewPayload identifies the catalog template to screenshot.
type TemplatePreviewPayload struct {
	TemplateID    string `json:"template_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewDocumentExportTask 构造一个新的文档 PDF 导出任务。
func NewDocumentExportTask(id uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentExportPayload{
		DocumentID:    id,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeDocumentExport, payload), nil
}

func NewTemplatePreviewTask(templateID, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(TemplatePreviewPayload{
		TemplateID:    templateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTemplatePreview, payload), nil
}

// DocumentNotifyChannel 是导出结果通知使用的 Redis Pub/Sub 频道。
func DocumentNotifyChannel(documentID uint) string {
	return fmt.Sprintf("document_notify:%d", documentID)
}
