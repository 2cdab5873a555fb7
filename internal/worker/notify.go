package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/tasks"
)

// ExportNotifyMessage 是通过 Redis Pub/Sub 转发给 WebSocket 客户端的导出结果。
type ExportNotifyMessage struct {
	Status        string   `json:"status"`
	DocumentID    uint     `json:"document_id"`
	CorrelationID string   `json:"correlation_id"`
	Pages         int      `json:"pages,omitempty"`
	ErrorCode     int      `json:"error_code"`
	ErrorMessage  string   `json:"error_message"`
	MissingKeys   []string `json:"missing_keys,omitempty"`
}

// publisher is satisfied by *redis.Client.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

func publishExportNotify(ctx context.Context, pub publisher, notify ExportNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := tasks.DocumentNotifyChannel(notify.DocumentID)
	if err := pub.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

// isFinalAsynqAttempt 只有最后一次重试失败才通知前端，避免中间失败造成误报。
func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
