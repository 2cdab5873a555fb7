package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRenderCountsFailures(t *testing.T) {
	before := testutil.ToFloat64(renderFailedTotal.WithLabelValues("pdf"))
	ObserveRender("pdf", "modern", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(renderFailedTotal.WithLabelValues("pdf"))
	if after != before+1 {
		t.Fatalf("expected failure counter to grow, before=%v after=%v", before, after)
	}
	ObserveRender("preview", "modern", time.Now(), nil)
}

func TestAsynqMiddlewareCountsTasks(t *testing.T) {
	handler := AsynqMetricsMiddleware()(asynq.HandlerFunc(func(context.Context, *asynq.Task) error {
		return errors.New("fail")
	}))
	before := testutil.ToFloat64(taskFailedTotal.WithLabelValues("test:task"))
	if err := handler.ProcessTask(context.Background(), asynq.NewTask("test:task", nil)); err == nil {
		t.Fatalf("expected error to pass through")
	}
	if got := testutil.ToFloat64(taskFailedTotal.WithLabelValues("test:task")); got != before+1 {
		t.Fatalf("failed counter = %v, want %v", got, before+1)
	}
}

func TestGinMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping/1", nil))

	got := testutil.ToFloat64(requestTotal.WithLabelValues(http.MethodGet, "/ping/:id", "418"))
	if got < 1 {
		t.Fatalf("expected request to be counted under route template, got %v", got)
	}
}
