package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "resumeforge"

var (
	renderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "渲染耗时分布（秒），按后端与模板区分。",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"backend", "template"},
	)

	renderFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "failed_total",
			Help:      "渲染失败总数。",
		},
		[]string{"backend"},
	)

	renderPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "render",
			Name:      "pdf_pages",
			Help:      "导出 PDF 的页数分布。",
			Buckets:   []float64{1, 2, 3, 4, 6, 10},
		},
	)
)

// ObserveRender records one render call. backend is "preview" or "pdf".
func ObserveRender(backend, templateID string, start time.Time, err error) {
	if err != nil {
		renderFailedTotal.WithLabelValues(backend).Inc()
		return
	}
	renderDuration.WithLabelValues(backend, templateID).Observe(time.Since(start).Seconds())
}

func ObservePages(pages int) {
	renderPages.Observe(float64(pages))
}
