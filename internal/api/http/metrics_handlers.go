package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/vfs/internal/infrastructure/monitoring"
)

// MetricsHandlers serves the Prometheus registry and a JSON summary.
type MetricsHandlers struct {
	metrics  *monitoring.Metrics
	gatherer prometheus.Gatherer
}

// NewMetricsHandlers creates handlers over metrics registered on gatherer.
func NewMetricsHandlers(metrics *monitoring.Metrics, gatherer prometheus.Gatherer) *MetricsHandlers {
	return &MetricsHandlers{metrics: metrics, gatherer: gatherer}
}

// Register mounts the metrics routes on router.
func (m *MetricsHandlers) Register(router gin.IRoutes) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})))
	router.GET("/metrics/json", m.JSON)
}

// JSON returns the metrics snapshot
func (m *MetricsHandlers) JSON(c *gin.Context) {
	c.JSON(http.StatusOK, m.metrics.Snapshot())
}
