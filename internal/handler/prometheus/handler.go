package prometheus

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gorica/clinic-api/pkg/metrics"
)

// unmatched labels requests that hit no route, keeping path cardinality bounded.
const unmatched = "unmatched"

type Handler struct {
	registry prometheus.Gatherer
	metrics  *metrics.Metrics
}

func New(registry prometheus.Gatherer, m *metrics.Metrics) *Handler {
	return &Handler{registry: registry, metrics: m}
}

// Middleware records request count and latency labelled by route template.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatched
		}
		status := strconv.Itoa(c.Writer.Status())

		h.metrics.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		h.metrics.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

func (h *Handler) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
}
