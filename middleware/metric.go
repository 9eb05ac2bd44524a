package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	AnalyticsReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_reports_total",
			Help: "Analytics reports served, by range and outcome",
		},
		[]string{"range", "outcome"},
	)

	AnalyticsReportDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analytics_report_duration_seconds",
			Help:    "Time spent building analytics reports",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		},
		[]string{"range"},
	)

	registerOnce sync.Once
)

func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HttpRequestsTotal, HttpRequestDuration, AnalyticsReportsTotal, AnalyticsReportDuration)
	})
}

func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "undefined"
		}

		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HttpRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
	}
}

// MetricsGuard restricts an endpoint to a single client IP. An empty ip allows everyone.
func MetricsGuard(ip string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ip != "" && c.ClientIP() != ip {
			c.AbortWithStatus(403)
			return
		}
		c.Next()
	}
}
