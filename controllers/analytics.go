package controllers

import (
	"context"
	"net/http"
	"time"

	"marketplace/logger"
	"marketplace/middleware"
	"marketplace/models"
	"marketplace/services/analytics"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// GetAnalytics serves the dashboard report. Any failure answers 500 with a
// zeroed report carrying error and details.
func GetAnalytics(svc *analytics.Service, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := analytics.ParseRange(c.Query("range"))
		start := time.Now()

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		report, err := svc.Cached(ctx, r)
		middleware.AnalyticsReportDuration.WithLabelValues(string(r)).Observe(time.Since(start).Seconds())
		if err != nil {
			middleware.AnalyticsReportsTotal.WithLabelValues(string(r), "error").Inc()
			logger.Log.WithError(err).WithFields(logrus.Fields{"range": r}).Error("Analytics error")
			c.JSON(http.StatusInternalServerError, models.DegradedReport(err.Error()))
			return
		}

		middleware.AnalyticsReportsTotal.WithLabelValues(string(r), "ok").Inc()
		c.JSON(http.StatusOK, report)
	}
}
