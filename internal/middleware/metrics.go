package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eventopia/eventopia-api/internal/service"
)

// unmatchedRoute is the shared label for requests that hit no registered
// route. Collapsing them keeps probe traffic against random paths from
// inflating metric cardinality.
const unmatchedRoute = "unmatched"

// Metrics records one observation per request, labelled by the route
// template (/api/v1/events/:id/approve, not the concrete URL).
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
