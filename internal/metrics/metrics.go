// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "billar"

var (
	// HTTP request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Ledger metrics
	StockMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_movements_total",
			Help: "Committed stock movements by type",
		},
		[]string{"type"},
	)
	InsufficientStockTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_insufficient_stock_total",
			Help: "Stock deductions rejected for lack of stock",
		},
	)

	// Session and order metrics
	SessionsClosedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_sessions_closed_total",
			Help: "Table sessions closed, by final status",
		},
		[]string{"status"},
	)
	OrdersCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_orders_created_total",
			Help: "POS orders created, by payment method",
		},
		[]string{"payment_method"},
	)
)

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) { h.ServeHTTP(c.Writer, c.Request) }
}

// RecordMovement counts one committed stock movement.
func RecordMovement(movementType string) {
	StockMovementsTotal.WithLabelValues(movementType).Inc()
}
