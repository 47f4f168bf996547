// Package security holds the HTTP middleware and Prometheus metrics shared
// by every route plugin: access logging, request metrics, and caller
// identity extraction.
package security

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// StoreLatency is used by the record store metrics decorator to record
	// per-operation latency.
	StoreLatency *prometheus.HistogramVec

	// RollbacksTotal counts rollback attempts by outcome.
	RollbacksTotal *prometheus.CounterVec

	// DocumentPatchesTotal counts section patches by outcome.
	DocumentPatchesTotal *prometheus.CounterVec
)

var validLabelKey = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseMetricsLabels parses a comma-separated list of key=value pairs into
// Prometheus labels. Values support ${VAR} / $VAR environment variable
// expansion. Returns nil for an empty string.
func ParseMetricsLabels(s string) (prometheus.Labels, error) {
	s = os.Expand(s, os.Getenv)
	if s == "" {
		return nil, nil
	}
	labels := prometheus.Labels{}
	for _, pair := range strings.Split(s, ",") {
		idx := strings.IndexByte(pair, '=')
		if idx < 0 {
			return nil, fmt.Errorf("invalid label %q: expected key=value", pair)
		}
		k, v := pair[:idx], pair[idx+1:]
		if !validLabelKey.MatchString(k) {
			return nil, fmt.Errorf("invalid label key %q: must match [a-zA-Z_][a-zA-Z0-9_]*", k)
		}
		labels[k] = v
	}
	return labels, nil
}

var initMetricsOnce sync.Once

// InitMetrics registers all Prometheus metrics with the given constant
// labels. Must run before the HTTP server or any metrics-recording store
// starts. Safe to call multiple times; only the first call registers.
func InitMetrics(constLabels prometheus.Labels) {
	initMetricsOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(constLabels, prometheus.DefaultRegisterer)
		f := promauto.With(reg)

		httpRequestsTotal = f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parts_service_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "status"},
		)

		httpRequestDuration = f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parts_service_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)

		StoreLatency = f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parts_service_store_latency_seconds",
				Help:    "Record store operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		RollbacksTotal = f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parts_service_rollbacks_total",
				Help: "Rollback attempts by outcome",
			},
			[]string{"outcome"},
		)

		DocumentPatchesTotal = f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parts_service_document_patches_total",
				Help: "Section patch operations by outcome",
			},
			[]string{"outcome"},
		)
	})
}

// MetricsMiddleware records HTTP request metrics for Prometheus.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if httpRequestsTotal == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		httpRequestsTotal.WithLabelValues(c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// ObserveRollback records a rollback attempt outcome, if metrics are up.
func ObserveRollback(success bool) {
	if RollbacksTotal == nil {
		return
	}
	outcome := "failure"
	if success {
		outcome = "success"
	}
	RollbacksTotal.WithLabelValues(outcome).Inc()
}

// ObserveDocumentPatch records a section patch outcome, if metrics are up.
func ObserveDocumentPatch(outcome string) {
	if DocumentPatchesTotal == nil {
		return
	}
	DocumentPatchesTotal.WithLabelValues(outcome).Inc()
}
