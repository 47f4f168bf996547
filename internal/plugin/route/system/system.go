// Package system serves the operational endpoints: liveness, readiness and
// the Prometheus scrape target. It registers on the management surface so a
// dedicated management port keeps these off the API listener.
package system

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	registryroute "github.com/innerfold/parts-service/internal/registry/route"
)

var ready atomic.Bool

// MarkReady flips the readiness probe once server startup has finished.
func MarkReady() {
	ready.Store(true)
}

func init() {
	registryroute.Register(registryroute.Plugin{
		Order:  0,
		Type:   registryroute.TypeManagement,
		Loader: mount,
	})
}

func mount(r *gin.Engine) error {
	r.GET("/health", health)
	r.GET("/ready", readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return nil
}

// health reports liveness: the process is up and serving.
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readiness reports whether startup (migrations, store init) has completed.
func readiness(c *gin.Context) {
	if !ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
