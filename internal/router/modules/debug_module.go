package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/pkg/metrics"
)

// DebugModule exposes expvar counters and Prometheus metrics to private
// networks and a health probe to everyone.
type DebugModule struct {
	MetricsEnabled bool
}

func NewDebugModule(metricsEnabled bool) *DebugModule {
	return &DebugModule{MetricsEnabled: metricsEnabled}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if m.MetricsEnabled {
		private := middleware.Only(middleware.AllowPrivateIP())
		rg.GET("/debug/vars", private, gin.WrapH(expvar.Handler()))
		rg.GET("/metrics", private, gin.WrapH(metrics.Handler()))
	}
}
