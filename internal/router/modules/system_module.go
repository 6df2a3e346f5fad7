package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/interview-tracker/internal/interface/http"
	"github.com/oksasatya/interview-tracker/internal/interface/middleware"
)

// SystemModule serves reachability, health and, when a gatherer is set, Prometheus metrics.
type SystemModule struct {
	Gatherer prometheus.Gatherer
	Redis    *redis.Client
}

func NewSystemModule(g prometheus.Gatherer, rdb *redis.Client) *SystemModule {
	return &SystemModule{Gatherer: g, Redis: rdb}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rg.GET("/", handlers.Root)
	rg.GET("/health", handlers.Health)

	if m.Gatherer != nil {
		// scrapers usually sit on the private network and bypass the limit
		rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
		rg.GET("/metrics", rl, gin.WrapH(promhttp.HandlerFor(m.Gatherer, promhttp.HandlerOpts{})))
	}
}
