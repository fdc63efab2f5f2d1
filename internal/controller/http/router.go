package http

import (
	"time"

	"paypalplus/internal/controller/http/handlers"
	"paypalplus/pkg/health"
	"paypalplus/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	ipn    handlers.IPNHandler
	order  handlers.OrderHandler
	refund handlers.RefundHandler
	health *health.Registry
}

func NewRouter(
	ipn handlers.IPNHandler,
	order handlers.OrderHandler,
	refund handlers.RefundHandler,
	healthRegistry *health.Registry,
) *Router {
	return &Router{
		ipn:    ipn,
		order:  order,
		refund: refund,
		health: healthRegistry,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.POST("/ipn", r.ipn.Receive)

	engine.GET("/orders/:order_id", r.order.Get)
	engine.GET("/orders/:order_id/notes", r.order.GetNotes)
	engine.POST("/orders/:order_id/refund", r.refund.Refund)

	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(r.health, 5*time.Second))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry, promhttp.HandlerOpts{})))
}
