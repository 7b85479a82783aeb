package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// SessionsCreated counts successful logins.
var SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "campusmap_sessions_created_total",
	Help: "Total number of sessions created by login",
})

// InitMetrics sets up the fiberprometheus middleware for HTTP metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-instrumentation handler for the given collector.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
