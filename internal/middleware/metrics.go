package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// AuthFailures counts rejected requests by reason (unauthenticated, forbidden).
	AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agora_auth_failures_total",
		Help: "Total number of authentication and authorization failures",
	}, []string{"reason"})

	// SessionsActive is the gauge of currently active session tokens.
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agora_sessions_active",
		Help: "Number of currently active session tokens",
	})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
