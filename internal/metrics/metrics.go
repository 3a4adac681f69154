package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inkbook/internal/cache"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Database metrics
	dbConnectionsInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_in_use",
			Help: "Number of database connections in use",
		},
	)

	dbConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_lookups_total",
			Help: "Query cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	cacheFlushesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "query_cache_flushes_total",
			Help: "Number of full query cache flushes",
		},
	)

	// Business metrics
	authAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"status"}, // success, failure
	)

	inquiriesSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inquiries_submitted_total",
			Help: "Contact inquiries submitted, by project type",
		},
		[]string{"project_type"},
	)

	tattooEngagementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tattoo_engagement_total",
			Help: "Tattoo views, likes and shares",
		},
		[]string{"kind"},
	)
)

// Middleware records request count and latency. The route label is the
// registered pattern (e.g. /api/v1/artists/:slug), not the raw path.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the Prometheus exposition format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordAuthAttempt records a login attempt.
func RecordAuthAttempt(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	authAttemptsTotal.WithLabelValues(status).Inc()
}

// RecordInquirySubmitted records a new contact inquiry.
func RecordInquirySubmitted(projectType string) {
	inquiriesSubmittedTotal.WithLabelValues(projectType).Inc()
}

// RecordEngagement records a tattoo view, like or share.
func RecordEngagement(kind string) {
	tattooEngagementTotal.WithLabelValues(kind).Inc()
}

// UpdateDBConnections updates database connection gauges.
func UpdateDBConnections(inUse, idle int) {
	dbConnectionsInUse.Set(float64(inUse))
	dbConnectionsIdle.Set(float64(idle))
}

type observedCache struct {
	cache.QueryCache
}

// ObserveCache wraps c so lookups and flushes are counted.
func ObserveCache(c cache.QueryCache) cache.QueryCache {
	return observedCache{QueryCache: c}
}

func (o observedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	found, err := o.QueryCache.Get(ctx, key, dest)
	switch {
	case err != nil:
		cacheLookupsTotal.WithLabelValues("error").Inc()
	case found:
		cacheLookupsTotal.WithLabelValues("hit").Inc()
	default:
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	return found, err
}

func (o observedCache) Flush(ctx context.Context) error {
	cacheFlushesTotal.Inc()
	return o.QueryCache.Flush(ctx)
}
