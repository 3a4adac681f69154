package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkbook/internal/cache"
)

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware())
	app.Get("/artists/:slug", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/metrics", Handler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/artists/:slug", "200"))

	for _, slug := range []string{"mira", "jon"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/artists/"+slug, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/artists/:slug", "200"))
	assert.Equal(t, 2.0, after-before)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "http_requests_total"))
}

func TestObserveCacheCountsLookups(t *testing.T) {
	ctx := context.Background()
	c := ObserveCache(cache.NewMemoryCache(time.Minute, 10))

	hits := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit"))
	misses := testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss"))
	flushes := testutil.ToFloat64(cacheFlushesTotal)

	var v int
	_, _ = c.Get(ctx, "k", &v)
	require.NoError(t, c.Set(ctx, "k", 1))
	_, _ = c.Get(ctx, "k", &v)
	require.NoError(t, c.Flush(ctx))

	assert.Equal(t, 1.0, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("hit"))-hits)
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheLookupsTotal.WithLabelValues("miss"))-misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(cacheFlushesTotal)-flushes)
}
