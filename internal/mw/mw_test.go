package mw

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"crew-booking-backend/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestCache(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	hits := 0
	status := http.StatusOK

	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/items", func(c *gin.Context) {
		hits++
		c.JSON(status, gin.H{"hits": hits})
	})
	r.POST("/items", func(c *gin.Context) {
		c.Status(status)
	})

	first := do(r, http.MethodGet, "/items")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do(r, http.MethodGet, "/items")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, hits)

	// A failed write leaves the cache alone.
	status = http.StatusConflict
	do(r, http.MethodPost, "/items")
	assert.Equal(t, "HIT", do(r, http.MethodGet, "/items").Header().Get("X-Cache"))

	// A successful write flushes it.
	status = http.StatusCreated
	do(r, http.MethodPost, "/items")
	assert.Equal(t, 0, store.ItemCount())
	status = http.StatusOK
	third := do(r, http.MethodGet, "/items")
	assert.Equal(t, "MISS", third.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}

func TestCache_SkipsErrors(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	r := gin.New()
	r.Use(Cache(store, time.Minute))
	r.GET("/broken", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "x"})
	})

	do(r, http.MethodGet, "/broken")
	assert.Equal(t, 0, store.ItemCount())
}

func TestKeyedLimiter(t *testing.T) {
	l := NewKeyedLimiter(rate.Limit(1), 2, time.Minute)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "buckets are per key")
	assert.Same(t, l.Limiter("a"), l.Limiter("a"))
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 1))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/").Code)
	limited := do(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "1", limited.Header().Get("Retry-After"))
	assert.Contains(t, limited.Body.String(), "rate limit exceeded")
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := do(r, http.MethodGet, "/")
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}

func TestAccessLog_RecordsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewPromRecorder(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(AccessLog(rec))
	r.GET("/api/bookings/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	do(r, http.MethodGet, "/api/bookings/7")
	do(r, http.MethodGet, "/nowhere")

	count, err := testutil.GatherAndCount(reg, "crew_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var routes []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					routes = append(routes, l.GetValue())
				}
			}
		}
	}
	assert.ElementsMatch(t, []string{"/api/bookings/:id", "unmatched"}, routes)
	assert.False(t, strings.Contains(strings.Join(routes, ","), "/7"))
}
