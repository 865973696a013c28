//go:build unit

package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Nazarious-ucu/weather-push-api/internal/metrics"
)

func TestHTTPMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewMetrics("metrics_test", nil, "")

	r := gin.New()
	r.Use(m.HTTPMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "2xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestRecordHelpers(t *testing.T) {
	m := metrics.NewMetrics("metrics_test", nil, "")

	m.RecordNotification("email", nil)
	m.RecordNotification("webhook", errors.New("boom"))
	m.RecordRabbitPublish("subscription.notify", nil)
	m.CronJob("due_scan", func() {})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("email", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsSent.WithLabelValues("webhook", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RabbitPublishTotal.WithLabelValues("subscription.notify", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CronRuns.WithLabelValues("due_scan")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := metrics.NewMetrics("metrics_test", nil, "")
	c := metrics.NewPromCollector(m.Registry(), "metrics_test")
	c.ObserveLatency("cache_get", time.Millisecond)
	c.IncrementCounter("cache_get", "hit")
	m.UsersRegistered.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "metrics_test_users_registered_total 1")
	assert.Contains(t, w.Body.String(), "metrics_test_cache_operations_total")
}
