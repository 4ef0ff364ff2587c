package observability

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestObserveCommand(t *testing.T) {
	m := NewMetrics("console_test")
	m.ObserveCommand("resolve", "local", 20*time.Millisecond)
	m.ObserveCommand("resolve", "local", 10*time.Millisecond)
	m.ObserveCommand("resolve", "remote", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("resolve", "local")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("resolve", "remote")))
}

func TestObservePoll(t *testing.T) {
	m := NewMetrics("console_test")
	m.ObservePoll("ok", 12)
	m.ObservePoll("error", -1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.polls.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.storedTickets))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/queue", "GET", 200, time.Millisecond)
		m.RecordError("/queue", "GET", "X")
		m.ObserveCommand("assign", "local", 0)
		m.ObservePoll("ok", 1)
	})
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewMetrics("console_test")
	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), m))
	app.Get("/tickets/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/tickets/42", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/tickets/:id", "GET", "200")))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/tickets/42", logs.All()[0].ContextMap()["path"])

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "console_test_http_requests_total")
}
