package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	return recorder.Body.String()
}

func TestObserveSolve(t *testing.T) {
	//** Arrange
	m := New()

	//** Act
	m.ObserveSolve("solved", 250*time.Millisecond, 120, 480)
	m.ObserveSolve("infeasible", time.Second, 0, 0)

	//** Assert
	body := scrape(t, m)
	assert.Contains(t, body, `timetable_solves_total{status="solved"} 1`)
	assert.Contains(t, body, `timetable_solves_total{status="infeasible"} 1`)
	assert.Contains(t, body, "timetable_model_variables 120")
	assert.Contains(t, body, "timetable_model_clauses 480")
}

func TestMiddlewareRecordsRoutes(t *testing.T) {
	//** Arrange
	gin.SetMode(gin.TestMode)
	m := New()
	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	//** Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	//** Assert
	assert.Contains(t, scrape(t, m), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() { m.ObserveSolve("solved", time.Second, 1, 1) })

	recorder := httptest.NewRecorder()
	m.Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
