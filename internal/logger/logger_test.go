package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/limaJavier/coursetimetable/internal/config"
)

func TestNewHonoursLevel(t *testing.T) {
	scenarios := []struct {
		cfg     config.Config
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "warn", Format: "json"}}, zapcore.WarnLevel, zapcore.InfoLevel},
		{config.Config{Env: config.EnvDevelopment, Log: config.LogConfig{Level: "debug", Format: "console"}}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{config.Config{Env: config.EnvProduction, Log: config.LogConfig{Level: "nonsense"}}, zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, scenario := range scenarios {
		l, err := New(&scenario.cfg)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(scenario.enabled))
		assert.False(t, l.Core().Enabled(scenario.muted))
	}
}

func TestGinMiddleware(t *testing.T) {
	//** Arrange
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/timetable", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	//** Act
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/timetable", nil))

	//** Assert
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/timetable", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
