package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/limaJavier/coursetimetable/internal/metrics"
)

// RegisterRoutes mounts every endpoint. Export files are served from exportDir when it is not empty
func RegisterRoutes(router *gin.Engine, timetable *TimetableHandler, m *metrics.Metrics, exportDir string) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.POST("/upload-dataset", timetable.UploadDataset)
	router.POST("/timetable/generate", timetable.Generate)
	router.GET("/timetable", timetable.Timetable)

	if exportDir != "" {
		router.Static("/exports", exportDir)
	}
}
