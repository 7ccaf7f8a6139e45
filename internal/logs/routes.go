package logs

import (
	"dashboard-versioning-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, logService *LogService) {
	logController := &LogController{LogService: logService}

	logGroup := r.Group("/api/logs")
	logGroup.Use(middlewares.AuthMiddleware())
	{
		// filter input comes in the body; the admin UI posts saved filters
		logGroup.POST("/search", logController.GetLogs)
	}
}
