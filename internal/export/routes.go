package export

import (
	"dashboard-versioning-api/internal/logs"
	"dashboard-versioning-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, exportService *ExportService, logService *logs.LogService) {
	exportController := &ExportController{ExportService: exportService, LogService: logService}

	dashboardGroup := r.Group("/api/dashboards")
	dashboardGroup.Use(middlewares.AuthMiddleware())
	{
		dashboardGroup.POST("/:dashboardId/exports", exportController.CreateExportJob)
		dashboardGroup.GET("/:dashboardId/exports", exportController.GetExportHistory)
	}

	jobGroup := r.Group("/api/exports")
	jobGroup.Use(middlewares.AuthMiddleware())
	{
		jobGroup.POST("/cleanup", exportController.CleanupExpiredExports)
		jobGroup.GET("/:jobId", exportController.GetExportJob)
		jobGroup.GET("/:jobId/download", exportController.DownloadArtifact)
	}
}
