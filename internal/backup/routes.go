package backup

import (
	"dashboard-versioning-api/internal/logs"
	"dashboard-versioning-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, backupService *BackupService, logService *logs.LogService) {
	backupController := &BackupController{BackupService: backupService, LogService: logService}

	backupGroup := r.Group("/api/dashboards")
	backupGroup.Use(middlewares.AuthMiddleware())
	{
		backupGroup.POST("/:dashboardId/backups", backupController.CreateBackup)
		backupGroup.GET("/:dashboardId/backups", backupController.GetBackups)
		backupGroup.POST("/:dashboardId/backups/cleanup", backupController.CleanupExpiredBackups)
	}
}
