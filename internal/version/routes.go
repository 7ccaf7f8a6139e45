package version

import (
	"dashboard-versioning-api/internal/logs"
	"dashboard-versioning-api/internal/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, versionService *VersionService, logService *logs.LogService) {
	versionController := &VersionController{VersionService: versionService, LogService: logService}

	versionGroup := r.Group("/api/dashboards")
	versionGroup.Use(middlewares.AuthMiddleware())
	{
		versionGroup.POST("/:dashboardId/versions", versionController.CreateVersion)
		versionGroup.GET("/:dashboardId/versions", versionController.GetVersionHistory)
		versionGroup.GET("/:dashboardId/versions/:versionId", versionController.GetVersion)
		versionGroup.POST("/:dashboardId/versions/:versionId/rollback", versionController.RollbackToVersion)
		versionGroup.GET("/:dashboardId/versions/:versionId/compare/:toId", versionController.CompareVersions)
	}
}
