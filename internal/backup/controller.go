package backup

import (
	"errors"
	"fmt"
	"net/http"

	"dashboard-versioning-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type BackupController struct {
	BackupService BackupServicePort
	LogService    LogServicePort
}

func (bc *BackupController) CreateBackup(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	userIDVal, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return
	}
	userID, ok := userIDVal.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return
	}

	var input CreateBackupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := bc.BackupService.CreateBackup(dashboardID, input.VersionID, input.BackupType)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := bc.LogService.Log(logs.SystemLog{
		Level:       "INFO",
		Service:     "backup",
		Action:      "CREATE_BACKUP",
		Message:     fmt.Sprintf("%s backup created for dashboard %s", created.BackupType, dashboardID),
		UserID:      &userID,
		DashboardID: &dashboardID,
	}, gin.H{"backup_id": created.ID, "version_id": created.VersionID}); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusCreated, created)
}

func (bc *BackupController) GetBackups(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	backups, err := bc.BackupService.GetBackups(dashboardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": backups})
}

func (bc *BackupController) CleanupExpiredBackups(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	removed, err := bc.BackupService.CleanupExpiredBackups(dashboardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
