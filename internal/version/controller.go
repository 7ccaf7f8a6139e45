package version

import (
	"errors"
	"fmt"
	"net/http"

	"dashboard-versioning-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type VersionController struct {
	VersionService VersionServicePort
	LogService     LogServicePort
}

func callerID(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user ID not found"})
		return "", false
	}
	userID, ok := userIDVal.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID"})
		return "", false
	}
	return userID, true
}

func (vc *VersionController) CreateVersion(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	userID, ok := callerID(c)
	if !ok {
		return
	}

	var input CreateVersionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input.CreatedBy = userID

	created, err := vc.VersionService.CreateVersion(dashboardID, input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vc.LogService.Log(logs.SystemLog{
		Level:       "INFO",
		Service:     "version",
		Action:      "CREATE_VERSION",
		Message:     fmt.Sprintf("created version %s for dashboard %s", created.Version, dashboardID),
		UserID:      &userID,
		DashboardID: &dashboardID,
	}, gin.H{"version_id": created.ID}); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusCreated, created)
}

func (vc *VersionController) GetVersionHistory(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	versions, err := vc.VersionService.GetVersionHistory(dashboardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": versions})
}

func (vc *VersionController) GetVersion(c *gin.Context) {
	dashboardID := c.Param("dashboardId")
	versionID := c.Param("versionId")

	v, err := vc.VersionService.GetVersion(dashboardID, versionID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, v)
}

func (vc *VersionController) RollbackToVersion(c *gin.Context) {
	dashboardID := c.Param("dashboardId")
	versionID := c.Param("versionId")

	userID, ok := callerID(c)
	if !ok {
		return
	}

	created, err := vc.VersionService.RollbackToVersion(dashboardID, versionID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := vc.LogService.Log(logs.SystemLog{
		Level:       "INFO",
		Service:     "version",
		Action:      "ROLLBACK_VERSION",
		Message:     fmt.Sprintf("dashboard %s rolled back to version %s as %s", dashboardID, versionID, created.Version),
		UserID:      &userID,
		DashboardID: &dashboardID,
	}, gin.H{"version_id": created.ID}); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusCreated, created)
}

func (vc *VersionController) CompareVersions(c *gin.Context) {
	dashboardID := c.Param("dashboardId")
	fromID := c.Param("versionId")
	toID := c.Param("toId")

	comparison, err := vc.VersionService.CompareVersions(dashboardID, fromID, toID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "version not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, comparison)
}
