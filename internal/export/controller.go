package export

import (
	"errors"
	"fmt"
	"net/http"

	"dashboard-versioning-api/internal/logs"

	"github.com/gin-gonic/gin"
)

type ExportController struct {
	ExportService ExportServicePort
	LogService    LogServicePort
}

func (ec *ExportController) CreateExportJob(c *gin.Context) {
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

	var cfg ExportConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := ec.ExportService.CreateExportJob(dashboardID, cfg)
	if err != nil {
		if errors.Is(err, ErrInvalidExportFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := ec.LogService.Log(logs.SystemLog{
		Level:       "INFO",
		Service:     "export",
		Action:      "CREATE_EXPORT",
		Message:     fmt.Sprintf("%s export started for dashboard %s", cfg.Format, dashboardID),
		UserID:      &userID,
		DashboardID: &dashboardID,
	}, gin.H{"job_id": job.ID}); err != nil {
		fmt.Printf("Failed to insert log: %v\n", err)
	}

	c.JSON(http.StatusAccepted, job)
}

func (ec *ExportController) GetExportJob(c *gin.Context) {
	jobID := c.Param("jobId")

	job, err := ec.ExportService.GetExportJob(jobID)
	if err != nil {
		if errors.Is(err, ErrExportJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "export job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (ec *ExportController) GetExportHistory(c *gin.Context) {
	dashboardID := c.Param("dashboardId")

	jobs, err := ec.ExportService.GetExportHistory(dashboardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": jobs})
}

func (ec *ExportController) DownloadArtifact(c *gin.Context) {
	jobID := c.Param("jobId")

	data, contentType, filename, err := ec.ExportService.GetArtifact(jobID)
	if err != nil {
		switch {
		case errors.Is(err, ErrExportJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "export job not found"})
		case errors.Is(err, ErrArtifactNotAvailable):
			c.JSON(http.StatusNotFound, gin.H{"error": "export artifact not available"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, data)
}

func (ec *ExportController) CleanupExpiredExports(c *gin.Context) {
	removed, err := ec.ExportService.CleanupExpiredExports()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
