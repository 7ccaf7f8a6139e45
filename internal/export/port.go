package export

import (
	"dashboard-versioning-api/internal/logs"
	"dashboard-versioning-api/internal/version"
)

type ExportServicePort interface {
	CreateExportJob(dashboardID string, cfg ExportConfig) (*ExportJob, error)
	GetExportJob(jobID string) (*ExportJob, error)
	GetExportHistory(dashboardID string) ([]ExportJob, error)
	GetArtifact(jobID string) (data []byte, contentType string, filename string, err error)
	CleanupExpiredExports() (int, error)
}

// VersionSource supplies the snapshots the renderer turns into artifacts.
// Satisfied by the version service.
type VersionSource interface {
	GetVersionHistory(dashboardID string) ([]version.DashboardVersion, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, metadata interface{}) error
}
