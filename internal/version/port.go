package version

import (
	"dashboard-versioning-api/internal/backup"
	"dashboard-versioning-api/internal/logs"
)

type VersionServicePort interface {
	GetVersionHistory(dashboardID string) ([]DashboardVersion, error)
	GetVersion(dashboardID, versionID string) (*DashboardVersion, error)
	CreateVersion(dashboardID string, input CreateVersionInput) (*DashboardVersion, error)
	RollbackToVersion(dashboardID, versionID string) (*DashboardVersion, error)
	CompareVersions(dashboardID, fromVersionID, toVersionID string) (*VersionComparison, error)
}

// BackupRecorder is the slice of the backup service the version manager
// needs: recording one backup per version write.
type BackupRecorder interface {
	CreateBackup(dashboardID, versionID, backupType string) (*backup.DashboardBackup, error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, metadata interface{}) error
}
