package backup

import "dashboard-versioning-api/internal/logs"

type BackupServicePort interface {
	CreateBackup(dashboardID, versionID, backupType string) (*DashboardBackup, error)
	GetBackups(dashboardID string) ([]DashboardBackup, error)
	CleanupExpiredBackups(dashboardID string) (int, error)
}

// VersionLookup reports the stored size of a version, or found=false when no
// such version exists for the dashboard. Implemented by the version service;
// keeping the interface here avoids an import cycle with internal/version.
type VersionLookup interface {
	VersionSize(dashboardID, versionID string) (size float64, found bool, err error)
}

type LogServicePort interface {
	Log(entry logs.SystemLog, metadata interface{}) error
}
