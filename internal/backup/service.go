package backup

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrVersionNotFound = errors.New("version not found")

type BackupService struct {
	DB       *gorm.DB
	Versions VersionLookup
}

func (bs *BackupService) CreateBackup(dashboardID, versionID, backupType string) (*DashboardBackup, error) {
	size, found, err := bs.Versions.VersionSize(dashboardID, versionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrVersionNotFound
	}

	retention := RetentionDaysDefault
	if backupType == TypeManual {
		retention = RetentionDaysManual
	}

	b := &DashboardBackup{
		ID:            uuid.NewString(),
		DashboardID:   dashboardID,
		VersionID:     versionID,
		BackupType:    backupType,
		CreatedAt:     time.Now().UTC(),
		RetentionDays: retention,
		Size:          size,
		IsCompressed:  true,
	}

	if err := bs.DB.Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (bs *BackupService) GetBackups(dashboardID string) ([]DashboardBackup, error) {
	var backups []DashboardBackup
	err := bs.DB.
		Where("dashboard_id = ?", dashboardID).
		Order("created_at asc").
		Find(&backups).Error
	if err != nil {
		return nil, err
	}
	return backups, nil
}

// CleanupExpiredBackups removes every backup whose retention window has
// passed and returns how many were removed. Running it again without new
// backups removes nothing.
func (bs *BackupService) CleanupExpiredBackups(dashboardID string) (int, error) {
	backups, err := bs.GetBackups(dashboardID)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	expired := make([]string, 0, len(backups))
	for _, b := range backups {
		if !b.ExpiresAt().After(now) {
			expired = append(expired, b.ID)
		}
	}

	if len(expired) == 0 {
		return 0, nil
	}
	if err := bs.DB.Where("id IN ?", expired).Delete(&DashboardBackup{}).Error; err != nil {
		return 0, err
	}
	return len(expired), nil
}
