package backup

import "time"

const (
	TypeAuto        = "auto"
	TypeManual      = "manual"
	TypePreRollback = "pre-rollback"
)

// Retention windows in days. Manual backups are kept longer because a user
// asked for them explicitly.
const (
	RetentionDaysManual  = 90
	RetentionDaysDefault = 30
)

type DashboardBackup struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	DashboardID   string    `gorm:"size:64;not null;index" json:"dashboard_id"`
	VersionID     string    `gorm:"size:64;not null" json:"version_id"`
	BackupType    string    `gorm:"size:20;not null" json:"backup_type"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	RetentionDays int       `gorm:"not null" json:"retention_days"`
	Size          float64   `json:"size"`
	IsCompressed  bool      `gorm:"not null;default:true" json:"is_compressed"`
}

func (DashboardBackup) TableName() string { return "dashboard_backups" }

// ExpiresAt is the instant the backup becomes sweep-eligible.
func (b DashboardBackup) ExpiresAt() time.Time {
	return b.CreatedAt.AddDate(0, 0, b.RetentionDays)
}

type CreateBackupInput struct {
	VersionID  string `json:"version_id" binding:"required"`
	BackupType string `json:"backup_type" binding:"required,oneof=auto manual pre-rollback"`
}
