package export

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type ExportConfig struct {
	Format                string `gorm:"size:10;not null" json:"format" binding:"required"`
	IncludeData           bool   `json:"include_data"`
	IncludeVersionHistory bool   `json:"include_version_history"`
	IncludeSharing        bool   `json:"include_sharing"`
	CompressionLevel      string `gorm:"size:10;not null" json:"compression_level" binding:"required"`
	Watermark             string `gorm:"size:255" json:"watermark,omitempty"`
	Password              string `gorm:"size:255" json:"password,omitempty"`
}

type ExportJob struct {
	ID           string       `gorm:"primaryKey;size:64" json:"id"`
	DashboardID  string       `gorm:"size:64;not null;index" json:"dashboard_id"`
	Config       ExportConfig `gorm:"embedded;embeddedPrefix:config_" json:"config"`
	Status       string       `gorm:"size:20;not null" json:"status"`
	Progress     int          `gorm:"not null" json:"progress"`
	DownloadURL  string       `gorm:"size:512" json:"download_url,omitempty"`
	ErrorMessage string       `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	ExpiresAt    time.Time    `gorm:"not null;index" json:"expires_at"`
	FileSize     int          `json:"file_size,omitempty"`

	// Rendered artifact, either inline or as a GCS object reference.
	Artifact       []byte `gorm:"type:bytea" json:"-"`
	ArtifactType   string `gorm:"size:100" json:"-"`
	ArtifactObject string `gorm:"size:512" json:"-"`
}

func (ExportJob) TableName() string { return "export_jobs" }
