package version

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// DashboardVersion is an immutable snapshot of a dashboard. Only IsActive is
// ever updated after creation; rollback appends a new version instead of
// rewriting history.
type DashboardVersion struct {
	ID            string         `gorm:"primaryKey;size:64" json:"id"`
	DashboardID   string         `gorm:"size:64;not null;index" json:"dashboard_id"`
	Version       string         `gorm:"size:32;not null" json:"version"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Changes       pq.StringArray `gorm:"type:text[]" json:"changes"`
	Widgets       datatypes.JSON `gorm:"type:jsonb" json:"widgets"`
	Layout        datatypes.JSON `gorm:"type:jsonb" json:"layout"`
	Settings      datatypes.JSON `gorm:"type:jsonb" json:"settings"`
	CreatedBy     string         `gorm:"size:64;not null" json:"created_by"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	// Seq orders versions within a dashboard; created_at alone can tie.
	Seq int64 `gorm:"not null;index" json:"-"`
	IsActive      bool           `gorm:"not null;default:false" json:"is_active"`
	Tags          pq.StringArray `gorm:"type:text[]" json:"tags"`
	Size          float64        `json:"size"` // KB estimate
	CommitMessage string         `gorm:"type:text" json:"commit_message,omitempty"`
	ParentVersion *string        `gorm:"size:64" json:"parent_version,omitempty"`
}

func (DashboardVersion) TableName() string { return "dashboard_versions" }

type WidgetPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type Widget struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Position WidgetPosition `json:"position"`
	Config   map[string]any `json:"config,omitempty"`
}

type LayoutItem struct {
	I string `json:"i"`
	X int    `json:"x"`
	Y int    `json:"y"`
	W int    `json:"w"`
	H int    `json:"h"`
}

type CreateVersionInput struct {
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Changes       []string       `json:"changes"`
	Widgets       []Widget       `json:"widgets"`
	Layout        []LayoutItem   `json:"layout"`
	Settings      map[string]any `json:"settings"`
	Tags          []string       `json:"tags"`
	CommitMessage string         `json:"commit_message"`

	// Set from the authenticated caller, never from the request body.
	CreatedBy string `json:"-"`
}

const (
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
	ChangeModified = "modified"
)

const (
	ComponentWidget   = "widget"
	ComponentLayout   = "layout"
	ComponentSettings = "settings"
)

type VersionChange struct {
	Type        string `json:"type"`
	Component   string `json:"component"`
	Path        string `json:"path"`
	OldValue    any    `json:"old_value,omitempty"`
	NewValue    any    `json:"new_value,omitempty"`
	Description string `json:"description"`
}

type ComparisonSummary struct {
	WidgetsAdded    int `json:"widgets_added"`
	WidgetsRemoved  int `json:"widgets_removed"`
	WidgetsModified int `json:"widgets_modified"`
	LayoutChanges   int `json:"layout_changes"`
	SettingChanges  int `json:"setting_changes"`
}

// VersionComparison is derived on demand and never persisted.
type VersionComparison struct {
	DashboardID string            `json:"dashboard_id"`
	FromVersion string            `json:"from_version"`
	ToVersion   string            `json:"to_version"`
	Changes     []VersionChange   `json:"changes"`
	Summary     ComparisonSummary `json:"summary"`
}
