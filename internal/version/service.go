package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"dashboard-versioning-api/internal/backup"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrVersionNotFound = errors.New("version not found")

type VersionService struct {
	DB      *gorm.DB
	Backups BackupRecorder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lockDashboard serializes version writes per dashboard so that reading the
// last version and appending the next one is atomic. Two concurrent creates
// must not derive the same version number or deactivate the same row twice.
func (vs *VersionService) lockDashboard(dashboardID string) func() {
	vs.mu.Lock()
	if vs.locks == nil {
		vs.locks = make(map[string]*sync.Mutex)
	}
	l, ok := vs.locks[dashboardID]
	if !ok {
		l = &sync.Mutex{}
		vs.locks[dashboardID] = l
	}
	vs.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (vs *VersionService) GetVersionHistory(dashboardID string) ([]DashboardVersion, error) {
	var versions []DashboardVersion
	err := vs.DB.
		Where("dashboard_id = ?", dashboardID).
		Order("seq asc").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}

func (vs *VersionService) GetVersion(dashboardID, versionID string) (*DashboardVersion, error) {
	var v DashboardVersion
	err := vs.DB.
		Where("dashboard_id = ? AND id = ?", dashboardID, versionID).
		First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVersionNotFound
		}
		return nil, err
	}
	return &v, nil
}

// VersionSize implements the backup service's version lookup.
func (vs *VersionService) VersionSize(dashboardID, versionID string) (float64, bool, error) {
	v, err := vs.GetVersion(dashboardID, versionID)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return v.Size, true, nil
}

func (vs *VersionService) CreateVersion(dashboardID string, input CreateVersionInput) (*DashboardVersion, error) {
	unlock := vs.lockDashboard(dashboardID)
	defer unlock()
	return vs.createVersionLocked(dashboardID, input)
}

func (vs *VersionService) createVersionLocked(dashboardID string, input CreateVersionInput) (*DashboardVersion, error) {
	var last DashboardVersion
	hasPrevious := true
	err := vs.DB.
		Where("dashboard_id = ?", dashboardID).
		Order("seq desc").
		First(&last).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		// no prior versions is the valid base case, not an error
		hasPrevious = false
	}

	name := input.Name
	if name == "" {
		name = "Untitled Version"
	}
	createdBy := input.CreatedBy
	if createdBy == "" {
		createdBy = "current-user"
	}

	widgets := input.Widgets
	if widgets == nil {
		widgets = []Widget{}
	}
	layout := input.Layout
	if layout == nil {
		layout = []LayoutItem{}
	}
	settings := input.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	widgetsJSON, err := json.Marshal(widgets)
	if err != nil {
		return nil, err
	}
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return nil, err
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, err
	}

	base := "0.0.0"
	if hasPrevious {
		base = last.Version
	}

	next := &DashboardVersion{
		ID:            uuid.NewString(),
		DashboardID:   dashboardID,
		Version:       nextVersionNumber(base),
		Name:          name,
		Description:   input.Description,
		Changes:       input.Changes,
		Widgets:       datatypes.JSON(widgetsJSON),
		Layout:        datatypes.JSON(layoutJSON),
		Settings:      datatypes.JSON(settingsJSON),
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
		Seq:           1,
		IsActive:      true,
		Tags:          input.Tags,
		Size:          snapshotSize(len(widgets), len(layout)),
		CommitMessage: input.CommitMessage,
	}
	if hasPrevious {
		parent := last.ID
		next.ParentVersion = &parent
		next.Seq = last.Seq + 1
	}

	err = vs.DB.Transaction(func(tx *gorm.DB) error {
		if hasPrevious {
			if err := tx.Model(&DashboardVersion{}).
				Where("dashboard_id = ? AND is_active = ?", dashboardID, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(next).Error
	})
	if err != nil {
		return nil, err
	}

	if _, err := vs.Backups.CreateBackup(dashboardID, next.ID, backup.TypeAuto); err != nil {
		return nil, fmt.Errorf("auto backup: %w", err)
	}

	return next, nil
}

func (vs *VersionService) RollbackToVersion(dashboardID, versionID string) (*DashboardVersion, error) {
	unlock := vs.lockDashboard(dashboardID)
	defer unlock()

	target, err := vs.GetVersion(dashboardID, versionID)
	if err != nil {
		return nil, err
	}

	var current DashboardVersion
	err = vs.DB.
		Where("dashboard_id = ? AND is_active = ?", dashboardID, true).
		First(&current).Error
	if err == nil {
		if _, err := vs.Backups.CreateBackup(dashboardID, current.ID, backup.TypePreRollback); err != nil {
			return nil, fmt.Errorf("pre-rollback backup: %w", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	input := CreateVersionInput{
		Name:          fmt.Sprintf("Rollback to %s", target.Version),
		Description:   fmt.Sprintf("Rolled back to version %s", target.Version),
		CommitMessage: fmt.Sprintf("Rollback to version %s", target.Version),
		Changes:       append([]string{}, target.Changes...),
		Tags:          append(append([]string{}, target.Tags...), "rollback"),
		CreatedBy:     target.CreatedBy,
	}
	if err := json.Unmarshal(target.Widgets, &input.Widgets); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(target.Layout, &input.Layout); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(target.Settings, &input.Settings); err != nil {
		return nil, err
	}

	// history is append-only: the rollback becomes a new head version
	return vs.createVersionLocked(dashboardID, input)
}

// nextVersionNumber bumps the patch component: "1.2.0" -> "1.2.1".
func nextVersionNumber(current string) string {
	major, minor, patch := 0, 0, 0
	if parts := strings.Split(current, "."); len(parts) == 3 {
		major, _ = strconv.Atoi(parts[0])
		minor, _ = strconv.Atoi(parts[1])
		patch, _ = strconv.Atoi(parts[2])
	}
	return fmt.Sprintf("%d.%d.%d", major, minor, patch+1)
}

// snapshotSize estimates the snapshot footprint in KB, one decimal place.
func snapshotSize(widgetCount, layoutCount int) float64 {
	return math.Round((float64(widgetCount)*2.5+float64(layoutCount)*0.5)*10) / 10
}
