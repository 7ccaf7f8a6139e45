package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidExportFormat  = errors.New("invalid export format")
	ErrExportJobNotFound    = errors.New("export job not found")
	ErrArtifactNotAvailable = errors.New("export artifact not available")
)

// test seam, same shape as a direct storage.NewClient call
var newGCSClientHook = func(ctx context.Context) (*storage.Client, error) {
	return storage.NewClient(ctx)
}

var validFormats = map[string]bool{
	"json": true,
	"pdf":  true,
	"png":  true,
	"html": true,
	"csv":  true,
	"xlsx": true,
}

var compressionFactor = map[string]float64{
	"none":   1.0,
	"low":    0.8,
	"medium": 0.6,
	"high":   0.4,
}

// progress checkpoints the pipeline walks through, always ending at 100
var progressSteps = []int{10, 30, 50, 70, 85, 100}

const (
	DefaultStepDelay = 500 * time.Millisecond
	jobTTL           = 24 * time.Hour
)

type ExportService struct {
	DB       *gorm.DB
	Versions VersionSource

	// Bucket, when set, moves artifacts to GCS instead of the DB row.
	Bucket string

	// StepDelay is the pause between progress checkpoints; tests shrink it.
	StepDelay time.Duration
}

func (es *ExportService) stepDelay() time.Duration {
	if es.StepDelay > 0 {
		return es.StepDelay
	}
	return DefaultStepDelay
}

// CreateExportJob stores the job as pending and returns immediately; the
// progression runs in the background and is observable via GetExportJob.
func (es *ExportService) CreateExportJob(dashboardID string, cfg ExportConfig) (*ExportJob, error) {
	if !validFormats[cfg.Format] {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExportFormat, cfg.Format)
	}
	if _, ok := compressionFactor[cfg.CompressionLevel]; !ok {
		return nil, fmt.Errorf("%w: compression %q", ErrInvalidExportFormat, cfg.CompressionLevel)
	}

	now := time.Now().UTC()
	job := &ExportJob{
		ID:          uuid.NewString(),
		DashboardID: dashboardID,
		Config:      cfg,
		Status:      StatusPending,
		Progress:    0,
		CreatedAt:   now,
		ExpiresAt:   now.Add(jobTTL),
	}

	if err := es.DB.Create(job).Error; err != nil {
		return nil, err
	}

	go es.processExportJob(job.ID)

	return job, nil
}

func (es *ExportService) processExportJob(jobID string) {
	var job ExportJob
	if err := es.DB.First(&job, "id = ?", jobID).Error; err != nil {
		return
	}

	if err := es.updateJob(jobID, map[string]interface{}{"status": StatusProcessing}); err != nil {
		return
	}

	for _, step := range progressSteps {
		time.Sleep(es.stepDelay())

		if step < 100 {
			if err := es.updateJob(jobID, map[string]interface{}{"progress": step}); err != nil {
				return
			}
			continue
		}

		artifact, contentType, err := renderArtifact(es.Versions, job.DashboardID, job.Config)
		if err != nil {
			_ = es.updateJob(jobID, map[string]interface{}{
				"status":        StatusFailed,
				"error_message": err.Error(),
			})
			return
		}

		downloadURL := fmt.Sprintf("/downloads/dashboard-%s-%d.%s",
			job.DashboardID, time.Now().UnixMilli(), job.Config.Format)

		updates := map[string]interface{}{
			"progress":     100,
			"status":       StatusCompleted,
			"download_url": downloadURL,
			"file_size":    estimateExportSize(job.Config),
		}

		if artifact != nil {
			if es.Bucket != "" {
				object := "exports/" + path.Base(downloadURL)
				if err := es.uploadArtifact(object, artifact, contentType); err != nil {
					_ = es.updateJob(jobID, map[string]interface{}{
						"status":        StatusFailed,
						"error_message": err.Error(),
					})
					return
				}
				updates["artifact_object"] = object
				updates["artifact_type"] = contentType
			} else {
				updates["artifact"] = artifact
				updates["artifact_type"] = contentType
			}
		}

		if err := es.updateJob(jobID, updates); err != nil {
			// do not leave the job stuck mid-processing
			_ = es.updateJob(jobID, map[string]interface{}{
				"status":        StatusFailed,
				"error_message": err.Error(),
			})
		}
	}
}

func (es *ExportService) updateJob(jobID string, updates map[string]interface{}) error {
	return es.DB.Model(&ExportJob{}).Where("id = ?", jobID).Updates(updates).Error
}

func (es *ExportService) uploadArtifact(object string, data []byte, contentType string) error {
	ctx := context.Background()
	client, err := newGCSClientHook(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	w := client.Bucket(es.Bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (es *ExportService) readArtifact(object string) ([]byte, error) {
	ctx := context.Background()
	client, err := newGCSClientHook(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	r, err := client.Bucket(es.Bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

func (es *ExportService) GetExportJob(jobID string) (*ExportJob, error) {
	var job ExportJob
	err := es.DB.First(&job, "id = ?", jobID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExportJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

func (es *ExportService) GetExportHistory(dashboardID string) ([]ExportJob, error) {
	var jobs []ExportJob
	err := es.DB.
		Where("dashboard_id = ?", dashboardID).
		Order("created_at asc").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (es *ExportService) GetArtifact(jobID string) ([]byte, string, string, error) {
	job, err := es.GetExportJob(jobID)
	if err != nil {
		return nil, "", "", err
	}
	if job.Status != StatusCompleted {
		return nil, "", "", ErrArtifactNotAvailable
	}

	filename := path.Base(job.DownloadURL)

	if len(job.Artifact) > 0 {
		return job.Artifact, job.ArtifactType, filename, nil
	}
	if job.ArtifactObject != "" && es.Bucket != "" {
		data, err := es.readArtifact(job.ArtifactObject)
		if err != nil {
			return nil, "", "", err
		}
		return data, job.ArtifactType, filename, nil
	}

	// pdf/png exports complete locator-only, nothing is rendered server-side
	return nil, "", "", ErrArtifactNotAvailable
}

// CleanupExpiredExports removes every job past its 24h expiry, whatever its
// status. Second run with no new jobs removes nothing.
func (es *ExportService) CleanupExpiredExports() (int, error) {
	res := es.DB.Where("expires_at <= ?", time.Now().UTC()).Delete(&ExportJob{})
	if res.Error != nil {
		return 0, res.Error
	}
	return int(res.RowsAffected), nil
}

// estimateExportSize mirrors the sizing heuristic the dashboard UI displays:
// base 50, x2 data, x1.5 history, x1.2 sharing, scaled by compression.
func estimateExportSize(cfg ExportConfig) int {
	size := 50.0
	if cfg.IncludeData {
		size *= 2
	}
	if cfg.IncludeVersionHistory {
		size *= 1.5
	}
	if cfg.IncludeSharing {
		size *= 1.2
	}
	return int(math.Round(size * compressionFactor[cfg.CompressionLevel]))
}
