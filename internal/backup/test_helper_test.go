package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"dashboard-versioning-api/internal/logs"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:backup_test_%d?mode=memory&cache=shared", id)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&DashboardBackup{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// stubVersionLookup answers VersionSize from a fixed size table.
type stubVersionLookup struct {
	Sizes map[string]float64
	Err   error
}

func (s *stubVersionLookup) VersionSize(dashboardID, versionID string) (float64, bool, error) {
	if s.Err != nil {
		return 0, false, s.Err
	}
	size, ok := s.Sizes[versionID]
	return size, ok, nil
}

func newTestService(t *testing.T, sizes map[string]float64) *BackupService {
	t.Helper()
	return &BackupService{
		DB:       newTestDB(t),
		Versions: &stubVersionLookup{Sizes: sizes},
	}
}

// -----------------------------------------------------------------------------
// HTTP helpers
// -----------------------------------------------------------------------------

func mockAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("Authorization")) != "Bearer test" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-UserID"))
		if userID == "" {
			userID = "user-1"
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func setupRouterForController(bc *BackupController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	g := r.Group("/api/dashboards")
	g.Use(mockAuthMiddleware())
	{
		g.POST("/:dashboardId/backups", bc.CreateBackup)
		g.GET("/:dashboardId/backups", bc.GetBackups)
		g.POST("/:dashboardId/backups/cleanup", bc.CleanupExpiredBackups)
	}
	return r
}

func doReq(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newJSONReq(method, url string, body any, headers map[string]string) *http.Request {
	var b []byte
	if body != nil {
		b, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, url, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer test"}
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected %d got %d body=%s", want, w.Code, w.Body.String())
	}
}

// ---- fake log service ----

type fakeLogService struct {
	Calls []logs.SystemLog
	Err   error
}

func (f *fakeLogService) Log(l logs.SystemLog, payload interface{}) error {
	f.Calls = append(f.Calls, l)
	return f.Err
}

// ---- fake backup service ----

type fakeBackupService struct {
	Called map[string]int

	LastDashboardID string
	LastVersionID   string
	LastBackupType  string

	CreateResult  *DashboardBackup
	BackupsResult []DashboardBackup
	CleanupResult int
	Err           error
}

func (f *fakeBackupService) bump(name string) {
	if f.Called == nil {
		f.Called = map[string]int{}
	}
	f.Called[name]++
}

func (f *fakeBackupService) CreateBackup(dashboardID, versionID, backupType string) (*DashboardBackup, error) {
	f.bump("CreateBackup")
	f.LastDashboardID = dashboardID
	f.LastVersionID = versionID
	f.LastBackupType = backupType
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CreateResult, nil
}

func (f *fakeBackupService) GetBackups(dashboardID string) ([]DashboardBackup, error) {
	f.bump("GetBackups")
	f.LastDashboardID = dashboardID
	return f.BackupsResult, f.Err
}

func (f *fakeBackupService) CleanupExpiredBackups(dashboardID string) (int, error) {
	f.bump("CleanupExpiredBackups")
	f.LastDashboardID = dashboardID
	return f.CleanupResult, f.Err
}
