package version

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"dashboard-versioning-api/internal/backup"
	"dashboard-versioning-api/internal/logs"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// -----------------------------------------------------------------------------
// Test DB helpers (sqlite in-memory, isolated per test)
// -----------------------------------------------------------------------------

var testDBSeq uint64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBSeq, 1)
	dsn := fmt.Sprintf("file:version_test_%d?mode=memory&cache=shared", id)

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

	if err := db.AutoMigrate(
		&DashboardVersion{},
		&backup.DashboardBackup{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// newTestService wires a real backup service to the version service the same
// way main does, so auto and pre-rollback backups land in the test DB.
func newTestService(t *testing.T) (*VersionService, *backup.BackupService) {
	t.Helper()

	db := newTestDB(t)
	bs := &backup.BackupService{DB: db}
	vs := &VersionService{DB: db, Backups: bs}
	bs.Versions = vs
	return vs, bs
}

func mustCreate(t *testing.T, vs *VersionService, dashboardID string, input CreateVersionInput) *DashboardVersion {
	t.Helper()
	v, err := vs.CreateVersion(dashboardID, input)
	if err != nil {
		t.Fatalf("CreateVersion: %v", err)
	}
	return v
}

func mustJSONRaw(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
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

func setupRouterForController(vc *VersionController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	g := r.Group("/api/dashboards")
	g.Use(mockAuthMiddleware())
	{
		g.POST("/:dashboardId/versions", vc.CreateVersion)
		g.GET("/:dashboardId/versions", vc.GetVersionHistory)
		g.GET("/:dashboardId/versions/:versionId", vc.GetVersion)
		g.POST("/:dashboardId/versions/:versionId/rollback", vc.RollbackToVersion)
		g.GET("/:dashboardId/versions/:versionId/compare/:toId", vc.CompareVersions)
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
	Calls   []logs.SystemLog
	Payload []any
	Err     error
}

func (f *fakeLogService) Log(l logs.SystemLog, payload interface{}) error {
	f.Calls = append(f.Calls, l)
	f.Payload = append(f.Payload, payload)
	return f.Err
}

// ---- fake version service ----

type fakeVersionService struct {
	Called map[string]int

	LastCreateInput CreateVersionInput
	LastDashboardID string
	LastVersionID   string

	HistoryResult []DashboardVersion
	VersionResult *DashboardVersion
	CreateResult  *DashboardVersion
	CompareResult *VersionComparison
	Err           error
}

func (f *fakeVersionService) bump(name string) {
	if f.Called == nil {
		f.Called = map[string]int{}
	}
	f.Called[name]++
}

func (f *fakeVersionService) GetVersionHistory(dashboardID string) ([]DashboardVersion, error) {
	f.bump("GetVersionHistory")
	f.LastDashboardID = dashboardID
	return f.HistoryResult, f.Err
}

func (f *fakeVersionService) GetVersion(dashboardID, versionID string) (*DashboardVersion, error) {
	f.bump("GetVersion")
	f.LastDashboardID = dashboardID
	f.LastVersionID = versionID
	if f.Err != nil {
		return nil, f.Err
	}
	return f.VersionResult, nil
}

func (f *fakeVersionService) CreateVersion(dashboardID string, input CreateVersionInput) (*DashboardVersion, error) {
	f.bump("CreateVersion")
	f.LastDashboardID = dashboardID
	f.LastCreateInput = input
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CreateResult, nil
}

func (f *fakeVersionService) RollbackToVersion(dashboardID, versionID string) (*DashboardVersion, error) {
	f.bump("RollbackToVersion")
	f.LastDashboardID = dashboardID
	f.LastVersionID = versionID
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CreateResult, nil
}

func (f *fakeVersionService) CompareVersions(dashboardID, fromVersionID, toVersionID string) (*VersionComparison, error) {
	f.bump("CompareVersions")
	f.LastDashboardID = dashboardID
	if f.Err != nil {
		return nil, f.Err
	}
	return f.CompareResult, nil
}
