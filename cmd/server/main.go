package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"dashboard-versioning-api/config"
	"dashboard-versioning-api/internal/backup"
	"dashboard-versioning-api/internal/export"
	"dashboard-versioning-api/internal/logs"
	"dashboard-versioning-api/internal/version"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	dsn := "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=disable"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&version.DashboardVersion{},
		&backup.DashboardBackup{},
		&export.ExportJob{},
		&logs.SystemLog{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	logService := &logs.LogService{DB: db}
	logs.RegisterRoutes(r, logService)

	backupService := &backup.BackupService{DB: db}
	versionService := &version.VersionService{DB: db, Backups: backupService}
	backupService.Versions = versionService

	version.RegisterRoutes(r, versionService, logService)
	backup.RegisterRoutes(r, backupService, logService)

	exportService := &export.ExportService{
		DB:       db,
		Versions: versionService,
		Bucket:   cfg.BucketName,
	}
	if ms, err := strconv.Atoi(cfg.ExportStepDelayMS); err == nil && ms > 0 {
		exportService.StepDelay = time.Duration(ms) * time.Millisecond
	}
	export.RegisterRoutes(r, exportService, logService)

	// --- Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0 ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
