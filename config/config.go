package config

import "os"

type Config struct {
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	JWTSecret         string
	BucketName        string
	ExportStepDelayMS string
}

func LoadConfig() Config {
	return Config{
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		BucketName:        os.Getenv("BUCKET_NAME"),
		ExportStepDelayMS: os.Getenv("EXPORT_STEP_DELAY_MS"),
	}
}
