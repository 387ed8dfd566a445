package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds record-store connection settings.
// Driver selects the backend: "sqlite" (default, a single local file) or
// "postgres". Path applies to sqlite; the remaining fields to postgres.
type DatabaseConfig struct {
	Driver             string
	Path               string
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// StorageConfig holds attachment store settings.
// Backend selects where uploaded files land: "disk" (default, a local
// directory) or "minio" (S3-compatible object storage).
type StorageConfig struct {
	Backend        string
	UploadDir      string
	MaxUploadBytes int64
}

// MinIOConfig holds object storage settings for the minio backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AdminConfig holds admin authentication settings. PasswordHash is a bcrypt
// hash and takes precedence; Password, if set instead, is hashed once at
// startup. Sessions expire after SessionTTLMin minutes.
type AdminConfig struct {
	Password      string
	PasswordHash  string
	SessionTTLMin int
}

// AppConfig is the centralized configuration struct for the application,
// populated from environment variables and passed in at startup. Nothing in
// the process reads configuration through module-global state.
type AppConfig struct {
	AppHost        string
	Port           string
	BodyLimitBytes int
	Admin          AdminConfig
	Database       DatabaseConfig
	Storage        StorageConfig
	MinIO          MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
		// Hard cap on the whole request body; the attachment store enforces
		// the tighter per-file limit below.
		BodyLimitBytes: getEnvInt("BODY_LIMIT_BYTES", 6*1024*1024),
		Admin: AdminConfig{
			Password:      getEnv("ADMIN_PASSWORD", ""),
			PasswordHash:  getEnv("ADMIN_PASSWORD_HASH", ""),
			SessionTTLMin: getEnvInt("SESSION_TTL_MIN", 60),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "sqlite"),
			Path:               getEnv("DB_PATH", "data/comments.db"),
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "disk"),
			UploadDir:      getEnv("UPLOAD_DIR", "data/uploads"),
			MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 5*1024*1024),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
