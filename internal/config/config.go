package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	DBHost string
	DBPort string
	DBName string
	DBUser string
	DBPass string

	// DBMaxOpenConns is the maximum number of open connections to the database (default 25).
	DBMaxOpenConns int
	// DBMaxIdleConns is the maximum number of idle connections (default 5).
	DBMaxIdleConns int

	// JWTSecret signs and verifies every session token. One secret for both
	// directions; Validate refuses the default in prod.
	JWTSecret string

	// JWTExpireHours is the token lifetime in hours (default 24). Set via JWT_EXPIRE_HOURS.
	JWTExpireHours int

	// Env is "dev" (default) or "prod". When "prod", JWT_SECRET must be set and not the default.
	Env string

	// StorageBackend is "local" (default) or "s3". Local keeps image bytes
	// under UploadDir and serves them from /uploads/; s3 writes to a
	// MinIO/S3 bucket and stores the object URL on the post.
	StorageBackend string

	// UploadDir is where local image uploads land (default "public/uploads").
	UploadDir string

	// UploadMaxBytes caps an uploaded image's size (default 5 MiB).
	UploadMaxBytes int64

	// S3 settings, used when StorageBackend is "s3".
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	// SweepCron schedules the orphan image sweep (default hourly).
	// Empty disables the sweeper.
	SweepCron string

	// SweepMinAgeMin is the minimum age in minutes before an unreferenced
	// image may be swept (default 60). Uploads land before the post that
	// references them, so fresh objects are not orphans yet.
	SweepMinAgeMin int

	// TLSCertFile and TLSKeyFile enable HTTPS when both are set.
	// When empty, the API listens with plain HTTP.
	TLSCertFile string
	TLSKeyFile  string

	// LogFormat is "text" (default) or "json" for structured logging.
	LogFormat string

	// CORSAllowedOrigins is a list of origins allowed for CORS (e.g. https://blog.example.com, http://localhost:5173).
	// Set via CORS_ALLOWED_ORIGINS (comma-separated). When empty, no CORS headers are sent (same-origin only).
	CORSAllowedOrigins []string
}

const defaultJWTSecret = "supersecretkey"

func Load() Config {
	return Config{
		Port: getEnv("PORT", "8800"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBPort: getEnv("DB_PORT", "5432"),
		DBName: getEnv("DB_NAME", "inkwell"),
		DBUser: getEnv("DB_USER", "inkwell"),
		DBPass: getEnv("DB_PASS", "inkwell"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		Env:            getEnv("ENV", "dev"),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
		UploadMaxBytes: int64(getEnvInt("UPLOAD_MAX_MB", 5)) << 20,

		S3Endpoint:  getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Bucket:    getEnv("S3_BUCKET", "inkwell-uploads"),
		S3UseSSL:    getEnv("S3_USE_SSL", "false") == "true",

		SweepCron:      getEnv("SWEEP_CRON", "@hourly"),
		SweepMinAgeMin: getEnvInt("SWEEP_MIN_AGE_MIN", 60),

		// Optional TLS configuration for HTTPS.
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		LogFormat: getEnv("LOG_FORMAT", "text"),

		CORSAllowedOrigins: parseCORSOrigins(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// Validate rejects configurations that must not reach production:
// the default JWT secret in prod, and an unknown storage backend.
func (c Config) Validate() error {
	if c.Env == "prod" && c.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in prod")
	}
	if c.StorageBackend != "local" && c.StorageBackend != "s3" {
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want local or s3)", c.StorageBackend)
	}
	return nil
}

// DatabaseURL returns the postgres DSN used by the migration runner.
func (c Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// TokenTTL converts JWTExpireHours to a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpireHours) * time.Hour
}

// SweepMinAge converts SweepMinAgeMin to a duration.
func (c Config) SweepMinAge() time.Duration {
	return time.Duration(c.SweepMinAgeMin) * time.Minute
}

// parseCORSOrigins splits a comma-separated list of origins and trims spaces. Empty strings are omitted.
func parseCORSOrigins(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if o := strings.TrimSpace(p); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
