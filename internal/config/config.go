package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
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

// MinIOConfig holds settings for an S3-compatible store reached through minio-go.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PublicURL string
}

func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// S3Config holds settings for the S3 endpoint of the managed storage
// (path-style addressing through aws-sdk-go-v2).
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKey != "" && c.SecretKey != ""
}

// SupabaseConfig is the managed backend: project URL for public object URLs
// and the service key for the storage REST API.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
}

func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.ServiceKey != ""
}

// StorageConfig groups bucket names and upload limits.
type StorageConfig struct {
	ChangelogBucket string
	ImageBucket     string
	MaxUploadBytes  int64
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

type MeiliConfig struct {
	URL    string
	APIKey string
	Index  string
}

// AuthConfig configures bearer token verification against the identity
// provider's JWKS endpoint.
type AuthConfig struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

type AutosaveConfig struct {
	ContentWindowMs  int
	CategoryWindowMs int
	SessionIdleSec   int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost     string
	Port        string
	LogLevel    string
	CORSOrigins []string
	Database    DatabaseConfig
	MinIO       MinIOConfig
	S3          S3Config
	Supabase    SupabaseConfig
	Storage     StorageConfig
	Redis       RedisConfig
	Meili       MeiliConfig
	Auth        AuthConfig
	Autosave    AutosaveConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence.
func Load() *AppConfig {
	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")
	return &AppConfig{
		AppHost:     getEnv("APP_HOST", "localhost:8080"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		Database: DatabaseConfig{
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
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: strings.TrimRight(getEnv("MINIO_PUBLIC_URL", ""), "/"),
		},
		S3: S3Config{
			Endpoint:  getEnv("SUPABASE_S3_ENDPOINT", ""),
			Region:    getEnv("SUPABASE_S3_REGION", "us-east-1"),
			AccessKey: getEnv("SUPABASE_S3_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("SUPABASE_S3_SECRET_ACCESS_KEY", ""),
		},
		Supabase: SupabaseConfig{
			URL:        supabaseURL,
			ServiceKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		},
		Storage: StorageConfig{
			ChangelogBucket: getEnv("CHANGELOG_BUCKET", "changelog"),
			ImageBucket:     getEnv("IMAGE_BUCKET", "uploads"),
			MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", 2*1024*1024)),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			TTLSeconds: getEnvInt("REDIS_TTL_SEC", 60),
		},
		Meili: MeiliConfig{
			URL:    getEnv("MEILI_URL", ""),
			APIKey: getEnv("MEILI_API_KEY", ""),
			Index:  getEnv("MEILI_INDEX", "docs"),
		},
		Auth: AuthConfig{
			JWKSURL:  getEnv("AUTH_JWKS_URL", jwksFromSupabase(supabaseURL)),
			Issuer:   getEnv("AUTH_ISSUER", ""),
			Audience: getEnv("AUTH_AUDIENCE", "authenticated"),
		},
		Autosave: AutosaveConfig{
			ContentWindowMs:  getEnvInt("AUTOSAVE_CONTENT_WINDOW_MS", 1000),
			CategoryWindowMs: getEnvInt("AUTOSAVE_CATEGORY_WINDOW_MS", 800),
			SessionIdleSec:   getEnvInt("AUTOSAVE_SESSION_IDLE_SEC", 1800),
		},
	}
}

func jwksFromSupabase(base string) string {
	if base == "" {
		return ""
	}
	return base + "/auth/v1/.well-known/jwks.json"
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

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
