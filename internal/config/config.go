package config

import (
	"os"
	"strconv"
)

// DefaultBackendURL is used when neither API_BASE_URL nor NEXT_PUBLIC_API_URL is set.
const DefaultBackendURL = "http://localhost:8080"

// DatabaseConfig holds PostgreSQL database connection settings.
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

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// BackendConfig points at the ShareTome backend API.
type BackendConfig struct {
	BaseURL    string
	TimeoutSec int
}

// OAuthClient is a client id/secret pair for one OAuth provider.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether both halves of the pair are configured.
func (o OAuthClient) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// AuthConfig holds session provider settings.
type AuthConfig struct {
	// PublicURL is the externally visible origin used to build OAuth redirect URLs.
	PublicURL       string
	DevAuth         bool
	Secret          string
	SessionTTLHours int
	CookieSecure    bool
	GitHub          OAuthClient
	Google          OAuthClient
}

// UploadConfig tunes the upload pipeline.
// MaxConcurrency <= 0 means every staged file is uploaded at once.
type UploadConfig struct {
	MaxConcurrency int
	BatchTTLMin    int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Backend  BackendConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:3000"),
		Port:    getEnv("PORT", "3000"),
		Backend: BackendConfig{
			BaseURL:    getEnv("API_BASE_URL", getEnv("NEXT_PUBLIC_API_URL", DefaultBackendURL)),
			TimeoutSec: getEnvInt("HTTP_CLIENT_TIMEOUT_SEC", 60),
		},
		Auth: AuthConfig{
			PublicURL:       getEnv("AUTH_URL", "http://localhost:3000"),
			DevAuth:         getEnvBool("DEV_AUTH", false),
			Secret:          getEnv("AUTH_SECRET", ""),
			SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 720),
			CookieSecure:    getEnvBool("COOKIE_SECURE", true),
			GitHub: OAuthClient{
				ClientID:     getEnv("GITHUB_ID", ""),
				ClientSecret: getEnv("GITHUB_SECRET", ""),
			},
			Google: OAuthClient{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			},
		},
		Upload: UploadConfig{
			MaxConcurrency: getEnvInt("UPLOAD_MAX_CONCURRENCY", 0),
			BatchTTLMin:    getEnvInt("UPLOAD_BATCH_TTL_MIN", 60),
		},
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
