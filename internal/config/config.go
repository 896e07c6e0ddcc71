package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"pdf-extract-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	UploadPath     string
	MaxFileSize    int64
	LogLevel       string
	LogFormat      string
	StorageLayout  domain.StorageLayout
	Extractor      string
	PageTimeout    time.Duration
	AllowedOrigins []string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	layout := domain.StorageLayout(strings.ToLower(getEnvOrDefault("STORAGE_LAYOUT", string(domain.LayoutShared))))
	if !layout.Valid() {
		layout = domain.LayoutShared
	}

	return &AppConfig{
		// PORT wins over SERVER_PORT so PaaS-provided ports are honoured.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "5000")),
		UploadPath:     getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", 0), // 0 disables the limit
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "json"),
		StorageLayout:  layout,
		Extractor:      strings.ToLower(getEnvOrDefault("EXTRACTOR", "fitz")),
		PageTimeout:    getEnvDurationOrDefault("PAGE_TIMEOUT", 90*time.Second),
		AllowedOrigins: getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{"*"}),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_KEY", ""),
		SupabaseBucket: getEnvOrDefault("SUPABASE_BUCKET", ""),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size, 0 when unlimited
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetLogFormat returns the log encoding
func (c *AppConfig) GetLogFormat() string {
	return c.LogFormat
}

// GetStorageLayout returns the artifact layout
func (c *AppConfig) GetStorageLayout() domain.StorageLayout {
	return c.StorageLayout
}

// GetExtractor returns the text extraction backend name
func (c *AppConfig) GetExtractor() string {
	return c.Extractor
}

// GetPageTimeout returns the per-page extraction timeout
func (c *AppConfig) GetPageTimeout() time.Duration {
	return c.PageTimeout
}

// GetAllowedOrigins returns the CORS allowed origins
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase service key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseBucket returns the storage bucket used for mirroring
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
