package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"spendboard/internal/source"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Data source
	DataSource   string
	DataDir      string
	FactoryFile  string
	SupplierFile string
	CategoryFile string
	FileEncoding string
	DataTTL      time.Duration

	// S3
	S3Bucket          string
	S3Prefix          string
	S3Region          string
	S3Endpoint        string
	S3PathStyle       bool
	S3AccessKeyID     string
	S3SecretAccessKey string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleFactorySheet       string
	GoogleSupplierSheet      string
	GoogleCategorySheet      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Load history
	SQLiteDBPath string

	// AMQP
	AMQPURL          string
	AMQPExchange     string
	AMQPRefreshQueue string

	// Worker
	RefreshInterval    time.Duration
	RefreshMinInterval time.Duration

	// View cache
	CacheBackend string
	RedisAddr    string
	CacheTTL     time.Duration
	CacheSize    int

	// Analysis
	RegionPrefixes   []string
	RiskRegisterFile string
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8501"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataSource:   getEnv("DATA_SOURCE", "file"),
		DataDir:      getEnv("DATA_DIR", "./data"),
		FactoryFile:  getEnv("FACTORY_FILE", ""),
		SupplierFile: getEnv("SUPPLIER_FILE", ""),
		CategoryFile: getEnv("CATEGORY_FILE", ""),
		FileEncoding: getEnv("FILE_ENCODING", "utf-8-sig"),
		DataTTL:      getEnvDuration("DATA_TTL", 60*time.Second),

		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		S3Region:          getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PathStyle:       getEnvBool("S3_PATH_STYLE", false),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleFactorySheet:       getEnv("GOOGLE_FACTORY_SHEET", ""),
		GoogleSupplierSheet:      getEnv("GOOGLE_SUPPLIER_SHEET", ""),
		GoogleCategorySheet:      getEnv("GOOGLE_CATEGORY_SHEET", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/spendboard.db"),

		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "spendboard"),
		AMQPRefreshQueue: getEnv("AMQP_REFRESH_QUEUE", "spendboard_refresh"),

		RefreshInterval:    getEnvDuration("REFRESH_INTERVAL", 0),
		RefreshMinInterval: getEnvDuration("REFRESH_MIN_INTERVAL", 10*time.Second),

		CacheBackend: getEnv("CACHE_BACKEND", "memory"),
		RedisAddr:    getEnv("REDIS_ADDR", ""),
		CacheTTL:     getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize:    getEnvInt("CACHE_SIZE", 256),

		RegionPrefixes:   getEnvList("REGION_PREFIXES", []string{"天津", "苏州"}),
		RiskRegisterFile: getEnv("RISK_REGISTER_FILE", ""),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, ok := ParseLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	validSources := []string{"file", "s3", "sheets", "memory"}
	if !oneOf(validSources, c.DataSource) {
		errors = append(errors, fmt.Sprintf("invalid data source '%s': must be one of %v", c.DataSource, validSources))
	}

	switch c.DataSource {
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "DATA_DIR cannot be empty when using file source")
		} else if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory does not exist: %s", c.DataDir))
		}
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET is required when using s3 source")
		}
		if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
			errors = append(errors, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
		}
		if c.S3Endpoint != "" {
			if u, err := url.Parse(c.S3Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
				errors = append(errors, fmt.Sprintf("invalid S3 endpoint '%s': must be an absolute URL", c.S3Endpoint))
			}
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using sheets source")
		}
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets source")
		}
		if !hasJSON && hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.DataSource == "file" || c.DataSource == "s3" {
		if _, err := source.Encoding(c.FileEncoding); err != nil {
			errors = append(errors, fmt.Sprintf("unknown file encoding '%s'", c.FileEncoding))
		}
	}

	if c.DataTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid data TTL %v: must be at least 1 second", c.DataTTL))
	} else if c.DataTTL > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid data TTL %v: must be at most 24 hours", c.DataTTL))
	}

	// Empty path disables load history.
	if c.SQLiteDBPath != "" {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRefreshQueue == "" {
			errors = append(errors, "AMQP refresh queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RefreshInterval != 0 && c.RefreshInterval < c.DataTTL {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be 0 or at least the data TTL (%v)", c.RefreshInterval, c.DataTTL))
	}

	validCaches := []string{"memory", "redis"}
	if !oneOf(validCaches, c.CacheBackend) {
		errors = append(errors, fmt.Sprintf("invalid cache backend '%s': must be one of %v", c.CacheBackend, validCaches))
	}
	if c.CacheBackend == "redis" && c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR is required when using redis cache")
	}
	if c.CacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be positive", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if c.RiskRegisterFile != "" {
		if _, err := os.Stat(c.RiskRegisterFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("risk register file does not exist: %s", c.RiskRegisterFile))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLevel maps LOG_LEVEL values to slog levels.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func oneOf(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
