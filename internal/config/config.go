package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Backend selection
	DataBackend string
	LoadTimeout time.Duration

	// File backend
	DataDir string

	// HTTP backend
	DonorsBaseURL string

	// Database
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID   string
	GoogleDonorsSheetName string
	GoogleSilentSheetName string

	// S3
	S3Bucket    string
	S3DonorsKey string
	S3SilentKey string
	AWSRegion   string

	// Presentation
	SiteConfig     string
	CurrencySymbol string
	Locale         string

	// Request limits
	RateLimitPerMinute int
	TrustedProxies     []string

	// Timers
	SpotlightInterval time.Duration
	SpotlightFade     time.Duration
	CounterDuration   time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend: getEnv("DATA_BACKEND", "file"),
		LoadTimeout: getEnvDuration("LOAD_TIMEOUT", 10*time.Second),

		DataDir:       getEnv("DATA_DIR", "data"),
		DonorsBaseURL: getEnv("DONORS_BASE_URL", ""),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/donors.db"),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleDonorsSheetName: getEnv("GOOGLE_DONORS_SHEET_NAME", "Donors"),
		GoogleSilentSheetName: getEnv("GOOGLE_SILENT_SHEET_NAME", "Silent"),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		S3DonorsKey: getEnv("S3_DONORS_KEY", "donors.json"),
		S3SilentKey: getEnv("S3_SILENT_KEY", "silent-donations.json"),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),

		SiteConfig:     getEnv("SITE_CONFIG", "data/site.yaml"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "$"),
		Locale:         getEnv("LOCALE", "en-US"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),

		SpotlightInterval: getEnvDuration("SPOTLIGHT_INTERVAL", 3*time.Second),
		SpotlightFade:     getEnvDuration("SPOTLIGHT_FADE", 300*time.Millisecond),
		CounterDuration:   getEnvDuration("COUNTER_DURATION", 2*time.Second),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// Validate data backend
	validBackends := []string{"file", "http", "sqlite", "sheets", "s3"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "file":
		if c.DataDir == "" {
			errors = append(errors, "data directory cannot be empty when using file backend")
		}
	case "http":
		if c.DonorsBaseURL == "" {
			errors = append(errors, "DONORS_BASE_URL is required when using http backend")
		} else if parsedURL, err := url.Parse(c.DonorsBaseURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid donors base URL '%s': %v", c.DonorsBaseURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid donors base URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleDonorsSheetName == "" {
			errors = append(errors, "Google donors sheet name is required when using sheets backend")
		}
	case "s3":
		if c.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET is required when using s3 backend")
		}
		if c.AWSRegion == "" {
			errors = append(errors, "AWS_REGION is required when using s3 backend")
		}
	}

	if _, err := language.Parse(c.Locale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid locale '%s': %v", c.Locale, err))
	}

	// Validate timers
	if c.SpotlightInterval < 500*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid spotlight interval %v: must be at least 500ms", c.SpotlightInterval))
	}
	if c.SpotlightFade < 0 || c.SpotlightFade >= c.SpotlightInterval {
		errors = append(errors, fmt.Sprintf("invalid spotlight fade %v: must be non-negative and shorter than the interval", c.SpotlightFade))
	}
	if c.CounterDuration <= 0 || c.CounterDuration > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid counter duration %v: must be between 0 and 1 minute", c.CounterDuration))
	}
	if c.LoadTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid load timeout %v: must be at least 1 second", c.LoadTimeout))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
