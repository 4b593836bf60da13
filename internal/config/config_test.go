package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validBase returns a config that passes validation with the file backend.
func validBase() Config {
	return Config{
		Port:              "8081",
		LogLevel:          "info",
		DataBackend:       "file",
		DataDir:           "data",
		Locale:            "en-US",
		LoadTimeout:       10 * time.Second,
		SpotlightInterval: 3 * time.Second,
		SpotlightFade:     300 * time.Millisecond,
		CounterDuration:   2 * time.Second,

		RateLimitPerMinute: 60,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid file backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:        "rate limit below one",
			mutate:      func(c *Config) { c.RateLimitPerMinute = 0 },
			wantErr:     true,
			errorString: "invalid rate limit 0",
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "loud" },
			wantErr:     true,
			errorString: "invalid log level 'loud'",
		},
		{
			name:        "invalid data backend",
			mutate:      func(c *Config) { c.DataBackend = "memory" },
			wantErr:     true,
			errorString: "invalid data backend 'memory': must be one of [file http sqlite sheets s3]",
		},
		{
			name:        "file backend missing directory",
			mutate:      func(c *Config) { c.DataDir = "" },
			wantErr:     true,
			errorString: "data directory cannot be empty when using file backend",
		},
		{
			name:        "http backend missing base URL",
			mutate:      func(c *Config) { c.DataBackend = "http" },
			wantErr:     true,
			errorString: "DONORS_BASE_URL is required when using http backend",
		},
		{
			name: "http backend with ftp scheme",
			mutate: func(c *Config) {
				c.DataBackend = "http"
				c.DonorsBaseURL = "ftp://example.org/data"
			},
			wantErr:     true,
			errorString: "invalid donors base URL scheme 'ftp'",
		},
		{
			name: "valid http backend",
			mutate: func(c *Config) {
				c.DataBackend = "http"
				c.DonorsBaseURL = "https://example.org/data"
			},
			wantErr: false,
		},
		{
			name: "sqlite backend missing database path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty when using sqlite backend",
		},
		{
			name:        "sheets backend missing spreadsheet ID",
			mutate:      func(c *Config) { c.DataBackend = "sheets"; c.GoogleDonorsSheetName = "Donors" },
			wantErr:     true,
			errorString: "Google Spreadsheet ID is required when using sheets backend",
		},
		{
			name:        "s3 backend missing bucket",
			mutate:      func(c *Config) { c.DataBackend = "s3"; c.AWSRegion = "eu-west-1" },
			wantErr:     true,
			errorString: "S3_BUCKET is required when using s3 backend",
		},
		{
			name:        "invalid locale",
			mutate:      func(c *Config) { c.Locale = "not a locale!" },
			wantErr:     true,
			errorString: "invalid locale",
		},
		{
			name:        "fade longer than interval",
			mutate:      func(c *Config) { c.SpotlightFade = 5 * time.Second },
			wantErr:     true,
			errorString: "invalid spotlight fade 5s",
		},
		{
			name:        "spotlight interval too short",
			mutate:      func(c *Config) { c.SpotlightInterval = 100 * time.Millisecond; c.SpotlightFade = 0 },
			wantErr:     true,
			errorString: "invalid spotlight interval 100ms: must be at least 500ms",
		},
		{
			name:        "zero counter duration",
			mutate:      func(c *Config) { c.CounterDuration = 0 },
			wantErr:     true,
			errorString: "invalid counter duration 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBase()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Config.Validate() error = nil, wantErr %v", tt.wantErr)
					return
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err.Error(), tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validBase()
	cfg.Port = "abc"
	cfg.DataBackend = "s3"
	cfg.AWSRegion = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid port 'abc'", "S3_BUCKET is required", "AWS_REGION is required"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
	if !strings.HasPrefix(msg, "configuration validation failed:\n- ") {
		t.Errorf("unexpected error format: %q", msg)
	}
}

func TestConfig_ValidateLeavesSQLiteDirAlone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cfg := validBase()
	cfg.DataBackend = "sqlite"
	cfg.SQLiteDBPath = filepath.Join(dir, "donors.db")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("Validate() must not create %s, stat err = %v", dir, err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		for _, key := range []string{"PORT", "DATA_BACKEND", "DATA_DIR", "SPOTLIGHT_INTERVAL", "CURRENCY_SYMBOL"} {
			t.Setenv(key, "")
		}
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "file" {
			t.Errorf("Load() DataBackend = %v, want file", cfg.DataBackend)
		}
		if cfg.DataDir != "data" {
			t.Errorf("Load() DataDir = %v, want data", cfg.DataDir)
		}
		if cfg.SpotlightInterval != 3*time.Second {
			t.Errorf("Load() SpotlightInterval = %v, want 3s", cfg.SpotlightInterval)
		}
		if cfg.CurrencySymbol != "$" {
			t.Errorf("Load() CurrencySymbol = %v, want $", cfg.CurrencySymbol)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("defaults should validate: %v", err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "s3")
		t.Setenv("S3_BUCKET", "donor-data")
		t.Setenv("SPOTLIGHT_INTERVAL", "5s")
		t.Setenv("CURRENCY_SYMBOL", "৳")
		t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.1, ,10.0.0.2")

		cfg := Load()

		if cfg.RateLimitPerMinute != 120 {
			t.Errorf("Load() RateLimitPerMinute = %v, want 120", cfg.RateLimitPerMinute)
		}
		if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "10.0.0.2" {
			t.Errorf("Load() TrustedProxies = %v", cfg.TrustedProxies)
		}

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "s3" || cfg.S3Bucket != "donor-data" {
			t.Errorf("Load() backend = %v/%v, want s3/donor-data", cfg.DataBackend, cfg.S3Bucket)
		}
		if cfg.SpotlightInterval != 5*time.Second {
			t.Errorf("Load() SpotlightInterval = %v, want 5s", cfg.SpotlightInterval)
		}
		if cfg.CurrencySymbol != "৳" {
			t.Errorf("Load() CurrencySymbol = %v, want ৳", cfg.CurrencySymbol)
		}
	})

	t.Run("invalid environment variables use defaults", func(t *testing.T) {
		t.Setenv("SPOTLIGHT_INTERVAL", "invalid")
		t.Setenv("COUNTER_DURATION", "invalid")

		cfg := Load()

		if cfg.SpotlightInterval != 3*time.Second {
			t.Errorf("Load() SpotlightInterval = %v, want 3s (default for invalid input)", cfg.SpotlightInterval)
		}
		if cfg.CounterDuration != 2*time.Second {
			t.Errorf("Load() CounterDuration = %v, want 2s (default for invalid input)", cfg.CounterDuration)
		}
	})
}
