package backend

import (
	"context"
	"time"

	"charity/internal/sources"
)

// Backend provides both donor datasets.
type Backend interface {
	sources.Source
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// File specific
	DataDirectory string

	// HTTP specific
	BaseURL     string
	HTTPTimeout time.Duration

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID string
	GoogleDonorsSheet   string
	GoogleSilentSheet   string

	// S3 specific
	S3Bucket    string
	S3DonorsKey string
	S3SilentKey string
	AWSRegion   string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	HTTPBackend   BackendType = "http"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	S3Backend     BackendType = "s3"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, HTTPBackend, SQLiteBackend, SheetsBackend, S3Backend:
		return true
	default:
		return false
	}
}
