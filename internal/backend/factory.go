package backend

import (
	"context"
	"fmt"
	"log/slog"

	gsheet "charity/internal/sheets/google"
	"charity/internal/sources/file"
	"charity/internal/sources/remote"
	"charity/internal/sources/s3"
	"charity/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(config)
	case HTTPBackend:
		return f.createHTTPBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case S3Backend:
		return f.createS3Backend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	store := file.New(config.DataDirectory)

	f.logger.Info("Initialized file backend", "data_directory", store.Dir())

	return &BackendResult{Backend: store}, nil
}

func (f *DefaultFactory) createHTTPBackend(config Config) (*BackendResult, error) {
	cli, err := remote.New(config.BaseURL, config.HTTPTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize HTTP donor source: %w", err)
	}

	f.logger.Info("Initialized HTTP backend", "base_url", config.BaseURL)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.OpenSQLiteReadOnly(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID: config.GoogleSpreadsheetID,
		DonorsSheet:   config.GoogleDonorsSheet,
		SilentSheet:   config.GoogleSilentSheet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "donors_sheet", config.GoogleDonorsSheet)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createS3Backend(ctx context.Context, config Config) (*BackendResult, error) {
	store, err := s3.New(ctx, s3.Options{
		Bucket:    config.S3Bucket,
		Region:    config.AWSRegion,
		DonorsKey: config.S3DonorsKey,
		SilentKey: config.S3SilentKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 donor source: %w", err)
	}

	f.logger.Info("Initialized S3 backend", "bucket", config.S3Bucket, "region", config.AWSRegion)

	return &BackendResult{Backend: store}, nil
}
