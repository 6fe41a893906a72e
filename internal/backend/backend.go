// Package backend builds the table reader selected by configuration.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"spendboard/internal/config"
	"spendboard/internal/source"
	"spendboard/internal/source/file"
	"spendboard/internal/source/memory"
	s3source "spendboard/internal/source/s3"
	"spendboard/internal/source/sheets"
)

// SourceType names a data source backend.
type SourceType string

const (
	FileSource   SourceType = "file"
	S3Source     SourceType = "s3"
	SheetsSource SourceType = "sheets"
	MemorySource SourceType = "memory"
)

func (t SourceType) IsValid() bool {
	switch t {
	case FileSource, S3Source, SheetsSource, MemorySource:
		return true
	}
	return false
}

func (t SourceType) String() string {
	return string(t)
}

// SourceTypes returns all valid source types
func SourceTypes() []SourceType {
	return []SourceType{FileSource, S3Source, SheetsSource, MemorySource}
}

// Factory creates table readers for a configured source.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// NewReader creates the reader named by cfg.DataSource.
func (f *Factory) NewReader(ctx context.Context, cfg *config.Config) (source.TableReader, error) {
	t := SourceType(cfg.DataSource)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid data source: %s", cfg.DataSource)
	}

	switch t {
	case FileSource:
		return f.createFileReader(cfg)
	case S3Source:
		return f.createS3Reader(ctx, cfg)
	case SheetsSource:
		return f.createSheetsReader(ctx, cfg)
	default:
		f.logger.Info("Initialized memory source with demo data")
		return memory.NewDemo(), nil
	}
}

// FileNames maps the configured file names onto tables; blanks keep the
// defaults.
func FileNames(cfg *config.Config) map[source.Table]string {
	return map[source.Table]string{
		source.FactoryTable:  cfg.FactoryFile,
		source.SupplierTable: cfg.SupplierFile,
		source.CategoryTable: cfg.CategoryFile,
	}
}

func (f *Factory) createFileReader(cfg *config.Config) (source.TableReader, error) {
	src, err := file.New(cfg.DataDir, FileNames(cfg), cfg.FileEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file source: %w", err)
	}
	f.logger.Info("Initialized file source",
		"data_dir", cfg.DataDir,
		"encoding", cfg.FileEncoding)
	return src, nil
}

func (f *Factory) createS3Reader(ctx context.Context, cfg *config.Config) (source.TableReader, error) {
	src, err := s3source.New(ctx, s3source.Config{
		Bucket:          cfg.S3Bucket,
		Prefix:          cfg.S3Prefix,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		PathStyle:       cfg.S3PathStyle,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Files:           FileNames(cfg),
		Encoding:        cfg.FileEncoding,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 source: %w", err)
	}
	f.logger.Info("Initialized S3 source",
		"bucket", cfg.S3Bucket,
		"prefix", cfg.S3Prefix,
		"endpoint", cfg.S3Endpoint)
	return src, nil
}

func (f *Factory) createSheetsReader(ctx context.Context, cfg *config.Config) (source.TableReader, error) {
	cli, err := sheets.New(ctx, sheets.Config{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		Sheets: map[source.Table]string{
			source.FactoryTable:  cfg.GoogleFactorySheet,
			source.SupplierTable: cfg.GoogleSupplierSheet,
			source.CategoryTable: cfg.GoogleCategorySheet,
		},
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets source: %w", err)
	}
	f.logger.Info("Initialized Google Sheets source", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return cli, nil
}
