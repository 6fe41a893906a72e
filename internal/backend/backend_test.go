package backend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"spendboard/internal/config"
	"spendboard/internal/source"
	"spendboard/internal/source/file"
	"spendboard/internal/source/memory"
)

func TestSourceType(t *testing.T) {
	for _, st := range SourceTypes() {
		if !st.IsValid() {
			t.Errorf("%s should be valid", st)
		}
	}
	if SourceType("ftp").IsValid() {
		t.Error("ftp should not be valid")
	}
}

func TestNewReader_Memory(t *testing.T) {
	r, err := NewFactory(nil).NewReader(context.Background(), &config.Config{DataSource: "memory"})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if _, ok := r.(*memory.Store); !ok {
		t.Errorf("expected *memory.Store, got %T", r)
	}
}

func TestNewReader_File(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "factories.csv"), []byte("Business Unit\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{DataSource: "file", DataDir: dir, FactoryFile: "factories.csv", FileEncoding: "utf-8"}

	r, err := NewFactory(nil).NewReader(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	src, ok := r.(*file.Source)
	if !ok {
		t.Fatalf("expected *file.Source, got %T", r)
	}
	if got := src.Path(source.FactoryTable); got != filepath.Join(dir, "factories.csv") {
		t.Errorf("factory path = %q", got)
	}
	if got := src.Path(source.SupplierTable); got != filepath.Join(dir, source.DefaultFiles()[source.SupplierTable]) {
		t.Errorf("supplier path should keep the default name, got %q", got)
	}
}

func TestNewReader_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"unknown source", config.Config{DataSource: "ftp"}, "invalid data source: ftp"},
		{"bad encoding", config.Config{DataSource: "file", DataDir: t.TempDir(), FileEncoding: "klingon"}, "failed to initialize file source"},
		{"s3 without bucket", config.Config{DataSource: "s3"}, "failed to initialize S3 source"},
		{"sheets without id", config.Config{DataSource: "sheets"}, "failed to initialize Google Sheets source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory(nil).NewReader(context.Background(), &tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewReader() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}
