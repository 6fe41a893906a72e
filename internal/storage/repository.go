package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	_ "modernc.org/sqlite"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Snapshot is one row of load history.
type Snapshot struct {
	ID                 int64
	LoadedAt           time.Time
	Fingerprint        string
	Source             string
	Status             string
	Error              string
	Duration           time.Duration
	FactoryRows        int
	SupplierRows       int
	SubcategoryRows    int
	Warnings           int
	Total2024          decimal.Decimal
	Total2025          decimal.Decimal
	HighDependency     int
	SignificantDecline int
	Top5Share          float64
	ExposedSuppliers   int
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Record stores a snapshot and returns its id.
func (r *SQLiteRepository) Record(ctx context.Context, s Snapshot) (int64, error) {
	if s.Status != StatusSuccess && s.Status != StatusError {
		return 0, fmt.Errorf("invalid snapshot status %q", s.Status)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO load_snapshots (
			loaded_at, fingerprint, source, status, error, duration_ms,
			factory_rows, supplier_rows, subcategory_rows, warnings,
			total_2024, total_2025,
			high_dependency, significant_decline, top5_share, exposed_suppliers
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.LoadedAt.UTC().Format(time.RFC3339Nano), s.Fingerprint, s.Source, s.Status, s.Error, s.Duration.Milliseconds(),
		s.FactoryRows, s.SupplierRows, s.SubcategoryRows, s.Warnings,
		s.Total2024.String(), s.Total2025.String(),
		s.HighDependency, s.SignificantDecline, s.Top5Share, s.ExposedSuppliers,
	)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("snapshot id: %w", err)
	}
	return id, nil
}

const snapshotColumns = `id, loaded_at, fingerprint, source, status, error, duration_ms,
	factory_rows, supplier_rows, subcategory_rows, warnings, total_2024, total_2025,
	high_dependency, significant_decline, top5_share, exposed_suppliers`

// Latest returns up to n snapshots, newest first.
func (r *SQLiteRepository) Latest(ctx context.Context, n int) ([]Snapshot, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM load_snapshots ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Previous returns the newest successful snapshot of a different dataset,
// or nil when there is none.
func (r *SQLiteRepository) Previous(ctx context.Context, fingerprint string) (*Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM load_snapshots
		 WHERE status = ? AND fingerprint <> ?
		 ORDER BY id DESC LIMIT 1`, StatusSuccess, fingerprint)
	s, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(sc scanner) (Snapshot, error) {
	var (
		s                  Snapshot
		loadedAt           string
		durationMS         int64
		total2024, total25 string
	)
	err := sc.Scan(&s.ID, &loadedAt, &s.Fingerprint, &s.Source, &s.Status, &s.Error, &durationMS,
		&s.FactoryRows, &s.SupplierRows, &s.SubcategoryRows, &s.Warnings, &total2024, &total25,
		&s.HighDependency, &s.SignificantDecline, &s.Top5Share, &s.ExposedSuppliers)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return s, err
		}
		return s, fmt.Errorf("scan snapshot: %w", err)
	}
	if s.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt); err != nil {
		return s, fmt.Errorf("parse loaded_at %q: %w", loadedAt, err)
	}
	s.Duration = time.Duration(durationMS) * time.Millisecond
	if s.Total2024, err = decimal.NewFromString(total2024); err != nil {
		return s, fmt.Errorf("parse total_2024: %w", err)
	}
	if s.Total2025, err = decimal.NewFromString(total25); err != nil {
		return s, fmt.Errorf("parse total_2025: %w", err)
	}
	return s, nil
}
