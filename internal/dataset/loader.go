package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"spendboard/internal/source"
)

// Loader reads and parses the three tables from one source.
type Loader struct {
	reader source.TableReader
	now    func() time.Time
}

func NewLoader(r source.TableReader) *Loader {
	return &Loader{reader: r, now: time.Now}
}

// Source names the underlying reader.
func (l *Loader) Source() string {
	return source.Describe(l.reader)
}

// Load reads all tables concurrently and parses them into a Dataset.
// Any read or header error fails the whole load.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	tables := source.Tables()
	raw := make([][][]string, len(tables))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range tables {
		i, t := i, t
		g.Go(func() error {
			rows, err := l.reader.ReadTable(gctx, t)
			if err != nil {
				return fmt.Errorf("load %s table: %w", t, err)
			}
			raw[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byTable := map[source.Table][][]string{}
	for i, t := range tables {
		byTable[t] = raw[i]
	}

	ds := &Dataset{
		Fingerprint: Fingerprint(byTable),
		Source:      l.Source(),
		LoadedAt:    l.now(),
	}

	var (
		warnings []Warning
		err      error
	)
	if ds.Factories, warnings, err = parseFactories(byTable[source.FactoryTable]); err != nil {
		return nil, fmt.Errorf("load %s table: %w", source.FactoryTable, err)
	}
	ds.Warnings = append(ds.Warnings, warnings...)

	if ds.Suppliers, ds.Plants, warnings, err = parseSuppliers(byTable[source.SupplierTable]); err != nil {
		return nil, fmt.Errorf("load %s table: %w", source.SupplierTable, err)
	}
	ds.Warnings = append(ds.Warnings, warnings...)

	if ds.Subcategories, warnings, err = parseSubcategories(byTable[source.CategoryTable]); err != nil {
		return nil, fmt.Errorf("load %s table: %w", source.CategoryTable, err)
	}
	ds.Warnings = append(ds.Warnings, warnings...)

	return ds, nil
}

// Fingerprint hashes the raw cells of every table in load order.
func Fingerprint(tables map[source.Table][][]string) string {
	hasher := xxhash.New()
	for _, t := range source.Tables() {
		_, _ = hasher.WriteString(string(t))
		_, _ = hasher.Write([]byte{0})
		for _, row := range tables[t] {
			for _, cell := range row {
				_, _ = hasher.WriteString(cell)
				_, _ = hasher.Write([]byte{0x1f})
			}
			_, _ = hasher.Write([]byte{0x1e})
		}
		_, _ = hasher.Write([]byte{0}) // section separator
	}
	return fmt.Sprintf("%016x", hasher.Sum64())
}
