// Package dataset loads the three spend extracts into an immutable Dataset
// and keeps the current one fresh.
package dataset

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/source"
)

// Warning records a cell that could not be read and was treated as missing.
type Warning struct {
	Table  source.Table
	Row    int // 1-based data row, header excluded
	Column string
	Value  string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s row %d column %q: cannot parse %q", w.Table, w.Row, w.Column, w.Value)
}

// Dataset is one consistent load of all three tables. It is never mutated
// after Load returns, so handlers may share it freely.
type Dataset struct {
	Factories     []core.FactoryRow
	Suppliers     []core.SupplierRow
	Subcategories []core.SubcategoryRow
	// Plants lists the per-plant columns found in the supplier table, in header order.
	Plants      []string
	Warnings    []Warning
	Fingerprint string
	Source      string
	LoadedAt    time.Time
}

// RowCounts is the number of data rows per table.
type RowCounts struct {
	Factories     int
	Suppliers     int
	Subcategories int
}

func (d *Dataset) Counts() RowCounts {
	return RowCounts{
		Factories:     len(d.Factories),
		Suppliers:     len(d.Suppliers),
		Subcategories: len(d.Subcategories),
	}
}

// Units returns the factory rows without the grand-total line.
func (d *Dataset) Units() []core.FactoryRow {
	out := make([]core.FactoryRow, 0, len(d.Factories))
	for _, f := range d.Factories {
		if !f.IsTotal() {
			out = append(out, f)
		}
	}
	return out
}

// Total returns the grand-total factory row, if the extract carries one.
func (d *Dataset) Total() (core.FactoryRow, bool) {
	for _, f := range d.Factories {
		if f.IsTotal() {
			return f, true
		}
	}
	return core.FactoryRow{}, false
}

// Records unpivots the supplier table into spend records.
func (d *Dataset) Records() []core.SpendRecord {
	var out []core.SpendRecord
	for _, s := range d.Suppliers {
		out = append(out, s.SpendRecords()...)
	}
	return out
}

// SupplierTotals sums the supplier table per period.
func (d *Dataset) SupplierTotals() (y2024, y2025 decimal.Decimal) {
	for _, s := range d.Suppliers {
		y2024 = y2024.Add(s.Actual2024)
		y2025 = y2025.Add(s.Budget2025)
	}
	return y2024, y2025
}

// SubcategoryTotals sums the subcategory table per period.
func (d *Dataset) SubcategoryTotals() (y2024, y2025 decimal.Decimal) {
	for _, s := range d.Subcategories {
		y2024 = y2024.Add(s.Spend2024)
		y2025 = y2025.Add(s.Spend2025)
	}
	return y2024, y2025
}
