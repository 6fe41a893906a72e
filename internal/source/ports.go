package source

import (
	"context"
	"errors"
)

const (
	FactoryTable  Table = "factory"
	SupplierTable Table = "supplier"
	CategoryTable Table = "category"
)

// Table names one of the three input extracts.
type Table string

var ErrTableNotFound = errors.New("table not found")

// Tables returns the input tables in load order.
func Tables() []Table {
	return []Table{FactoryTable, SupplierTable, CategoryTable}
}

// DefaultFiles are the extract names the finance team publishes.
func DefaultFiles() map[Table]string {
	return map[Table]string{
		FactoryTable:  "苏州、天津工厂数据总览.csv",
		SupplierTable: "供应商2024-2025采购数据汇总.csv",
		CategoryTable: "各Subcategory-Spend汇总.csv",
	}
}

// Ports for inbound data adapters.
type (
	// TableReader returns the raw cells of a table, header row first.
	TableReader interface {
		ReadTable(ctx context.Context, t Table) ([][]string, error)
	}

	// Describer is implemented by readers that can name where they read from.
	Describer interface {
		Describe() string
	}
)

// Describe names the reader for status output.
func Describe(r TableReader) string {
	if d, ok := r.(Describer); ok {
		return d.Describe()
	}
	return "unknown"
}
