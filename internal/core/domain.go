package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// TotalUnit marks the grand-total row of the factory overview.
const TotalUnit = "合计"

const (
	Period2024 Period = "2024"
	Period2025 Period = "2025"
)

type (
	// Period identifies the year a spend amount belongs to. 2024 holds
	// actual receipts, 2025 holds forecasts and budgets.
	Period string

	// Percent is a percentage cell that may be missing in the source data.
	Percent struct {
		Value float64
		Valid bool
	}

	FactoryRow struct {
		Unit         string
		Actual2024   decimal.Decimal
		Forecast2025 decimal.Decimal
		GrowthAmount decimal.Decimal
		RawGrowth    Percent
	}

	// PlantAmount is the per-plant split of a supplier row.
	PlantAmount struct {
		Plant      string
		Actual2024 decimal.Decimal
		Budget2025 decimal.Decimal
	}

	SupplierRow struct {
		Supplier     string
		Category     string
		Subcategory  string
		Actual2024   decimal.Decimal
		Budget2025   decimal.Decimal
		GrowthAmount decimal.Decimal
		RawGrowth    Percent
		Plants       []PlantAmount
	}

	SubcategoryRow struct {
		Category     string
		Subcategory  string
		Spend2024    decimal.Decimal
		Spend2025    decimal.Decimal
		GrowthAmount decimal.Decimal
		RawGrowth    Percent
	}

	// SpendRecord is one amount keyed by (factory, supplier, subcategory, period).
	SpendRecord struct {
		Factory     string
		Supplier    string
		Category    string
		Subcategory string
		Period      Period
		Amount      decimal.Decimal
	}
)

var (
	ErrEmptySupplier    = errors.New("empty supplier name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptySubcategory = errors.New("empty subcategory")
	ErrEmptyUnit        = errors.New("empty business unit")
)

// IsTotal reports whether the row is the grand-total line.
func (f FactoryRow) IsTotal() bool {
	return strings.TrimSpace(f.Unit) == TotalUnit
}

func (f FactoryRow) Growth() Growth {
	return NewGrowth(f.Actual2024, f.Forecast2025)
}

func (f FactoryRow) Validate() error {
	if strings.TrimSpace(f.Unit) == "" {
		return ErrEmptyUnit
	}
	return nil
}

func (s SupplierRow) Growth() Growth {
	return NewGrowth(s.Actual2024, s.Budget2025)
}

func (s SupplierRow) Validate() error {
	if strings.TrimSpace(s.Supplier) == "" {
		return ErrEmptySupplier
	}
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// SpendRecords unpivots the row into one record per plant and period.
// Rows without a plant split yield records with an empty factory.
func (s SupplierRow) SpendRecords() []SpendRecord {
	base := SpendRecord{Supplier: s.Supplier, Category: s.Category, Subcategory: s.Subcategory}
	if len(s.Plants) == 0 {
		a, b := base, base
		a.Period, a.Amount = Period2024, s.Actual2024
		b.Period, b.Amount = Period2025, s.Budget2025
		return []SpendRecord{a, b}
	}
	out := make([]SpendRecord, 0, len(s.Plants)*2)
	for _, p := range s.Plants {
		a, b := base, base
		a.Factory, a.Period, a.Amount = p.Plant, Period2024, p.Actual2024
		b.Factory, b.Period, b.Amount = p.Plant, Period2025, p.Budget2025
		out = append(out, a, b)
	}
	return out
}

func (s SubcategoryRow) Growth() Growth {
	return NewGrowth(s.Spend2024, s.Spend2025)
}

func (s SubcategoryRow) Validate() error {
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(s.Subcategory) == "" {
		return ErrEmptySubcategory
	}
	return nil
}
