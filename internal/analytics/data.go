package analytics

import (
	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

// SubcategoriesOf returns the raw subcategory rows of a category in file order.
func SubcategoriesOf(ds *dataset.Dataset, category string) []SubcategoryGrowth {
	var rows []core.SubcategoryRow
	for _, s := range ds.Subcategories {
		if s.Category == category {
			rows = append(rows, s)
		}
	}
	return subcategoryGrowth(rows)
}

// SupplierDetail is a supplier with its shares of the subcategory totals.
type SupplierDetail struct {
	SupplierShare
	Share2025 float64
}

// SupplierDetailsOf returns the suppliers of a subcategory with per-plant
// amounts and their 2024 and 2025 shares, in file order.
func SupplierDetailsOf(ds *dataset.Dataset, subcategory string) []SupplierDetail {
	var rows []core.SupplierRow
	for _, s := range ds.Suppliers {
		if s.Subcategory == subcategory {
			rows = append(rows, s)
		}
	}
	s24 := shareOf(rows, actual2024)
	s25 := shareOf(rows, budget2025)
	out := make([]SupplierDetail, len(rows))
	for i := range rows {
		out[i] = SupplierDetail{SupplierShare: s24[i], Share2025: s25[i].Share}
	}
	return out
}
