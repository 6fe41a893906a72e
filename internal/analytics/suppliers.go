package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

const (
	MatrixSize = 50
	TopSize    = 10
)

// SupplierShare is a supplier row with its share of a reference total.
type SupplierShare struct {
	core.SupplierRow
	Growth core.Growth
	Share  float64
}

func shareOf(rows []core.SupplierRow, amount func(core.SupplierRow) decimal.Decimal) []SupplierShare {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(amount(r))
	}
	out := make([]SupplierShare, len(rows))
	for i, r := range rows {
		out[i] = SupplierShare{SupplierRow: r, Growth: r.Growth(), Share: core.Share(amount(r), total)}
	}
	return out
}

func actual2024(r core.SupplierRow) decimal.Decimal { return r.Actual2024 }
func budget2025(r core.SupplierRow) decimal.Decimal { return r.Budget2025 }

// sortByAmount orders suppliers by amount descending, keeping file order for ties.
func sortByAmount(rows []SupplierShare, amount func(core.SupplierRow) decimal.Decimal) {
	sort.SliceStable(rows, func(i, j int) bool {
		return amount(rows[i].SupplierRow).GreaterThan(amount(rows[j].SupplierRow))
	})
}

// SupplierShares returns every supplier with its share of 2024 spend,
// largest first.
func SupplierShares(ds *dataset.Dataset) []SupplierShare {
	rows := shareOf(ds.Suppliers, actual2024)
	sortByAmount(rows, actual2024)
	return rows
}

// SupplierMatrix returns the n largest suppliers by 2024 amount.
func SupplierMatrix(ds *dataset.Dataset, n int) []SupplierShare {
	rows := SupplierShares(ds)
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TopSuppliers returns the n largest suppliers of a period with their share
// of that period's total.
func TopSuppliers(ds *dataset.Dataset, p core.Period, n int) []SupplierShare {
	amount := actual2024
	if p == core.Period2025 {
		amount = budget2025
	}
	rows := shareOf(ds.Suppliers, amount)
	sortByAmount(rows, amount)
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// TopChanges lists suppliers entering and leaving the top list between years.
type TopChanges struct {
	Entered []string
	Exited  []string
}

func CompareTop(before, after []SupplierShare) TopChanges {
	in := func(rows []SupplierShare) map[string]bool {
		m := make(map[string]bool, len(rows))
		for _, r := range rows {
			m[r.Supplier] = true
		}
		return m
	}
	b, a := in(before), in(after)
	var c TopChanges
	for _, r := range after {
		if !b[r.Supplier] {
			c.Entered = append(c.Entered, r.Supplier)
		}
	}
	for _, r := range before {
		if !a[r.Supplier] {
			c.Exited = append(c.Exited, r.Supplier)
		}
	}
	return c
}

// CategorySupplierStat counts distinct suppliers per category.
type CategorySupplierStat struct {
	Category   string
	Suppliers  int
	Spend2024  decimal.Decimal
	CountShare float64
}

// CategorySupplierStats returns per-category supplier counts ordered by
// category name, plus the sum of those counts.
func CategorySupplierStats(ds *dataset.Dataset) ([]CategorySupplierStat, int) {
	names := map[string]map[string]bool{}
	spend := map[string]decimal.Decimal{}
	for _, s := range ds.Suppliers {
		if names[s.Category] == nil {
			names[s.Category] = map[string]bool{}
		}
		names[s.Category][s.Supplier] = true
		spend[s.Category] = spend[s.Category].Add(s.Actual2024)
	}
	cats := make([]string, 0, len(names))
	total := 0
	for c, set := range names {
		cats = append(cats, c)
		total += len(set)
	}
	sort.Strings(cats)

	out := make([]CategorySupplierStat, 0, len(cats))
	for _, c := range cats {
		n := len(names[c])
		share := 0.0
		if total > 0 {
			share = float64(n) / float64(total) * 100
		}
		out = append(out, CategorySupplierStat{Category: c, Suppliers: n, Spend2024: spend[c], CountShare: share})
	}
	return out, total
}
