// Package analytics derives the dashboard views from a loaded dataset.
// Every function is pure: it reads the dataset and returns new values.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"spendboard/internal/core"
)

// Totals holds a 2024 actual and a 2025 plan amount.
type Totals struct {
	Y2024 decimal.Decimal
	Y2025 decimal.Decimal
}

func (t Totals) Growth() core.Growth {
	return core.NewGrowth(t.Y2024, t.Y2025)
}

// Change is the 2025 amount minus the 2024 amount.
func (t Totals) Change() decimal.Decimal {
	return t.Y2025.Sub(t.Y2024)
}

func (t Totals) add(p core.Period, amount decimal.Decimal) Totals {
	switch p {
	case core.Period2024:
		t.Y2024 = t.Y2024.Add(amount)
	case core.Period2025:
		t.Y2025 = t.Y2025.Add(amount)
	}
	return t
}

// Group is one row of a group-by over spend records.
type Group struct {
	Key string
	Totals
}

// SumRecords totals records per period.
func SumRecords(records []core.SpendRecord) Totals {
	var t Totals
	for _, r := range records {
		t = t.add(r.Period, r.Amount)
	}
	return t
}

// BySubcategory groups records on their subcategory.
func BySubcategory(records []core.SpendRecord) []Group {
	return groupBy(records, func(r core.SpendRecord) string { return r.Subcategory })
}

// BySupplier groups records on their supplier.
func BySupplier(records []core.SpendRecord) []Group {
	return groupBy(records, func(r core.SpendRecord) string { return r.Supplier })
}

// ByFactory groups records on their plant.
func ByFactory(records []core.SpendRecord) []Group {
	return groupBy(records, func(r core.SpendRecord) string { return r.Factory })
}

// ByCategory groups records on their category.
func ByCategory(records []core.SpendRecord) []Group {
	return groupBy(records, func(r core.SpendRecord) string { return r.Category })
}

// groupBy sums records per key. Groups are ordered by 2024 amount
// descending, ties broken by key.
func groupBy(records []core.SpendRecord, key func(core.SpendRecord) string) []Group {
	idx := map[string]int{}
	var out []Group
	for _, r := range records {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Group{Key: k})
		}
		out[i].Totals = out[i].Totals.add(r.Period, r.Amount)
	}
	sort.SliceStable(out, func(a, b int) bool {
		if c := out[a].Y2024.Cmp(out[b].Y2024); c != 0 {
			return c > 0
		}
		return out[a].Key < out[b].Key
	})
	return out
}
