package risk

import (
	"slices"

	"github.com/shopspring/decimal"

	"spendboard/internal/analytics"
	"spendboard/internal/core"
	"spendboard/internal/dataset"
)

// Exposure is a supplier matched by a risk filter.
type Exposure struct {
	Supplier    string
	Category    string
	Subcategory string
	Actual2024  decimal.Decimal
	Growth      core.Growth
	Share       float64
	HasShare    bool
}

// Detail returns the suppliers exposed to a risk in file order.
func Detail(reg *Register, ds *dataset.Dataset, id string) (Item, []Exposure, error) {
	it, err := reg.Find(id)
	if err != nil {
		return Item{}, nil, err
	}
	return it, Match(it.Filter, ds), nil
}

// Match applies a filter to the supplier table.
func Match(f Filter, ds *dataset.Dataset) []Exposure {
	var threshold float64
	if f.QuantileAbove != nil {
		values := make([]float64, len(ds.Suppliers))
		for i, s := range ds.Suppliers {
			values[i] = s.Actual2024.InexactFloat64()
		}
		threshold = analytics.Quantile(values, *f.QuantileAbove)
	}

	var out []Exposure
	total := decimal.Zero
	for _, s := range ds.Suppliers {
		g := s.Growth()
		if f.QuantileAbove != nil && !(s.Actual2024.InexactFloat64() > threshold) {
			continue
		}
		if len(f.Categories) > 0 && !slices.Contains(f.Categories, s.Category) {
			continue
		}
		if f.GrowthAbove != nil && !g.Above(*f.GrowthAbove) {
			continue
		}
		if f.GrowthBelow != nil && !g.Below(*f.GrowthBelow) {
			continue
		}
		out = append(out, Exposure{
			Supplier:    s.Supplier,
			Category:    s.Category,
			Subcategory: s.Subcategory,
			Actual2024:  s.Actual2024,
			Growth:      g,
		})
		total = total.Add(s.Actual2024)
	}
	if f.Share {
		for i := range out {
			out[i].Share = core.Share(out[i].Actual2024, total)
			out[i].HasShare = true
		}
	}
	return out
}

// ExposedSuppliers counts distinct suppliers matched by any high-level risk.
func ExposedSuppliers(reg *Register, ds *dataset.Dataset) int {
	seen := map[string]bool{}
	for _, it := range reg.Risks {
		if it.Level() != LevelHigh {
			continue
		}
		for _, e := range Match(it.Filter, ds) {
			seen[e.Supplier] = true
		}
	}
	return len(seen)
}
